package errors

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "listing", err: &apperrors.ListingError{StatusCode: 502}, want: "listing"},
		{
			name: "listing wrapping transport",
			err:  &apperrors.ListingError{Cause: &apperrors.TransportError{Op: "list accounts", Cause: io.EOF}},
			want: "listing",
		},
		{name: "credential", err: &apperrors.CredentialError{Name: "ADMIN_PWD", Cause: io.EOF}, want: "credential"},
		{name: "resolution", err: fmt.Errorf("account: %w", &apperrors.ResolutionError{DID: "did:plc:a", StatusCode: 404}), want: "resolution"},
		{name: "signing", err: &apperrors.SigningError{Cause: io.EOF}, want: "signing"},
		{name: "delivery", err: &apperrors.DeliveryError{StatusCode: 400, Body: "bad"}, want: "delivery"},
		{name: "transport", err: &apperrors.TransportError{Op: "send email", Cause: io.ErrUnexpectedEOF}, want: "transport"},
		{name: "timeout", err: fmt.Errorf("wait: %w", context.DeadlineExceeded), want: "timeout"},
		{name: "canceled", err: context.Canceled, want: "canceled"},
		{name: "app error", err: apperrors.Validationf("invalid status %q", "queued"), want: "validation"},
		{name: "fallback type name", err: fmt.Errorf("wrap: %w", io.ErrUnexpectedEOF), want: "errors_errorstring"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}
