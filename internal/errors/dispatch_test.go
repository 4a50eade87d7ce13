package errors

import (
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListingError_Error(t *testing.T) {
	err := &ListingError{StatusCode: 502, Status: "502 Bad Gateway"}
	assert.Equal(t, "list accounts: unexpected status 502 Bad Gateway", err.Error())

	cause := errors.New("invalid character")
	err = &ListingError{Cause: cause}
	assert.Equal(t, "list accounts: invalid character", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestResolutionError_Error(t *testing.T) {
	err := &ResolutionError{DID: "did:plc:abc", StatusCode: 404}
	assert.Equal(t, "resolve did:plc:abc: unexpected status 404", err.Error())
}

func TestDeliveryError_Error(t *testing.T) {
	err := &DeliveryError{StatusCode: 401, Status: "401 Unauthorized", Body: `{"error":"denied"}`}
	assert.Equal(t, `send email: unexpected status 401 Unauthorized: {"error":"denied"}`, err.Error())

	err = &DeliveryError{StatusCode: 500}
	assert.Equal(t, "send email: unexpected status 500", err.Error())

	err = &DeliveryError{StatusCode: 500, Status: "500 Internal Server Error", Body: "partial", Truncated: true}
	assert.Equal(t, "send email: unexpected status 500 Internal Server Error: partial...(truncated)", err.Error())
}

func TestTypedErrors_As(t *testing.T) {
	netErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	wrapped := fmt.Errorf("account did:plc:abc: %w", &TransportError{Op: "resolve identity", Cause: netErr})

	var transport *TransportError
	require.ErrorAs(t, wrapped, &transport)
	assert.Equal(t, "resolve identity", transport.Op)

	var opErr *net.OpError
	assert.ErrorAs(t, wrapped, &opErr)

	signing := fmt.Errorf("send: %w", &SigningError{Cause: errors.New("illegal base64 data")})
	var signErr *SigningError
	assert.ErrorAs(t, signing, &signErr)
}

func TestIsRunFatal(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "listing", err: &ListingError{StatusCode: 500}, want: true},
		{name: "credential", err: fmt.Errorf("run: %w", &CredentialError{Name: "ADMIN_PWD", Cause: errors.New("missing")}), want: true},
		{name: "resolution", err: &ResolutionError{DID: "did:plc:x", StatusCode: 400}, want: false},
		{name: "delivery", err: &DeliveryError{StatusCode: 500}, want: false},
		{name: "nil", err: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRunFatal(tt.err))
		})
	}
}
