package errors

import (
	"context"
	goerrors "errors"
	"reflect"
	"strings"

	apperrors "github.com/tophhie/pds-welcomer/internal/errors"
)

// Classify returns a normalized error type name suitable for tagging metrics/logs.
// Dispatch failures map to a fixed vocabulary; anything else is unwrapped to the
// innermost concrete type and converted to snake_case-ish.
func Classify(err error) string {
	if err == nil {
		return ""
	}

	if class := classifyKnown(err); class != "" {
		return class
	}

	// Unwrap to the innermost error for better signal.
	for {
		unwrapped := goerrors.Unwrap(err)
		if unwrapped == nil {
			break
		}
		err = unwrapped
	}

	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unknown"
	}

	name := strings.ToLower(strings.ReplaceAll(t.String(), "*", ""))
	name = strings.ReplaceAll(name, ".", "_")
	if name == "" {
		return "unknown"
	}
	return name
}

func classifyKnown(err error) string {
	var (
		listing    *apperrors.ListingError
		credential *apperrors.CredentialError
		resolution *apperrors.ResolutionError
		signing    *apperrors.SigningError
		delivery   *apperrors.DeliveryError
		transport  *apperrors.TransportError
	)

	// Outer dispatch types win over the transport or context error they wrap.
	switch {
	case goerrors.As(err, &listing):
		return "listing"
	case goerrors.As(err, &credential):
		return "credential"
	case goerrors.As(err, &resolution):
		return "resolution"
	case goerrors.As(err, &signing):
		return "signing"
	case goerrors.As(err, &delivery):
		return "delivery"
	case goerrors.As(err, &transport):
		return "transport"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	}

	if code := apperrors.GetCode(err); code != "" {
		return strings.ToLower(string(code))
	}
	return ""
}
