package errors

import (
	"errors"
	"fmt"
)

// ListingError means the directory listing could not be fetched or decoded.
// It aborts the whole run before any account is processed.
type ListingError struct {
	StatusCode int
	Status     string
	Cause      error
}

func (e *ListingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("list accounts: %v", e.Cause)
	}
	return fmt.Sprintf("list accounts: unexpected status %s", statusText(e.StatusCode, e.Status))
}

func (e *ListingError) Unwrap() error { return e.Cause }

// CredentialError means a run credential (admin password or signing key) was unavailable.
// It aborts the run before the account loop starts.
type CredentialError struct {
	Name  string
	Cause error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("fetch credential %s: %v", e.Name, e.Cause)
}

func (e *CredentialError) Unwrap() error { return e.Cause }

// ResolutionError carries the non-success status returned by the admin identity endpoint.
type ResolutionError struct {
	DID        string
	StatusCode int
	Status     string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve %s: unexpected status %s", e.DID, statusText(e.StatusCode, e.Status))
}

// TransportError wraps a network failure talking to an upstream service.
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error { return e.Cause }

// DeliveryError carries a non-2xx response from the email provider.
// Body is the verbatim response text, cut to a bounded prefix when Truncated is set.
type DeliveryError struct {
	StatusCode int
	Status     string
	Body       string
	Truncated  bool
}

func (e *DeliveryError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("send email: unexpected status %s", statusText(e.StatusCode, e.Status))
	}
	msg := fmt.Sprintf("send email: unexpected status %s: %s", statusText(e.StatusCode, e.Status), e.Body)
	if e.Truncated {
		msg += "...(truncated)"
	}
	return msg
}

// SigningError means the request could not be signed. Treated as a delivery failure.
type SigningError struct {
	Cause error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("sign request: %v", e.Cause)
}

func (e *SigningError) Unwrap() error { return e.Cause }

// IsRunFatal reports whether err must abort a dispatch run.
func IsRunFatal(err error) bool {
	var listing *ListingError
	var credential *CredentialError
	return errors.As(err, &listing) || errors.As(err, &credential)
}

func statusText(code int, status string) string {
	if status != "" {
		return status
	}
	return fmt.Sprintf("%d", code)
}
