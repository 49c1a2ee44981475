package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrClientNotReady is an exported constant or variable used by the portal client.
	ErrClientNotReady = errors.New("client not initialized")
	// ErrNotAuthenticated is an exported constant or variable used by the portal client.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrSessionExpired is an exported constant or variable used by the portal client.
	ErrSessionExpired = errors.New("session expired, please log in again")
	// ErrUnauthorized is an exported constant or variable used by the portal client.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNetwork is an exported constant or variable used by the portal client.
	ErrNetwork = errors.New("network error")
	// ErrServer is an exported constant or variable used by the portal client.
	ErrServer = errors.New("server error")
	// ErrMalformedResponse is an exported constant or variable used by the portal client.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrValidation is an exported constant or variable used by the portal client.
	ErrValidation = errors.New("validation failed")
	// ErrRemarksRequired is an exported constant or variable used by the portal client.
	ErrRemarksRequired = fmt.Errorf("%w: remarks are required for a review decision", ErrValidation)
	// ErrReceiptRequired is an exported constant or variable used by the portal client.
	ErrReceiptRequired = fmt.Errorf("%w: payment receipt image is required", ErrValidation)
	// ErrAadhaarInvalid is an exported constant or variable used by the portal client.
	ErrAadhaarInvalid = fmt.Errorf("%w: aadhaar number must be 12 digits", ErrValidation)
	// ErrWhatsAppInvalid is an exported constant or variable used by the portal client.
	ErrWhatsAppInvalid = fmt.Errorf("%w: whatsapp number must be 10 digits", ErrValidation)
	// ErrUTRRequired is an exported constant or variable used by the portal client.
	ErrUTRRequired = fmt.Errorf("%w: payment UTR number is required", ErrValidation)
	// ErrAmountInvalid is an exported constant or variable used by the portal client.
	ErrAmountInvalid = fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	// ErrDocumentTypeRequired is an exported constant or variable used by the portal client.
	ErrDocumentTypeRequired = fmt.Errorf("%w: document type is required", ErrValidation)
	// ErrIllegalTransition is an exported constant or variable used by the portal client.
	ErrIllegalTransition = fmt.Errorf("%w: illegal application state transition", ErrValidation)
	// ErrDecisionInvalid is an exported constant or variable used by the portal client.
	ErrDecisionInvalid = fmt.Errorf("%w: review decision must be approved or rejected", ErrValidation)
	// ErrCertificateFileRequired is an exported constant or variable used by the portal client.
	ErrCertificateFileRequired = fmt.Errorf("%w: certificate file is required", ErrValidation)
	// ErrFileNotFound is an exported constant or variable used by the portal client.
	ErrFileNotFound = errors.New("File not found")
	// ErrCertificateNotReady is an exported constant or variable used by the portal client.
	ErrCertificateNotReady = errors.New("Certificate not available yet")
)

// APIError carries a non-auth backend failure back to the caller: the HTTP
// status, the backend-supplied message (verbatim where available), and the
// correlation ID of the failed request.
//
// APIError wraps [ErrServer] so callers can classify with errors.Is and
// still present the backend message.
type APIError struct {
	Status    int
	Message   string
	RequestID string
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Error() string {
	if e == nil {
		return "server error"
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("server error (status %d)", e.Status)
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *APIError) Unwrap() error {
	return ErrServer
}

// IsAuthFailure reports whether err represents an authentication failure
// after the recovery protocol has run (or been skipped).
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrSessionExpired) || errors.Is(err, ErrUnauthorized)
}

// IsValidationFailure reports whether err was raised client-side before any
// network call was made.
func IsValidationFailure(err error) bool {
	return errors.Is(err, ErrValidation)
}
