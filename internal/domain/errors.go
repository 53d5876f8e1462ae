package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// Verification outcomes that callers surface as distinct failures.
	ErrSessionExpired = errors.New("verification session expired")
	ErrAlreadyUsed    = errors.New("verification session already used")
	ErrCodeMismatch   = errors.New("verification code mismatch")

	// ErrDelivery means a code could not be handed to the email or SMS provider.
	ErrDelivery = errors.New("delivery failed")
)
