package services

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by a service matches exactly one of
// these with errors.Is.
var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrExpired            = errors.New("expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrNotificationFailed = errors.New("notification delivery failed")
)

var (
	ErrReportNotFound = fmt.Errorf("report %w", ErrNotFound)
	ErrNewsNotFound   = fmt.Errorf("news item %w", ErrNotFound)

	ErrCodeNotFound = fmt.Errorf("verification code %w", ErrNotFound)
	ErrCodeExpired  = fmt.Errorf("verification code %w", ErrExpired)
	ErrCodeMismatch = errors.New("verification code does not match")

	ErrMissingHeader   = fmt.Errorf("%w: missing authorization header", ErrUnauthorized)
	ErrMalformedHeader = fmt.Errorf("%w: authorization header must be 'Bearer <token>'", ErrUnauthorized)
	ErrInvalidSession  = fmt.Errorf("%w: invalid session token", ErrUnauthorized)
	ErrExpiredSession  = fmt.Errorf("%w: session %w", ErrUnauthorized, ErrExpired)
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
