package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMissingToken       = errors.New("missing authorization header")
	ErrTokenRejected      = errors.New("invalid or expired token")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrConflict           = errors.New("resource already exists")
	ErrNotFound           = errors.New("resource not found")
	ErrInvalidInput       = errors.New("invalid input")
)

// TokenRejectReason says why a bearer token was refused. Callers answer every
// reason the same way; the reason only feeds logs and metrics.
type TokenRejectReason string

const (
	TokenMalformed TokenRejectReason = "malformed"
	TokenTampered  TokenRejectReason = "tampered"
	TokenExpired   TokenRejectReason = "expired"
)

// TokenRejectedError carries the rejection reason and matches ErrTokenRejected
// under errors.Is.
type TokenRejectedError struct {
	Reason TokenRejectReason
	Err    error
}

func (e *TokenRejectedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token rejected (%s): %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("token rejected (%s)", e.Reason)
}

func (e *TokenRejectedError) Is(target error) bool { return target == ErrTokenRejected }

func (e *TokenRejectedError) Unwrap() error { return e.Err }

// RejectReason extracts the reason from a token rejection, or "" when err is
// not one.
func RejectReason(err error) TokenRejectReason {
	var tre *TokenRejectedError
	if errors.As(err, &tre) {
		return tre.Reason
	}
	return ""
}

// Invalidf wraps ErrInvalidInput with a client-facing detail message.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
