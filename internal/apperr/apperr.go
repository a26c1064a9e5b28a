// Package apperr defines the application's error taxonomy and the classifier
// that normalizes every internal failure into it.
//
// Components produce *Error values at their boundary (token verification,
// auth gates, upload validation, rate limiting). Failures that escape a
// boundary untyped (database errors, payload validation errors, raw jwt
// errors) are recognized by Classify. Either way, the HTTP layer renders
// exactly one kind of envelope, so clients see a single stable vocabulary
// regardless of where a failure originated.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies a class of failure. The set is closed; every client-visible
// error carries exactly one Kind.
type Kind string

const (
	KindMissingToken         Kind = "missing_token"
	KindInvalidToken         Kind = "invalid_token"
	KindTokenExpired         Kind = "token_expired"
	KindUserNotFound         Kind = "user_not_found"
	KindAccountDeactivated   Kind = "account_deactivated"
	KindUnauthenticated      Kind = "unauthenticated"
	KindInsufficientRole     Kind = "insufficient_role"
	KindAccessDenied         Kind = "access_denied"
	KindResourceNotFound     Kind = "resource_not_found"
	KindValidationFailed     Kind = "validation_failed"
	KindDuplicateEntry       Kind = "duplicate_entry"
	KindInvalidReference     Kind = "invalid_reference"
	KindMissingRequiredField Kind = "missing_required_field"
	KindInputTooLong         Kind = "input_too_long"
	KindStoreUnavailable     Kind = "store_unavailable"
	KindStoreError           Kind = "store_error"
	KindFileTooLarge         Kind = "file_too_large"
	KindTooManyFiles         Kind = "too_many_files"
	KindUnexpectedFile       Kind = "unexpected_file"
	KindRateLimited          Kind = "rate_limited"
	KindUnknown              Kind = "unknown"
)

// statusFor maps each kind to its HTTP status code.
var statusFor = map[Kind]int{
	KindMissingToken:         http.StatusUnauthorized,
	KindInvalidToken:         http.StatusUnauthorized,
	KindTokenExpired:         http.StatusUnauthorized,
	KindUserNotFound:         http.StatusUnauthorized,
	KindAccountDeactivated:   http.StatusUnauthorized,
	KindUnauthenticated:      http.StatusUnauthorized,
	KindInsufficientRole:     http.StatusForbidden,
	KindAccessDenied:         http.StatusForbidden,
	KindResourceNotFound:     http.StatusNotFound,
	KindValidationFailed:     http.StatusBadRequest,
	KindDuplicateEntry:       http.StatusConflict,
	KindInvalidReference:     http.StatusBadRequest,
	KindMissingRequiredField: http.StatusBadRequest,
	KindInputTooLong:         http.StatusBadRequest,
	KindStoreUnavailable:     http.StatusInternalServerError,
	KindStoreError:           http.StatusInternalServerError,
	KindFileTooLarge:         http.StatusBadRequest,
	KindTooManyFiles:         http.StatusBadRequest,
	KindUnexpectedFile:       http.StatusBadRequest,
	KindRateLimited:          http.StatusTooManyRequests,
	KindUnknown:              http.StatusInternalServerError,
}

// Error is a classified failure: a stable kind, a client-safe message, and
// the HTTP status it renders with. Err optionally wraps the underlying cause
// for logs and development-mode diagnostics; it is never shown to production
// clients.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

// New builds an Error of the given kind with the default status for that kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Status: statusFor[kind]}
}

// Wrap is New with an underlying cause attached.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Status: statusFor[kind], Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so sentinel-style
// comparisons like errors.Is(err, apperr.New(KindAccessDenied, "")) work in
// tests without matching message text.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}
