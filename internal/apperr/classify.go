package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"barberbook/internal/domain"
)

// Postgres SQLSTATE codes recognized by the classifier. Exact matches only;
// any other PgError code falls through to the generic store failure.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgStringDataTooLong   = "22001"
	pgConnectionFailure   = "08006"
)

// Classify maps any failure to exactly one *Error. It is total and
// deterministic: the same input always yields the same kind, and an input
// nothing recognizes yields KindUnknown.
//
// Match order is load-bearing. A failure that is already an *Error was
// classified at its producing boundary and passes through untouched, so a
// gate's AccessDenied can never be reinterpreted as a store error even if it
// wraps one.
func Classify(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		msgs := make([]string, len(vErrs))
		for i, fe := range vErrs {
			msgs[i] = fieldMessage(fe)
		}
		return Wrap(KindValidationFailed, strings.Join(msgs, ", "), err)
	}

	if errors.Is(err, domain.ErrNotFound) {
		return Wrap(KindResourceNotFound, "Resource not found", err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPgError(pgErr)
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) || pgconn.Timeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return Wrap(KindStoreUnavailable, "Database connection error", err)
	}

	if kind, ok := classifyJWTError(err); ok {
		switch kind {
		case KindTokenExpired:
			return Wrap(kind, "Token expired", err)
		default:
			return Wrap(kind, "Invalid token", err)
		}
	}

	msg := "Server Error"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Wrap(KindUnknown, msg, err)
}

// classifyPgError translates a SQLSTATE code into the error taxonomy.
func classifyPgError(pgErr *pgconn.PgError) *Error {
	switch pgErr.Code {
	case pgUniqueViolation:
		return Wrap(KindDuplicateEntry, "Duplicate entry - resource already exists", pgErr)
	case pgForeignKeyViolation:
		return Wrap(KindInvalidReference, "Referenced resource does not exist", pgErr)
	case pgNotNullViolation:
		return Wrap(KindMissingRequiredField, "Required field is missing", pgErr)
	case pgStringDataTooLong:
		return Wrap(KindInputTooLong, "Input data too long", pgErr)
	case pgConnectionFailure:
		return Wrap(KindStoreUnavailable, "Database connection error", pgErr)
	default:
		return Wrap(KindStoreError, "Database error occurred", pgErr)
	}
}

// classifyJWTError recognizes the sentinel errors the jwt library produces.
// Verification code normally maps these at its own boundary; this path covers
// jwt failures that escape through some other route.
func classifyJWTError(err error) (Kind, bool) {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return KindTokenExpired, true
	case errors.Is(err, jwt.ErrTokenMalformed),
		errors.Is(err, jwt.ErrTokenSignatureInvalid),
		errors.Is(err, jwt.ErrTokenUnverifiable),
		errors.Is(err, jwt.ErrTokenNotValidYet):
		return KindInvalidToken, true
	}
	return KindUnknown, false
}

// fieldMessage renders one struct-validation violation as a short human
// message, e.g. "email must be a valid email address".
func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
