package errors

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
)

// Kind classifies a fault into the closed taxonomy used across the API.
type Kind string

const (
	KindValidation       Kind = "validation"
	KindNotFound         Kind = "notFound"
	KindConflict         Kind = "conflict"
	KindUnauthenticated  Kind = "unauthenticated"
	KindForbidden        Kind = "forbidden"
	KindStoreUnavailable Kind = "storeUnavailable"
	KindInternal         Kind = "internal"
)

// FieldError describes a single field-level constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is a typed fault with HTTP awareness. Immutable once built: helpers
// return copies rather than mutating in place.
type Error struct {
	Kind    Kind         `json:"kind"`
	Status  int          `json:"-"`
	Message string       `json:"message"`
	Fields  []FieldError `json:"details,omitempty"`
	Err     error        `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// New creates an Error of the given kind.
func New(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

// Wrap attaches a cause to a new Error of the given kind.
func Wrap(err error, kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message, Err: err}
}

// Predefined faults for common scenarios.
var (
	ErrValidation       = New(KindValidation, http.StatusBadRequest, "validation failed")
	ErrNotFound         = New(KindNotFound, http.StatusNotFound, "resource not found")
	ErrConflict         = New(KindConflict, http.StatusBadRequest, "already exists")
	ErrUnauthorized     = New(KindUnauthenticated, http.StatusUnauthorized, "not authorized to access this route")
	ErrDeactivated      = New(KindUnauthenticated, http.StatusUnauthorized, "account is deactivated")
	ErrForbidden        = New(KindForbidden, http.StatusForbidden, "forbidden")
	ErrStoreUnavailable = New(KindStoreUnavailable, http.StatusInternalServerError, "storage temporarily unavailable")
	ErrInternal         = New(KindInternal, http.StatusInternalServerError, "internal server error")
)

// Clone returns a copy of the error with an optional message override.
func Clone(err *Error, message string) *Error {
	if err == nil {
		return nil
	}
	clone := *err
	if message != "" {
		clone.Message = message
	}
	return &clone
}

// NotFound builds a notFound fault naming the missing resource.
func NotFound(resource string) *Error {
	return Clone(ErrNotFound, resource+" not found")
}

// Conflict builds a conflict fault naming the offending field.
func Conflict(field string) *Error {
	e := Clone(ErrConflict, field+" already exists")
	e.Fields = []FieldError{{Field: field, Message: field + " already exists"}}
	return e
}

// Validation builds a validation fault from an ordered list of field errors.
func Validation(fields ...FieldError) *Error {
	e := Clone(ErrValidation, "validation failed")
	e.Fields = fields
	return e
}

// FromValidator translates validator.ValidationErrors into a validation
// fault, preserving field order.
func FromValidator(err error) *Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Wrap(err, KindValidation, http.StatusBadRequest, "invalid payload")
	}
	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}
	fault := Validation(fields...)
	fault.Err = err
	return fault
}

// FromError normalises any error into an *Error. Unclassified errors degrade
// to a generic internal fault so driver detail never reaches a caller.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Wrap(err, ErrInternal.Kind, ErrInternal.Status, ErrInternal.Message)
}
