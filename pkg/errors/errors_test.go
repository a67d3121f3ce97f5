package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotFoundNamesResource(t *testing.T) {
	err := NotFound("course")
	assert.Equal(t, KindNotFound, err.Kind)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Equal(t, "course not found", err.Message)
}

func TestConflictNamesField(t *testing.T) {
	err := Conflict("email")
	assert.Equal(t, KindConflict, err.Kind)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "email already exists", err.Message)
	require.Len(t, err.Fields, 1)
	assert.Equal(t, "email", err.Fields[0].Field)
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrUnauthorized, "invalid credentials")
	assert.Equal(t, "invalid credentials", clone.Message)
	assert.Equal(t, "not authorized to access this route", ErrUnauthorized.Message)
}

func TestFromErrorPassesThroughClassifiedFaults(t *testing.T) {
	original := NotFound("user")
	wrapped := FromError(original)
	assert.Same(t, original, wrapped)
}

func TestFromErrorDegradesUnclassifiedToInternal(t *testing.T) {
	cause := errors.New("pq: something leaked")
	fault := FromError(cause)
	assert.Equal(t, KindInternal, fault.Kind)
	assert.Equal(t, http.StatusInternalServerError, fault.Status)
	assert.Equal(t, ErrInternal.Message, fault.Message)
	assert.ErrorIs(t, fault, cause)
}

func TestFromErrorNil(t *testing.T) {
	assert.Nil(t, FromError(nil))
}

func TestFromValidatorPreservesFieldOrder(t *testing.T) {
	type payload struct {
		Email    string `validate:"required,email"`
		Password string `validate:"required,min=6"`
	}
	err := validator.New().Struct(payload{})
	require.Error(t, err)

	fault := FromValidator(err)
	assert.Equal(t, KindValidation, fault.Kind)
	assert.Equal(t, http.StatusBadRequest, fault.Status)
	require.Len(t, fault.Fields, 2)
	assert.Equal(t, "Email", fault.Fields[0].Field)
	assert.Equal(t, "Password", fault.Fields[1].Field)
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(cause, KindInternal, http.StatusInternalServerError, "wrapped")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "wrapped: boom", err.Error())
}
