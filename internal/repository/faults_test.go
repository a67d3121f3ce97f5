package repository

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/edunova/lms-api/pkg/errors"
)

func asFault(t *testing.T, err error) *appErrors.Error {
	t.Helper()
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	return fault
}

func TestTranslateNoRows(t *testing.T) {
	fault := asFault(t, translate(sql.ErrNoRows, "course"))
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
	assert.Equal(t, "course not found", fault.Message)
}

func TestTranslateUniqueViolation(t *testing.T) {
	cause := &pq.Error{Code: "23505", Detail: "Key (email)=(a@b.lk) already exists."}
	fault := asFault(t, translate(cause, "user"))
	assert.Equal(t, appErrors.KindConflict, fault.Kind)
	assert.Equal(t, http.StatusBadRequest, fault.Status)
	assert.Equal(t, "email already exists", fault.Message)
	require.Len(t, fault.Fields, 1)
	assert.Equal(t, "email", fault.Fields[0].Field)
}

func TestTranslateUniqueViolationWithoutDetail(t *testing.T) {
	fault := asFault(t, translate(&pq.Error{Code: "23505"}, "enrollment"))
	assert.Equal(t, appErrors.KindConflict, fault.Kind)
	assert.Equal(t, "value already exists", fault.Message)
}

func TestTranslateMalformedIdentifier(t *testing.T) {
	fault := asFault(t, translate(&pq.Error{Code: "22P02"}, "payment"))
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
	assert.Equal(t, "payment not found", fault.Message)
}

func TestTranslateForeignKeyViolation(t *testing.T) {
	cause := &pq.Error{Code: "23503", Detail: `Key (course_id)=(x) is not present in table "courses".`}
	fault := asFault(t, translate(cause, "enrollment"))
	assert.Equal(t, appErrors.KindValidation, fault.Kind)
	require.Len(t, fault.Fields, 1)
	assert.Equal(t, "course_id", fault.Fields[0].Field)
}

func TestTranslateConnectionFaults(t *testing.T) {
	for _, cause := range []error{
		context.DeadlineExceeded,
		context.Canceled,
		sql.ErrConnDone,
		&pq.Error{Code: "08006"},
	} {
		fault := asFault(t, translate(cause, "course"))
		assert.Equal(t, appErrors.KindStoreUnavailable, fault.Kind, "cause %v", cause)
		assert.Equal(t, "storage temporarily unavailable", fault.Message)
	}
}

func TestTranslateUnknownDegradesToInternal(t *testing.T) {
	cause := errors.New("pq: some driver detail")
	fault := asFault(t, translate(cause, "course"))
	assert.Equal(t, appErrors.KindInternal, fault.Kind)
	assert.Equal(t, "internal server error", fault.Message)
	assert.ErrorIs(t, fault, cause)
}

func TestTranslateNil(t *testing.T) {
	assert.NoError(t, translate(nil, "course"))
}
