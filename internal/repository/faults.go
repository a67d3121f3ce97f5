package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"

	appErrors "github.com/edunova/lms-api/pkg/errors"
)

// Postgres error codes translated at this boundary. No layer above the
// repositories ever inspects driver error identifiers.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqInvalidText         = "22P02"
)

// translate maps raw store errors onto the closed fault taxonomy. Malformed
// identifiers are reported as the resource not being found, so storage-engine
// format errors never leak to callers.
func translate(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.NotFound(resource)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return appErrors.Wrap(err, appErrors.KindStoreUnavailable, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return appErrors.Wrap(err, appErrors.KindStoreUnavailable, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case string(pqErr.Code) == pqUniqueViolation:
			return appErrors.Conflict(keyField(pqErr.Detail))
		case string(pqErr.Code) == pqInvalidText:
			return appErrors.NotFound(resource)
		case string(pqErr.Code) == pqForeignKeyViolation:
			field := keyField(pqErr.Detail)
			return appErrors.Validation(appErrors.FieldError{Field: field, Message: "referenced " + field + " does not exist"})
		case pqErr.Code.Class() == "08": // connection exceptions
			return appErrors.Wrap(err, appErrors.KindStoreUnavailable, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return appErrors.Wrap(err, appErrors.KindStoreUnavailable, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
	}

	return appErrors.Wrap(err, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, appErrors.ErrInternal.Message)
}

// keyField extracts the offending column list from a constraint violation
// detail of the form `Key (email)=(a@b.lk) already exists.`.
func keyField(detail string) string {
	start := strings.Index(detail, "(")
	if start < 0 {
		return "value"
	}
	end := strings.Index(detail[start:], ")")
	if end < 0 {
		return "value"
	}
	return detail[start+1 : start+end]
}
