package response

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

// Envelope is the fixed response contract shared by every resource.
type Envelope struct {
	Success    bool                   `json:"success"`
	Data       interface{}            `json:"data,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Details    []appErrors.FieldError `json:"details,omitempty"`
	Pagination *query.Pagination      `json:"pagination,omitempty"`
	Stack      string                 `json:"stack,omitempty"`
}

// JSON sends a success response with optional pagination metadata.
func JSON(c *gin.Context, status int, data interface{}, pagination *query.Pagination) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, Envelope{Success: true, Data: data, Pagination: pagination})
}

// Created responds with HTTP 201 Created.
func Created(c *gin.Context, data interface{}) {
	JSON(c, http.StatusCreated, data, nil)
}

// NoContent sends a 204 response.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error normalises the fault and renders the error envelope. The fault is
// recorded on the gin context so the request logger can report it with the
// request id; the envelope itself only ever carries the classified message.
func Error(c *gin.Context, err error) {
	fault := appErrors.FromError(err)
	_ = c.Error(fault)

	envelope := Envelope{Success: false, Error: fault.Message, Details: fault.Fields}
	if gin.Mode() != gin.ReleaseMode && fault.Err != nil {
		envelope.Stack = fault.Err.Error() + "\n" + string(debug.Stack())
	}

	c.Header("Cache-Control", "no-store")
	c.JSON(fault.Status, envelope)
}
