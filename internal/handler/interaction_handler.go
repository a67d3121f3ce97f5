package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	"github.com/edunova/lms-api/internal/service"
	appErrors "github.com/edunova/lms-api/pkg/errors"
	"github.com/edunova/lms-api/pkg/response"
)

// InteractionHandler exposes the assistant interaction log endpoints.
type InteractionHandler struct {
	interactions *service.InteractionService
}

// NewInteractionHandler constructs InteractionHandler.
func NewInteractionHandler(interactions *service.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// List godoc
// @Summary List interaction log entries
// @Tags Interactions
// @Produce json
// @Param user query string false "Filter by user (admin only)"
// @Param course query string false "Filter by course"
// @Param mode query string false "Filter by mode"
// @Param search query string false "Search question or response"
// @Param expand query string false "Comma-separated expansions (user)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /interactions [get]
func (h *InteractionHandler) List(c *gin.Context) {
	filter := models.InteractionFilter{
		UserID:   c.Query("user"),
		CourseID: c.Query("course"),
		Mode:     c.Query("mode"),
	}

	interactions, pagination, err := h.interactions.List(c.Request.Context(), filter, query.FromRequest(c), currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interactions, pagination)
}

// Get godoc
// @Summary Get an interaction log entry
// @Tags Interactions
// @Produce json
// @Param id path string true "Interaction ID"
// @Param expand query string false "Comma-separated expansions (user)"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /interactions/{id} [get]
func (h *InteractionHandler) Get(c *gin.Context) {
	p := query.FromRequest(c)
	interaction, err := h.interactions.Get(c.Request.Context(), c.Param("id"), p.Expand, currentUser(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, interaction, nil)
}

// Log godoc
// @Summary Append an assistant exchange to the caller's history
// @Tags Interactions
// @Accept json
// @Produce json
// @Param payload body service.LogInteractionRequest true "Interaction payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /interactions [post]
func (h *InteractionHandler) Log(c *gin.Context) {
	actor := currentUser(c)
	if actor == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.LogInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Kind, http.StatusBadRequest, "invalid payload"))
		return
	}
	interaction, err := h.interactions.Log(c.Request.Context(), actor.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, interaction)
}

// Delete godoc
// @Summary Delete an interaction log entry
// @Tags Interactions
// @Produce json
// @Param id path string true "Interaction ID"
// @Success 204
// @Security BearerAuth
// @Router /interactions/{id} [delete]
func (h *InteractionHandler) Delete(c *gin.Context) {
	if err := h.interactions.Delete(c.Request.Context(), c.Param("id"), currentUser(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
