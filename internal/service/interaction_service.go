package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type interactionRepository interface {
	List(ctx context.Context, filter models.InteractionFilter, p query.Params) ([]models.InteractionDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.InteractionDetail, error)
	Create(ctx context.Context, interaction *models.Interaction) error
	Delete(ctx context.Context, id string) error
}

// LogInteractionRequest payload for appending an assistant exchange to the
// caller's history.
type LogInteractionRequest struct {
	CourseID *string `json:"course"`
	Question string  `json:"question" validate:"required"`
	Response string  `json:"response" validate:"required"`
	Mode     string  `json:"mode" validate:"omitempty,oneof=text voice"`
}

// InteractionService handles the assistant interaction log. The log is
// append-only: entries are created and deleted, never edited.
type InteractionService struct {
	repo      interactionRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewInteractionService creates an instance of InteractionService.
func NewInteractionService(repo interactionRepository, validate *validator.Validate, logger *zap.Logger) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &InteractionService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of interaction log entries. Non-admins only see
// their own history.
func (s *InteractionService) List(ctx context.Context, filter models.InteractionFilter, p query.Params, viewer *models.User) ([]models.InteractionDetail, *query.Pagination, error) {
	if viewer != nil && viewer.Role != models.RoleAdmin {
		filter.UserID = viewer.ID
	}

	interactions, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return interactions, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one log entry, hidden from non-admins who do not own it.
func (s *InteractionService) Get(ctx context.Context, id string, expand []string, viewer *models.User) (*models.InteractionDetail, error) {
	interaction, err := s.repo.FindByID(ctx, id, expand)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role != models.RoleAdmin && interaction.UserID != viewer.ID {
		return nil, appErrors.NotFound("interaction")
	}
	return interaction, nil
}

// Log appends an exchange to the caller's history.
func (s *InteractionService) Log(ctx context.Context, userID string, req LogInteractionRequest) (*models.Interaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	mode := req.Mode
	if mode == "" {
		mode = models.ModeText
	}

	interaction := &models.Interaction{
		UserID:   userID,
		CourseID: req.CourseID,
		Question: req.Question,
		Response: req.Response,
		Mode:     mode,
	}
	if err := s.repo.Create(ctx, interaction); err != nil {
		return nil, err
	}
	return interaction, nil
}

// Delete removes a log entry. Non-admins may only clear their own.
func (s *InteractionService) Delete(ctx context.Context, id string, actor *models.User) error {
	interaction, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if actor != nil && actor.Role != models.RoleAdmin && interaction.UserID != actor.ID {
		return appErrors.NotFound("interaction")
	}
	return s.repo.Delete(ctx, id)
}
