package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type userRepository interface {
	List(ctx context.Context, filter models.UserFilter, p query.Params) ([]models.User, int, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Deactivate(ctx context.Context, id string) error
}

// UpdateUserRequest payload for updating an account's profile.
type UpdateUserRequest struct {
	Name         string  `json:"name" validate:"omitempty,min=1"`
	ProfileImage *string `json:"profileImage"`
	AvatarURL    *string `json:"avatarUrl"`
	Language     string  `json:"language" validate:"omitempty,oneof=English Tamil Sinhala"`
}

// UpdateStatusRequest payload for resolving a pending registration.
type UpdateStatusRequest struct {
	Status models.Status `json:"status" validate:"required,oneof=approved rejected"`
}

// UserService handles account management workflows.
type UserService struct {
	repo      userRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewUserService creates an instance of UserService.
func NewUserService(repo userRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, validator: validate, logger: logger}
}

// List returns a page of users with pagination metadata.
func (s *UserService) List(ctx context.Context, filter models.UserFilter, p query.Params) ([]models.User, *query.Pagination, error) {
	users, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return users, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns a user by identifier.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.repo.FindByID(ctx, id)
}

// Update modifies a user's own profile fields.
func (s *UserService) Update(ctx context.Context, id string, req UpdateUserRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		user.Name = req.Name
	}
	if req.ProfileImage != nil {
		user.ProfileImage = req.ProfileImage
	}
	if req.AvatarURL != nil {
		user.AvatarURL = req.AvatarURL
	}
	if req.Language != "" {
		user.Language = req.Language
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateStatus resolves a pending registration to approved or rejected.
func (s *UserService) UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Status = req.Status
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("registration resolved",
		zap.String("user_id", user.ID),
		zap.String("status", string(user.Status)))
	return user, nil
}

// Deactivate soft-deletes an account. The next token validation for the
// account fails, so open sessions expire immediately.
func (s *UserService) Deactivate(ctx context.Context, id string) error {
	return s.repo.Deactivate(ctx, id)
}
