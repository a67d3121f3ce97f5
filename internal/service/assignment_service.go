package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter, p query.Params) ([]models.AssignmentDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.AssignmentDetail, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentCourseRepository interface {
	FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error)
}

// CreateAssignmentRequest payload for publishing an assignment.
type CreateAssignmentRequest struct {
	CourseID    string     `json:"course" validate:"required"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// UpdateAssignmentRequest payload for editing an assignment.
type UpdateAssignmentRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	DueDate     *time.Time `json:"dueDate"`
}

// AssignmentService handles coursework workflows.
type AssignmentService struct {
	repo      assignmentRepository
	courses   assignmentCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService creates an instance of AssignmentService.
func NewAssignmentService(repo assignmentRepository, courses assignmentCourseRepository, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns a page of assignments with pagination metadata.
func (s *AssignmentService) List(ctx context.Context, filter models.AssignmentFilter, p query.Params) ([]models.AssignmentDetail, *query.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return assignments, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one assignment.
func (s *AssignmentService) Get(ctx context.Context, id string, expand []string) (*models.AssignmentDetail, error) {
	return s.repo.FindByID(ctx, id, expand)
}

// Create publishes an assignment on a course the actor owns.
func (s *AssignmentService) Create(ctx context.Context, req CreateAssignmentRequest, actor *models.User) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	course, err := s.courses.FindByID(ctx, req.CourseID, nil)
	if err != nil {
		return nil, err
	}
	if actor == nil || (actor.Role != models.RoleAdmin && actor.ID != course.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to publish assignments on this course")
	}

	assignment := &models.Assignment{
		CourseID:    req.CourseID,
		TeacherID:   actor.ID,
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, err
	}
	return assignment, nil
}

// Update edits an assignment. Only its author or an admin may edit.
func (s *AssignmentService) Update(ctx context.Context, id string, req UpdateAssignmentRequest, actor *models.User) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if !s.canManage(detail.TeacherID, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to modify this assignment")
	}

	assignment := detail.Assignment
	if req.Title != nil {
		assignment.Title = *req.Title
	}
	if req.Description != nil {
		assignment.Description = *req.Description
	}
	if req.DueDate != nil {
		assignment.DueDate = req.DueDate
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Delete removes an assignment. Only its author or an admin may delete.
func (s *AssignmentService) Delete(ctx context.Context, id string, actor *models.User) error {
	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if !s.canManage(detail.TeacherID, actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this assignment")
	}
	return s.repo.Delete(ctx, id)
}

func (s *AssignmentService) canManage(teacherID string, actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.ID == teacherID
}
