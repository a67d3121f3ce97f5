package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type lessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter, p query.Params) ([]models.Lesson, int, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type lessonCourseRepository interface {
	FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error)
}

// CreateLessonRequest payload for adding a lesson to a course.
type CreateLessonRequest struct {
	CourseID string  `json:"course" validate:"required"`
	Title    string  `json:"title" validate:"required"`
	VideoURL *string `json:"videoUrl"`
	Content  string  `json:"content"`
	Duration int     `json:"duration" validate:"gte=0"`
	Position int     `json:"order" validate:"gte=0"`
}

// UpdateLessonRequest payload for editing a lesson.
type UpdateLessonRequest struct {
	Title    *string `json:"title"`
	VideoURL *string `json:"videoUrl"`
	Content  *string `json:"content"`
	Duration *int    `json:"duration" validate:"omitempty,gte=0"`
	Position *int    `json:"order" validate:"omitempty,gte=0"`
}

// LessonService handles course content workflows. Write access follows the
// owning course: only its teacher or an admin may touch lessons.
type LessonService struct {
	repo      lessonRepository
	courses   lessonCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService creates an instance of LessonService.
func NewLessonService(repo lessonRepository, courses lessonCourseRepository, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &LessonService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns a page of lessons with pagination metadata.
func (s *LessonService) List(ctx context.Context, filter models.LessonFilter, p query.Params) ([]models.Lesson, *query.Pagination, error) {
	lessons, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return lessons, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one lesson.
func (s *LessonService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	return s.repo.FindByID(ctx, id)
}

// Create adds a lesson to a course the actor owns.
func (s *LessonService) Create(ctx context.Context, req CreateLessonRequest, actor *models.User) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	if err := s.authorizeCourse(ctx, req.CourseID, actor); err != nil {
		return nil, err
	}

	lesson := &models.Lesson{
		CourseID: req.CourseID,
		Title:    req.Title,
		VideoURL: req.VideoURL,
		Content:  req.Content,
		Duration: req.Duration,
		Position: req.Position,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Update edits a lesson after checking course ownership.
func (s *LessonService) Update(ctx context.Context, id string, req UpdateLessonRequest, actor *models.User) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeCourse(ctx, lesson.CourseID, actor); err != nil {
		return nil, err
	}

	if req.Title != nil {
		lesson.Title = *req.Title
	}
	if req.VideoURL != nil {
		lesson.VideoURL = req.VideoURL
	}
	if req.Content != nil {
		lesson.Content = *req.Content
	}
	if req.Duration != nil {
		lesson.Duration = *req.Duration
	}
	if req.Position != nil {
		lesson.Position = *req.Position
	}

	if err := s.repo.Update(ctx, lesson); err != nil {
		return nil, err
	}
	return lesson, nil
}

// Delete removes a lesson after checking course ownership.
func (s *LessonService) Delete(ctx context.Context, id string, actor *models.User) error {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeCourse(ctx, lesson.CourseID, actor); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *LessonService) authorizeCourse(ctx context.Context, courseID string, actor *models.User) error {
	course, err := s.courses.FindByID(ctx, courseID, nil)
	if err != nil {
		return err
	}
	if actor == nil || (actor.Role != models.RoleAdmin && actor.ID != course.TeacherID) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to manage lessons of this course")
	}
	return nil
}
