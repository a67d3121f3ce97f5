package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter, p query.Params) ([]models.CourseDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error)
	Create(ctx context.Context, course *models.Course) error
	Update(ctx context.Context, course *models.Course) error
	Delete(ctx context.Context, id string) error
}

type catalogCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
	Invalidate(ctx context.Context, prefix string)
}

const catalogCachePrefix = "catalog:"

// CreateCourseRequest payload for publishing a course.
type CreateCourseRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Category    string  `json:"category" validate:"required"`
	Level       string  `json:"level" validate:"required,oneof=Beginner Intermediate Advanced"`
	Price       float64 `json:"price" validate:"gte=0"`
	Thumbnail   *string `json:"thumbnail"`
	Language    string  `json:"language" validate:"omitempty,oneof=English Tamil Sinhala"`
}

// UpdateCourseRequest payload for editing a course. Pointer fields are
// applied only when present.
type UpdateCourseRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Level       *string  `json:"level" validate:"omitempty,oneof=Beginner Intermediate Advanced"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Thumbnail   *string  `json:"thumbnail"`
	Language    *string  `json:"language" validate:"omitempty,oneof=English Tamil Sinhala"`
}

// catalogPage is the cached unit: one rendered page of the public catalog.
type catalogPage struct {
	Courses    []models.CourseDetail `json:"courses"`
	Pagination *query.Pagination     `json:"pagination"`
}

// CourseService handles the course catalog workflows. Approval gates
// visibility: callers without a stake in a course only see approved ones.
type CourseService struct {
	repo      courseRepository
	cache     catalogCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService creates an instance of CourseService. The cache may be
// nil, which disables catalog page caching.
func NewCourseService(repo courseRepository, cache catalogCache, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a page of courses visible to the viewer. Anonymous callers
// and students see approved courses only; teachers additionally see their
// own unapproved ones, admins see everything.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter, p query.Params, viewer *models.User) ([]models.CourseDetail, *query.Pagination, error) {
	approvedOnly := s.restrictToApproved(filter, viewer)
	if approvedOnly {
		t := true
		filter.Approved = &t
	}

	cacheable := approvedOnly && s.cache != nil && p.Search == ""
	key := ""
	if cacheable {
		key = catalogCacheKey(filter, p)
		var page catalogPage
		if s.cache.Get(ctx, key, &page) {
			return page.Courses, page.Pagination, nil
		}
	}

	courses, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	pagination := query.NewPagination(p.Page, p.Limit, total)

	if cacheable {
		s.cache.Set(ctx, key, catalogPage{Courses: courses, Pagination: pagination})
	}
	return courses, pagination, nil
}

// Get returns one course. Unapproved courses are hidden from everyone but
// their owner and admins; hidden reads as not found, not forbidden.
func (s *CourseService) Get(ctx context.Context, id string, expand []string, viewer *models.User) (*models.CourseDetail, error) {
	course, err := s.repo.FindByID(ctx, id, expand)
	if err != nil {
		return nil, err
	}
	if !course.Approved && !s.canSeeUnapproved(course.TeacherID, viewer) {
		return nil, appErrors.NotFound("course")
	}
	return course, nil
}

// Create publishes a new course owned by the given teacher. Courses start
// unapproved and stay out of the public catalog until an admin approves.
func (s *CourseService) Create(ctx context.Context, teacherID string, req CreateCourseRequest) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	language := req.Language
	if language == "" {
		language = "English"
	}

	course := &models.Course{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		TeacherID:   teacherID,
		Level:       req.Level,
		Price:       req.Price,
		Thumbnail:   req.Thumbnail,
		Language:    language,
		Approved:    false,
	}
	if err := s.repo.Create(ctx, course); err != nil {
		return nil, err
	}

	s.logger.Info("course created", zap.String("course_id", course.ID), zap.String("teacher_id", teacherID))
	return course, nil
}

// Update edits a course. Only the owning teacher or an admin may edit.
func (s *CourseService) Update(ctx context.Context, id string, req UpdateCourseRequest, actor *models.User) (*models.Course, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if !s.canManage(detail.TeacherID, actor) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to modify this course")
	}

	course := detail.Course
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Thumbnail != nil {
		course.Thumbnail = req.Thumbnail
	}
	if req.Language != nil {
		course.Language = *req.Language
	}

	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)
	return &course, nil
}

// Approve flips a course into the public catalog. Admin only; the route
// gate enforces the role, this just records who did it.
func (s *CourseService) Approve(ctx context.Context, id string, actor *models.User) (*models.Course, error) {
	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	course := detail.Course
	course.Approved = true
	if err := s.repo.Update(ctx, &course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(ctx)

	s.logger.Info("course approved", zap.String("course_id", id), zap.String("approved_by", actor.ID))
	return &course, nil
}

// Delete removes a course. Only the owning teacher or an admin may delete.
func (s *CourseService) Delete(ctx context.Context, id string, actor *models.User) error {
	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if !s.canManage(detail.TeacherID, actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "not allowed to delete this course")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateCatalog(ctx)
	return nil
}

func (s *CourseService) restrictToApproved(filter models.CourseFilter, viewer *models.User) bool {
	if viewer == nil {
		return true
	}
	switch viewer.Role {
	case models.RoleAdmin:
		return false
	case models.RoleTeacher:
		// Teachers browsing their own courses see drafts too.
		return filter.TeacherID != viewer.ID
	default:
		return true
	}
}

func (s *CourseService) canSeeUnapproved(teacherID string, viewer *models.User) bool {
	if viewer == nil {
		return false
	}
	return viewer.Role == models.RoleAdmin || viewer.ID == teacherID
}

func (s *CourseService) canManage(teacherID string, actor *models.User) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.ID == teacherID
}

func (s *CourseService) invalidateCatalog(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, catalogCachePrefix)
	}
}

func catalogCacheKey(filter models.CourseFilter, p query.Params) string {
	return catalogCachePrefix + strings.Join([]string{
		filter.Category, filter.Level, filter.Language, filter.TeacherID,
		p.Sort, strings.Join(p.Expand, "+"),
		fmt.Sprintf("%d:%d", p.Page, p.Limit),
	}, "|")
}
