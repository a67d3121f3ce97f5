package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter, p query.Params) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
	Roster(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error)
}

type enrollmentCourseRepository interface {
	FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error)
}

// EnrollRequest payload for enrolling a student into a course.
type EnrollRequest struct {
	CourseID string `json:"course" validate:"required"`
}

// UpdateProgressRequest payload for moving an enrollment forward.
type UpdateProgressRequest struct {
	Progress *int    `json:"progress" validate:"omitempty,gte=0,lte=100"`
	Status   *string `json:"status" validate:"omitempty,oneof=active completed"`
}

// EnrollmentService handles enrollment workflows. Students enrol themselves;
// progress moves in either direction but stays within 0-100.
type EnrollmentService struct {
	repo      enrollmentRepository
	courses   enrollmentCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates an instance of EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, courses enrollmentCourseRepository, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &EnrollmentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns a page of enrollments. Students only ever see their own.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter, p query.Params, viewer *models.User) ([]models.EnrollmentDetail, *query.Pagination, error) {
	if viewer != nil && viewer.Role == models.RoleStudent {
		filter.StudentID = viewer.ID
	}

	enrollments, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return enrollments, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one enrollment, hidden from students who do not own it.
func (s *EnrollmentService) Get(ctx context.Context, id string, expand []string, viewer *models.User) (*models.EnrollmentDetail, error) {
	enrollment, err := s.repo.FindByID(ctx, id, expand)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleStudent && enrollment.StudentID != viewer.ID {
		return nil, appErrors.NotFound("enrollment")
	}
	return enrollment, nil
}

// Enroll registers the student on an approved course. A second attempt on
// the same course surfaces as a conflict.
func (s *EnrollmentService) Enroll(ctx context.Context, studentID string, req EnrollRequest) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	course, err := s.courses.FindByID(ctx, req.CourseID, nil)
	if err != nil {
		return nil, err
	}
	if !course.Approved {
		return nil, appErrors.NotFound("course")
	}

	enrollment := &models.Enrollment{
		StudentID: studentID,
		CourseID:  req.CourseID,
		Progress:  0,
		Status:    models.EnrollmentActive,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.logger.Info("student enrolled",
		zap.String("student_id", studentID),
		zap.String("course_id", req.CourseID))
	return enrollment, nil
}

// UpdateProgress sets the progress and status of an enrollment. Hitting 100
// flips the status to completed unless the caller set one explicitly.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, id string, req UpdateProgressRequest, actor *models.User) (*models.Enrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	if actor != nil && actor.Role == models.RoleStudent && detail.StudentID != actor.ID {
		return nil, appErrors.NotFound("enrollment")
	}

	enrollment := detail.Enrollment
	if req.Progress != nil {
		enrollment.Progress = *req.Progress
		if enrollment.Progress >= 100 && req.Status == nil {
			enrollment.Status = models.EnrollmentCompleted
		}
	}
	if req.Status != nil {
		enrollment.Status = *req.Status
	}

	if err := s.repo.Update(ctx, &enrollment); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Unenroll removes an enrollment. Students may only drop their own.
func (s *EnrollmentService) Unenroll(ctx context.Context, id string, actor *models.User) error {
	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if actor != nil && actor.Role == models.RoleStudent && detail.StudentID != actor.ID {
		return appErrors.NotFound("enrollment")
	}
	return s.repo.Delete(ctx, id)
}

// Roster returns the full student list of a course for export. Only the
// course's teacher or an admin may pull it.
func (s *EnrollmentService) Roster(ctx context.Context, courseID string, actor *models.User) (*models.CourseDetail, []models.EnrollmentDetail, error) {
	course, err := s.courses.FindByID(ctx, courseID, nil)
	if err != nil {
		return nil, nil, err
	}
	if actor == nil || (actor.Role != models.RoleAdmin && actor.ID != course.TeacherID) {
		return nil, nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to export this roster")
	}

	roster, err := s.repo.Roster(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	return course, roster, nil
}
