package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

type submissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter, p query.Params) ([]models.SubmissionDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.SubmissionDetail, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
	Delete(ctx context.Context, id string) error
}

type submissionAssignmentRepository interface {
	FindByID(ctx context.Context, id string, expand []string) (*models.AssignmentDetail, error)
}

// SubmitRequest payload for handing in an assignment.
type SubmitRequest struct {
	AssignmentID string  `json:"assignment" validate:"required"`
	FileURL      *string `json:"fileUrl"`
}

// GradeRequest payload for grading a submission.
type GradeRequest struct {
	Grade    string `json:"grade" validate:"required"`
	Feedback string `json:"feedback"`
}

// SubmissionService handles assignment hand-in and grading workflows.
type SubmissionService struct {
	repo        submissionRepository
	assignments submissionAssignmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewSubmissionService creates an instance of SubmissionService.
func NewSubmissionService(repo submissionRepository, assignments submissionAssignmentRepository, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{repo: repo, assignments: assignments, validator: validate, logger: logger}
}

// List returns a page of submissions. Students only see their own.
func (s *SubmissionService) List(ctx context.Context, filter models.SubmissionFilter, p query.Params, viewer *models.User) ([]models.SubmissionDetail, *query.Pagination, error) {
	if viewer != nil && viewer.Role == models.RoleStudent {
		filter.StudentID = viewer.ID
	}

	submissions, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return submissions, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one submission, hidden from students who do not own it.
func (s *SubmissionService) Get(ctx context.Context, id string, expand []string, viewer *models.User) (*models.SubmissionDetail, error) {
	submission, err := s.repo.FindByID(ctx, id, expand)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleStudent && submission.StudentID != viewer.ID {
		return nil, appErrors.NotFound("submission")
	}
	return submission, nil
}

// Submit hands in an assignment. A second submission on the same assignment
// by the same student surfaces as a conflict.
func (s *SubmissionService) Submit(ctx context.Context, studentID string, req SubmitRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	if _, err := s.assignments.FindByID(ctx, req.AssignmentID, nil); err != nil {
		return nil, err
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    studentID,
		FileURL:      req.FileURL,
		Grade:        models.GradePending,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// Grade records a grade and feedback. Only the assignment's author or an
// admin may grade.
func (s *SubmissionService) Grade(ctx context.Context, id string, req GradeRequest, actor *models.User) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignments.FindByID(ctx, detail.AssignmentID, nil)
	if err != nil {
		return nil, err
	}
	if actor == nil || (actor.Role != models.RoleAdmin && actor.ID != assignment.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not allowed to grade this submission")
	}

	submission := detail.Submission
	submission.Grade = req.Grade
	submission.Feedback = req.Feedback
	if err := s.repo.Update(ctx, &submission); err != nil {
		return nil, err
	}

	s.logger.Info("submission graded",
		zap.String("submission_id", submission.ID),
		zap.String("graded_by", actor.ID))
	return &submission, nil
}

// Delete removes a submission. Students may only retract their own, and
// only while it is still ungraded.
func (s *SubmissionService) Delete(ctx context.Context, id string, actor *models.User) error {
	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return err
	}
	if actor != nil && actor.Role == models.RoleStudent {
		if detail.StudentID != actor.ID {
			return appErrors.NotFound("submission")
		}
		if detail.Grade != models.GradePending {
			return appErrors.Clone(appErrors.ErrForbidden, "graded submissions cannot be retracted")
		}
	}
	return s.repo.Delete(ctx, id)
}
