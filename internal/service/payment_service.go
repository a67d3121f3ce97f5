package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
	"github.com/edunova/lms-api/pkg/export"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter, p query.Params) ([]models.PaymentDetail, int, error)
	FindByID(ctx context.Context, id string, expand []string) (*models.PaymentDetail, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	Delete(ctx context.Context, id string) error
}

type paymentCourseRepository interface {
	FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error)
}

// CreatePaymentRequest payload for recording a course purchase. The amount
// is taken from the course price, never from the client.
type CreatePaymentRequest struct {
	CourseID string `json:"course" validate:"required"`
	Method   string `json:"method" validate:"required,oneof=PayHere Stripe WebXPay"`
}

// UpdatePaymentRequest payload for resolving a pending payment, typically
// from a gateway callback.
type UpdatePaymentRequest struct {
	Status        string  `json:"status" validate:"required,oneof=pending completed failed"`
	TransactionID *string `json:"transactionId"`
}

// PaymentService handles course purchase workflows.
type PaymentService struct {
	repo      paymentRepository
	courses   paymentCourseRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPaymentService creates an instance of PaymentService.
func NewPaymentService(repo paymentRepository, courses paymentCourseRepository, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PaymentService{repo: repo, courses: courses, validator: validate, logger: logger}
}

// List returns a page of payments. Students only see their own.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter, p query.Params, viewer *models.User) ([]models.PaymentDetail, *query.Pagination, error) {
	if viewer != nil && viewer.Role == models.RoleStudent {
		filter.UserID = viewer.ID
	}

	payments, total, err := s.repo.List(ctx, filter, p)
	if err != nil {
		return nil, nil, err
	}
	return payments, query.NewPagination(p.Page, p.Limit, total), nil
}

// Get returns one payment, hidden from students who do not own it.
func (s *PaymentService) Get(ctx context.Context, id string, expand []string, viewer *models.User) (*models.PaymentDetail, error) {
	payment, err := s.repo.FindByID(ctx, id, expand)
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleStudent && payment.UserID != viewer.ID {
		return nil, appErrors.NotFound("payment")
	}
	return payment, nil
}

// Create records a pending payment for a course purchase.
func (s *PaymentService) Create(ctx context.Context, userID string, req CreatePaymentRequest) (*models.Payment, error) {
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

	payment := &models.Payment{
		UserID:   userID,
		CourseID: req.CourseID,
		Amount:   course.Price,
		Method:   req.Method,
		Status:   models.PaymentPending,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment recorded",
		zap.String("payment_id", payment.ID),
		zap.String("course_id", req.CourseID),
		zap.String("method", req.Method))
	return payment, nil
}

// UpdateStatus resolves a payment's status and transaction reference.
func (s *PaymentService) UpdateStatus(ctx context.Context, id string, req UpdatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.FromValidator(err)
	}

	detail, err := s.repo.FindByID(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	payment := detail.Payment
	payment.Status = req.Status
	if req.TransactionID != nil {
		payment.TransactionID = req.TransactionID
	}
	if err := s.repo.Update(ctx, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

// Delete removes a payment record. Admin only; the route gate enforces it.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Receipt renders a PDF receipt for a completed payment. Students may only
// print their own.
func (s *PaymentService) Receipt(ctx context.Context, id string, viewer *models.User) ([]byte, error) {
	payment, err := s.repo.FindByID(ctx, id, []string{"user", "course"})
	if err != nil {
		return nil, err
	}
	if viewer != nil && viewer.Role == models.RoleStudent && payment.UserID != viewer.ID {
		return nil, appErrors.NotFound("payment")
	}
	if payment.Status != models.PaymentCompleted {
		return nil, appErrors.Clone(appErrors.ErrValidation, "receipt is only available for completed payments")
	}

	pdf, err := export.Receipt(payment)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Kind, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return pdf, nil
}
