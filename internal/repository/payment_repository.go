package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
)

const paymentColumns = "p.id, p.user_id, p.course_id, p.amount, p.method, p.status, p.transaction_id, p.payment_date, p.created_at, p.updated_at"

var paymentSortColumns = map[string]string{
	"createdAt":   "p.created_at",
	"paymentDate": "p.payment_date",
	"amount":      "p.amount",
	"status":      "p.status",
}

var paymentExpansions = query.MustExpansions(
	query.Expansion{
		Name:    "user",
		Join:    "LEFT JOIN users u ON u.id = p.user_id",
		Columns: []string{"u.name AS user_name", "u.email AS user_email"},
	},
	query.Expansion{
		Name:    "course",
		Join:    "LEFT JOIN courses c ON c.id = p.course_id",
		Columns: []string{"c.title AS course_title"},
	},
)

// PaymentRepository manages persistence for payment records.
type PaymentRepository struct {
	db *sqlx.DB
}

// NewPaymentRepository constructs a PaymentRepository.
func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// List returns a page of payments matching the filter.
func (r *PaymentRepository) List(ctx context.Context, filter models.PaymentFilter, p query.Params) ([]models.PaymentDetail, int, error) {
	b := query.NewBuilder()
	if filter.UserID != "" {
		b.Equals("p.user_id", filter.UserID)
	}
	if filter.CourseID != "" {
		b.Equals("p.course_id", filter.CourseID)
	}
	if filter.Status != "" {
		b.Equals("p.status", filter.Status)
	}
	if filter.Method != "" {
		b.Equals("p.method", filter.Method)
	}

	joins, expandCols := paymentExpansions.Apply(p.Expand)
	cols := paymentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM payments p"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, paymentSortColumns, "p.created_at DESC", "p.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM payments p" + b.Clause()

	payments := []models.PaymentDetail{}
	total, err := query.Paged(ctx, r.db, &payments, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "payment")
	}
	return payments, total, nil
}

// FindByID fetches one payment, applying any requested expansions.
func (r *PaymentRepository) FindByID(ctx context.Context, id string, expand []string) (*models.PaymentDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := paymentExpansions.Apply(expand)
	cols := paymentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM payments p %s WHERE p.id = $1", cols, strings.Join(joins, " "))

	var payment models.PaymentDetail
	if err := r.db.GetContext(ctx, &payment, q, id); err != nil {
		return nil, translate(err, "payment")
	}
	return &payment, nil
}

// Create inserts a new payment record.
func (r *PaymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.PaymentDate.IsZero() {
		payment.PaymentDate = now
	}
	payment.CreatedAt = now
	payment.UpdatedAt = now

	const q = `INSERT INTO payments (id, user_id, course_id, amount, method, status, transaction_id, payment_date, created_at, updated_at)
        VALUES (:id, :user_id, :course_id, :amount, :method, :status, :transaction_id, :payment_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, payment); err != nil {
		return translate(err, "payment")
	}
	return nil
}

// Update modifies the status and transaction reference of a payment.
func (r *PaymentRepository) Update(ctx context.Context, payment *models.Payment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	payment.UpdatedAt = time.Now().UTC()
	const q = `UPDATE payments SET status = :status, transaction_id = :transaction_id, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, payment)
	if err != nil {
		return translate(err, "payment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "payment")
	}
	return nil
}

// Delete removes a payment record.
func (r *PaymentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE id = $1", id)
	if err != nil {
		return translate(err, "payment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "payment")
	}
	return nil
}
