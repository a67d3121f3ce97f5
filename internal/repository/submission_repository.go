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

const submissionColumns = "sub.id, sub.assignment_id, sub.student_id, sub.file_url, sub.grade, sub.feedback, sub.submitted_at, sub.created_at, sub.updated_at"

var submissionSortColumns = map[string]string{
	"createdAt":   "sub.created_at",
	"submittedAt": "sub.submitted_at",
	"grade":       "sub.grade",
}

var submissionExpansions = query.MustExpansions(
	query.Expansion{
		Name:    "assignment",
		Join:    "LEFT JOIN assignments a ON a.id = sub.assignment_id",
		Columns: []string{"a.title AS assignment_title"},
	},
	query.Expansion{
		Name:    "student",
		Join:    "LEFT JOIN users s ON s.id = sub.student_id",
		Columns: []string{"s.name AS student_name"},
	},
)

// SubmissionRepository manages persistence for submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// List returns a page of submissions matching the filter.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter, p query.Params) ([]models.SubmissionDetail, int, error) {
	b := query.NewBuilder()
	if filter.AssignmentID != "" {
		b.Equals("sub.assignment_id", filter.AssignmentID)
	}
	if filter.StudentID != "" {
		b.Equals("sub.student_id", filter.StudentID)
	}
	if filter.Grade != "" {
		b.Equals("sub.grade", filter.Grade)
	}

	joins, expandCols := submissionExpansions.Apply(p.Expand)
	cols := submissionColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM submissions sub"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, submissionSortColumns, "sub.created_at DESC", "sub.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM submissions sub" + b.Clause()

	submissions := []models.SubmissionDetail{}
	total, err := query.Paged(ctx, r.db, &submissions, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "submission")
	}
	return submissions, total, nil
}

// FindByID fetches one submission, applying any requested expansions.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string, expand []string) (*models.SubmissionDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := submissionExpansions.Apply(expand)
	cols := submissionColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM submissions sub %s WHERE sub.id = $1", cols, strings.Join(joins, " "))

	var submission models.SubmissionDetail
	if err := r.db.GetContext(ctx, &submission, q, id); err != nil {
		return nil, translate(err, "submission")
	}
	return &submission, nil
}

// Create inserts a new submission. One submission per (assignment, student)
// pair; duplicates surface as a conflict fault.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.SubmittedAt.IsZero() {
		submission.SubmittedAt = now
	}
	submission.CreatedAt = now
	submission.UpdatedAt = now

	const q = `INSERT INTO submissions (id, assignment_id, student_id, file_url, grade, feedback, submitted_at, created_at, updated_at)
        VALUES (:id, :assignment_id, :student_id, :file_url, :grade, :feedback, :submitted_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, submission); err != nil {
		return translate(err, "submission")
	}
	return nil
}

// Update modifies the grade, feedback or file of a submission.
func (r *SubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	submission.UpdatedAt = time.Now().UTC()
	const q = `UPDATE submissions SET file_url = :file_url, grade = :grade, feedback = :feedback, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, submission)
	if err != nil {
		return translate(err, "submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "submission")
	}
	return nil
}

// Delete removes a submission.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM submissions WHERE id = $1", id)
	if err != nil {
		return translate(err, "submission")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "submission")
	}
	return nil
}
