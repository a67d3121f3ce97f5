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

const enrollmentColumns = "e.id, e.student_id, e.course_id, e.progress, e.status, e.enrolled_at, e.created_at, e.updated_at"

var enrollmentSortColumns = map[string]string{
	"createdAt":  "e.created_at",
	"enrolledAt": "e.enrolled_at",
	"progress":   "e.progress",
	"status":     "e.status",
}

var enrollmentExpansions = query.MustExpansions(
	query.Expansion{
		Name:    "student",
		Join:    "LEFT JOIN users s ON s.id = e.student_id",
		Columns: []string{"s.name AS student_name", "s.email AS student_email"},
	},
	query.Expansion{
		Name:    "course",
		Join:    "LEFT JOIN courses c ON c.id = e.course_id",
		Columns: []string{"c.title AS course_title", "c.level AS course_level"},
		Nested: []query.Expansion{{
			Name:    "course.teacher",
			Join:    "LEFT JOIN users ct ON ct.id = c.teacher_id",
			Columns: []string{"ct.name AS course_teacher_name"},
		}},
	},
)

// EnrollmentRepository manages persistence for enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns a page of enrollments matching the filter.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter, p query.Params) ([]models.EnrollmentDetail, int, error) {
	b := query.NewBuilder()
	if filter.StudentID != "" {
		b.Equals("e.student_id", filter.StudentID)
	}
	if filter.CourseID != "" {
		b.Equals("e.course_id", filter.CourseID)
	}
	if filter.Status != "" {
		b.Equals("e.status", filter.Status)
	}

	joins, expandCols := enrollmentExpansions.Apply(p.Expand)
	cols := enrollmentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM enrollments e"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, enrollmentSortColumns, "e.created_at DESC", "e.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM enrollments e" + b.Clause()

	enrollments := []models.EnrollmentDetail{}
	total, err := query.Paged(ctx, r.db, &enrollments, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "enrollment")
	}
	return enrollments, total, nil
}

// FindByID fetches one enrollment, applying any requested expansions.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string, expand []string) (*models.EnrollmentDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := enrollmentExpansions.Apply(expand)
	cols := enrollmentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM enrollments e %s WHERE e.id = $1", cols, strings.Join(joins, " "))

	var enrollment models.EnrollmentDetail
	if err := r.db.GetContext(ctx, &enrollment, q, id); err != nil {
		return nil, translate(err, "enrollment")
	}
	return &enrollment, nil
}

// Create inserts a new enrollment. Duplicate (student, course) pairs surface
// as a conflict fault through the unique constraint.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.Enrollment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if enrollment.EnrolledAt.IsZero() {
		enrollment.EnrolledAt = now
	}
	enrollment.CreatedAt = now
	enrollment.UpdatedAt = now

	const q = `INSERT INTO enrollments (id, student_id, course_id, progress, status, enrolled_at, created_at, updated_at)
        VALUES (:id, :student_id, :course_id, :progress, :status, :enrolled_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, enrollment); err != nil {
		return translate(err, "enrollment")
	}
	return nil
}

// Update modifies progress and status of an enrollment.
func (r *EnrollmentRepository) Update(ctx context.Context, enrollment *models.Enrollment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	enrollment.UpdatedAt = time.Now().UTC()
	const q = `UPDATE enrollments SET progress = :progress, status = :status, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, enrollment)
	if err != nil {
		return translate(err, "enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "enrollment")
	}
	return nil
}

// Delete removes an enrollment.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM enrollments WHERE id = $1", id)
	if err != nil {
		return translate(err, "enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "enrollment")
	}
	return nil
}

// Roster returns every enrollment of a course with the student expansion,
// used by the CSV export.
func (r *EnrollmentRepository) Roster(ctx context.Context, courseID string) ([]models.EnrollmentDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	q := fmt.Sprintf(`SELECT %s, s.name AS student_name, s.email AS student_email
        FROM enrollments e LEFT JOIN users s ON s.id = e.student_id
        WHERE e.course_id = $1 ORDER BY e.enrolled_at ASC, e.id ASC`, enrollmentColumns)

	roster := []models.EnrollmentDetail{}
	if err := r.db.SelectContext(ctx, &roster, q, courseID); err != nil {
		return nil, translate(err, "enrollment")
	}
	return roster, nil
}
