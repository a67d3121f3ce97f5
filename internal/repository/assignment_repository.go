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

const assignmentColumns = "a.id, a.course_id, a.teacher_id, a.title, a.description, a.due_date, a.created_at, a.updated_at"

var assignmentSortColumns = map[string]string{
	"createdAt": "a.created_at",
	"dueDate":   "a.due_date",
	"title":     "a.title",
}

var assignmentSearchColumns = []string{"a.title", "a.description"}

var assignmentExpansions = query.MustExpansions(query.Expansion{
	Name:    "course",
	Join:    "LEFT JOIN courses c ON c.id = a.course_id",
	Columns: []string{"c.title AS course_title"},
})

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns a page of assignments matching the filter.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter, p query.Params) ([]models.AssignmentDetail, int, error) {
	b := query.NewBuilder()
	if filter.CourseID != "" {
		b.Equals("a.course_id", filter.CourseID)
	}
	if filter.TeacherID != "" {
		b.Equals("a.teacher_id", filter.TeacherID)
	}
	b.Search(p.Search, assignmentSearchColumns...)

	joins, expandCols := assignmentExpansions.Apply(p.Expand)
	cols := assignmentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM assignments a"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, assignmentSortColumns, "a.created_at DESC", "a.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM assignments a" + b.Clause()

	assignments := []models.AssignmentDetail{}
	total, err := query.Paged(ctx, r.db, &assignments, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "assignment")
	}
	return assignments, total, nil
}

// FindByID fetches one assignment, applying any requested expansions.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string, expand []string) (*models.AssignmentDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := assignmentExpansions.Apply(expand)
	cols := assignmentColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM assignments a %s WHERE a.id = $1", cols, strings.Join(joins, " "))

	var assignment models.AssignmentDetail
	if err := r.db.GetContext(ctx, &assignment, q, id); err != nil {
		return nil, translate(err, "assignment")
	}
	return &assignment, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	assignment.CreatedAt = now
	assignment.UpdatedAt = now

	const q = `INSERT INTO assignments (id, course_id, teacher_id, title, description, due_date, created_at, updated_at)
        VALUES (:id, :course_id, :teacher_id, :title, :description, :due_date, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, assignment); err != nil {
		return translate(err, "assignment")
	}
	return nil
}

// Update modifies an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	assignment.UpdatedAt = time.Now().UTC()
	const q = `UPDATE assignments SET title = :title, description = :description, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, assignment)
	if err != nil {
		return translate(err, "assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "assignment")
	}
	return nil
}

// Delete removes an assignment.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id)
	if err != nil {
		return translate(err, "assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "assignment")
	}
	return nil
}
