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

const courseColumns = "c.id, c.title, c.description, c.category, c.teacher_id, c.level, c.price, c.thumbnail, c.language, c.approved, c.created_at, c.updated_at"

// Sortable fields exposed on the catalog listing.
var courseSortColumns = map[string]string{
	"createdAt": "c.created_at",
	"title":     "c.title",
	"price":     "c.price",
	"level":     "c.level",
}

// Columns matched by the free-text search parameter.
var courseSearchColumns = []string{"c.title", "c.description", "c.category"}

var courseExpansions = query.MustExpansions(query.Expansion{
	Name:    "teacher",
	Join:    "LEFT JOIN users t ON t.id = c.teacher_id",
	Columns: []string{"t.name AS teacher_name", "t.email AS teacher_email"},
})

// CourseRepository manages persistence for course records.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns a page of courses matching the filter, with the total count
// taken over the same conditions.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter, p query.Params) ([]models.CourseDetail, int, error) {
	b := query.NewBuilder()
	if filter.Category != "" {
		b.Equals("c.category", filter.Category)
	}
	if filter.Level != "" {
		b.Equals("c.level", filter.Level)
	}
	if filter.Language != "" {
		b.Equals("c.language", filter.Language)
	}
	if filter.TeacherID != "" {
		b.Equals("c.teacher_id", filter.TeacherID)
	}
	if filter.Approved != nil {
		b.Equals("c.approved", *filter.Approved)
	}
	b.Search(p.Search, courseSearchColumns...)

	joins, expandCols := courseExpansions.Apply(p.Expand)
	cols := courseColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM courses c"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, courseSortColumns, "c.created_at DESC", "c.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM courses c" + b.Clause()

	courses := []models.CourseDetail{}
	total, err := query.Paged(ctx, r.db, &courses, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "course")
	}
	return courses, total, nil
}

// FindByID fetches one course, applying any requested expansions.
func (r *CourseRepository) FindByID(ctx context.Context, id string, expand []string) (*models.CourseDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := courseExpansions.Apply(expand)
	cols := courseColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM courses c %s WHERE c.id = $1", cols, strings.Join(joins, " "))

	var course models.CourseDetail
	if err := r.db.GetContext(ctx, &course, q, id); err != nil {
		return nil, translate(err, "course")
	}
	return &course, nil
}

// Create inserts a new course record.
func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if course.ID == "" {
		course.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	course.CreatedAt = now
	course.UpdatedAt = now

	const q = `INSERT INTO courses (id, title, description, category, teacher_id, level, price, thumbnail, language, approved, created_at, updated_at)
        VALUES (:id, :title, :description, :category, :teacher_id, :level, :price, :thumbnail, :language, :approved, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, course); err != nil {
		return translate(err, "course")
	}
	return nil
}

// Update modifies an existing course.
func (r *CourseRepository) Update(ctx context.Context, course *models.Course) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	course.UpdatedAt = time.Now().UTC()
	const q = `UPDATE courses SET title = :title, description = :description, category = :category, level = :level,
        price = :price, thumbnail = :thumbnail, language = :language, approved = :approved, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, course)
	if err != nil {
		return translate(err, "course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "course")
	}
	return nil
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM courses WHERE id = $1", id)
	if err != nil {
		return translate(err, "course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "course")
	}
	return nil
}
