package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
)

const lessonColumns = "l.id, l.course_id, l.title, l.video_url, l.content, l.duration, l.position, l.created_at, l.updated_at"

var lessonSortColumns = map[string]string{
	"createdAt": "l.created_at",
	"order":     "l.position",
	"title":     "l.title",
	"duration":  "l.duration",
}

var lessonSearchColumns = []string{"l.title", "l.content"}

// LessonRepository manages persistence for lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns a page of lessons. Within a course the default order is the
// authored lesson position, not creation time.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter, p query.Params) ([]models.Lesson, int, error) {
	b := query.NewBuilder()
	fallback := "l.created_at DESC"
	if filter.CourseID != "" {
		b.Equals("l.course_id", filter.CourseID)
		fallback = "l.position ASC"
	}
	b.Search(p.Search, lessonSearchColumns...)

	order := query.OrderBy(p.Sort, lessonSortColumns, fallback, "l.id DESC")
	listQuery := fmt.Sprintf("SELECT %s FROM lessons l%s%s LIMIT %d OFFSET %d", lessonColumns, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM lessons l" + b.Clause()

	lessons := []models.Lesson{}
	total, err := query.Paged(ctx, r.db, &lessons, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "lesson")
	}
	return lessons, total, nil
}

// FindByID fetches one lesson.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	var lesson models.Lesson
	q := fmt.Sprintf("SELECT %s FROM lessons l WHERE l.id = $1", lessonColumns)
	if err := r.db.GetContext(ctx, &lesson, q, id); err != nil {
		return nil, translate(err, "lesson")
	}
	return &lesson, nil
}

// Create inserts a new lesson.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	lesson.CreatedAt = now
	lesson.UpdatedAt = now

	const q = `INSERT INTO lessons (id, course_id, title, video_url, content, duration, position, created_at, updated_at)
        VALUES (:id, :course_id, :title, :video_url, :content, :duration, :position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, lesson); err != nil {
		return translate(err, "lesson")
	}
	return nil
}

// Update modifies an existing lesson.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	lesson.UpdatedAt = time.Now().UTC()
	const q = `UPDATE lessons SET title = :title, video_url = :video_url, content = :content,
        duration = :duration, position = :position, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, lesson)
	if err != nil {
		return translate(err, "lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "lesson")
	}
	return nil
}

// Delete removes a lesson.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM lessons WHERE id = $1", id)
	if err != nil {
		return translate(err, "lesson")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "lesson")
	}
	return nil
}
