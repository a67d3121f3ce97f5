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

const interactionColumns = "i.id, i.user_id, i.course_id, i.question, i.response, i.mode, i.created_at, i.updated_at"

var interactionSortColumns = map[string]string{
	"createdAt": "i.created_at",
	"mode":      "i.mode",
}

var interactionSearchColumns = []string{"i.question", "i.response"}

var interactionExpansions = query.MustExpansions(query.Expansion{
	Name:    "user",
	Join:    "LEFT JOIN users u ON u.id = i.user_id",
	Columns: []string{"u.name AS user_name"},
})

// InteractionRepository manages persistence for assistant interaction logs.
type InteractionRepository struct {
	db *sqlx.DB
}

// NewInteractionRepository constructs an InteractionRepository.
func NewInteractionRepository(db *sqlx.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

// List returns a page of interactions matching the filter.
func (r *InteractionRepository) List(ctx context.Context, filter models.InteractionFilter, p query.Params) ([]models.InteractionDetail, int, error) {
	b := query.NewBuilder()
	if filter.UserID != "" {
		b.Equals("i.user_id", filter.UserID)
	}
	if filter.CourseID != "" {
		b.Equals("i.course_id", filter.CourseID)
	}
	if filter.Mode != "" {
		b.Equals("i.mode", filter.Mode)
	}
	b.Search(p.Search, interactionSearchColumns...)

	joins, expandCols := interactionExpansions.Apply(p.Expand)
	cols := interactionColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	base := "FROM interactions i"
	if len(joins) > 0 {
		base += " " + strings.Join(joins, " ")
	}

	order := query.OrderBy(p.Sort, interactionSortColumns, "i.created_at DESC", "i.id DESC")
	listQuery := fmt.Sprintf("SELECT %s %s%s%s LIMIT %d OFFSET %d", cols, base, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM interactions i" + b.Clause()

	interactions := []models.InteractionDetail{}
	total, err := query.Paged(ctx, r.db, &interactions, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "interaction")
	}
	return interactions, total, nil
}

// FindByID fetches one interaction log entry.
func (r *InteractionRepository) FindByID(ctx context.Context, id string, expand []string) (*models.InteractionDetail, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	joins, expandCols := interactionExpansions.Apply(expand)
	cols := interactionColumns
	if len(expandCols) > 0 {
		cols += ", " + strings.Join(expandCols, ", ")
	}
	q := fmt.Sprintf("SELECT %s FROM interactions i %s WHERE i.id = $1", cols, strings.Join(joins, " "))

	var interaction models.InteractionDetail
	if err := r.db.GetContext(ctx, &interaction, q, id); err != nil {
		return nil, translate(err, "interaction")
	}
	return &interaction, nil
}

// Create appends a new interaction log entry.
func (r *InteractionRepository) Create(ctx context.Context, interaction *models.Interaction) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if interaction.ID == "" {
		interaction.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	interaction.CreatedAt = now
	interaction.UpdatedAt = now

	const q = `INSERT INTO interactions (id, user_id, course_id, question, response, mode, created_at, updated_at)
        VALUES (:id, :user_id, :course_id, :question, :response, :mode, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, interaction); err != nil {
		return translate(err, "interaction")
	}
	return nil
}

// Delete removes an interaction log entry.
func (r *InteractionRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, "DELETE FROM interactions WHERE id = $1", id)
	if err != nil {
		return translate(err, "interaction")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "interaction")
	}
	return nil
}
