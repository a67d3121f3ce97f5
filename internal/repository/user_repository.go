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

const userColumns = "u.id, u.name, u.email, u.password_hash, u.role, u.status, u.profile_image, u.avatar_url, u.language, u.active, u.created_at, u.updated_at"

var userSortColumns = map[string]string{
	"createdAt": "u.created_at",
	"name":      "u.name",
	"email":     "u.email",
	"role":      "u.role",
}

var userSearchColumns = []string{"u.name", "u.email"}

// UserRepository provides database access for principal records.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// List returns users matching the filter with the total count.
func (r *UserRepository) List(ctx context.Context, filter models.UserFilter, p query.Params) ([]models.User, int, error) {
	b := query.NewBuilder()
	if filter.Role != nil {
		b.Equals("u.role", *filter.Role)
	}
	if filter.Status != nil {
		b.Equals("u.status", *filter.Status)
	}
	if filter.Active != nil {
		b.Equals("u.active", *filter.Active)
	}
	b.Search(p.Search, userSearchColumns...)

	order := query.OrderBy(p.Sort, userSortColumns, "u.created_at DESC", "u.id DESC")
	listQuery := fmt.Sprintf("SELECT %s FROM users u%s%s LIMIT %d OFFSET %d", userColumns, b.Clause(), order, p.Limit, p.Offset())
	countQuery := "SELECT COUNT(*) FROM users u" + b.Clause()

	users := []models.User{}
	total, err := query.Paged(ctx, r.db, &users, listQuery, countQuery, b.Args()...)
	if err != nil {
		return nil, 0, translate(err, "user")
	}
	return users, total, nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	var user models.User
	q := fmt.Sprintf("SELECT %s FROM users u WHERE u.id = $1 LIMIT 1", userColumns)
	if err := r.db.GetContext(ctx, &user, q, id); err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// FindByEmail returns a user by email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	var user models.User
	q := fmt.Sprintf("SELECT %s FROM users u WHERE u.email = $1 LIMIT 1", userColumns)
	if err := r.db.GetContext(ctx, &user, q, email); err != nil {
		return nil, translate(err, "user")
	}
	return &user, nil
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	const q = `INSERT INTO users (id, name, email, password_hash, role, status, profile_image, avatar_url, language, active, created_at, updated_at)
        VALUES (:id, :name, :email, :password_hash, :role, :status, :profile_image, :avatar_url, :language, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, user); err != nil {
		return translate(err, "user")
	}
	return nil
}

// Update modifies mutable fields of a user.
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	user.UpdatedAt = time.Now().UTC()
	const q = `UPDATE users SET name = :name, role = :role, status = :status, profile_image = :profile_image,
        avatar_url = :avatar_url, language = :language, active = :active, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, q, user)
	if err != nil {
		return translate(err, "user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "user")
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	const q = `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id, passwordHash, time.Now().UTC()); err != nil {
		return translate(err, "user")
	}
	return nil
}

// Deactivate soft-deletes a user by marking the account inactive.
func (r *UserRepository) Deactivate(ctx context.Context, id string) error {
	ctx, cancel := query.StoreContext(ctx)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
	if err != nil {
		return translate(err, "user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return translate(sql.ErrNoRows, "user")
	}
	return nil
}
