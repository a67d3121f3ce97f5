package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "name", "email", "password_hash", "role", "status",
		"profile_image", "avatar_url", "language", "active", "created_at", "updated_at",
	}).AddRow("u1", "Amara Silva", "amara@edunova.lk", "$2a$10$hash", models.RoleStudent,
		models.StatusApproved, nil, nil, "English", true, time.Now(), time.Now())
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users u WHERE u.email = $1 LIMIT 1")).
		WithArgs("amara@edunova.lk").
		WillReturnRows(userRows())

	user, err := repo.FindByEmail(context.Background(), "amara@edunova.lk")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryListFiltersByRoleAndStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users u WHERE u.role = $1 AND u.status = $2 ORDER BY u.created_at DESC, u.id DESC LIMIT 10 OFFSET 0")).
		WithArgs(models.RoleTeacher, models.StatusPending).
		WillReturnRows(userRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM users u WHERE u.role = $1 AND u.status = $2")).
		WithArgs(models.RoleTeacher, models.StatusPending).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	role, status := models.RoleTeacher, models.StatusPending
	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role, Status: &status}, query.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryDeactivateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), "missing")
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryCreateAssignsIDAndTimestamps(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{Name: "Amara Silva", Email: "amara@edunova.lk", PasswordHash: "hash", Role: models.RoleStudent, Status: models.StatusApproved, Language: "English", Active: true}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, user.CreatedAt, user.UpdatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
