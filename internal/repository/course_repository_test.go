package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func courseRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "description", "category", "teacher_id", "level",
		"price", "thumbnail", "language", "approved", "created_at", "updated_at",
	}).AddRow("c1", "Go Basics", "Intro", "Programming", "t1", "Beginner",
		49.99, nil, "English", true, time.Now(), time.Now())
}

func TestCourseRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	// The slice and count queries run concurrently.
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT c.id, c.title, c.description, c.category, c.teacher_id, c.level, c.price, c.thumbnail, c.language, c.approved, c.created_at, c.updated_at FROM courses c ORDER BY c.created_at DESC, c.id DESC LIMIT 10 OFFSET 0")).
		WillReturnRows(courseRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	courses, total, err := repo.List(context.Background(), models.CourseFilter{}, query.Params{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Go Basics", courses[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryListWithFilterAndSearch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	approved := true
	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.category = $1 AND c.approved = $2 AND (LOWER(c.title) LIKE $3 OR LOWER(c.description) LIKE $3 OR LOWER(c.category) LIKE $3) ORDER BY c.price ASC, c.id DESC LIMIT 20 OFFSET 20")).
		WithArgs("Programming", true, "%go%").
		WillReturnRows(courseRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses c WHERE c.category = $1 AND c.approved = $2")).
		WithArgs("Programming", true, "%go%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(21))

	p := query.Params{Page: 2, Limit: 20, Sort: "price", Search: "Go"}
	courses, total, err := repo.List(context.Background(), models.CourseFilter{Category: "Programming", Approved: &approved}, p)
	require.NoError(t, err)
	assert.Len(t, courses, 1)
	assert.Equal(t, 21, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDWithExpansion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "category", "teacher_id", "level",
		"price", "thumbnail", "language", "approved", "created_at", "updated_at",
		"teacher_name", "teacher_email",
	}).AddRow("c1", "Go Basics", "Intro", "Programming", "t1", "Beginner",
		49.99, nil, "English", true, time.Now(), time.Now(), "Teacher One", "t1@edunova.lk")

	mock.ExpectQuery(regexp.QuoteMeta("t.name AS teacher_name, t.email AS teacher_email FROM courses c LEFT JOIN users t ON t.id = c.teacher_id WHERE c.id = $1")).
		WithArgs("c1").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "c1", []string{"teacher"})
	require.NoError(t, err)
	require.NotNil(t, course.TeacherName)
	assert.Equal(t, "Teacher One", *course.TeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDDanglingExpansion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "title", "description", "category", "teacher_id", "level",
		"price", "thumbnail", "language", "approved", "created_at", "updated_at",
		"teacher_name", "teacher_email",
	}).AddRow("c1", "Go Basics", "Intro", "Programming", "gone", "Beginner",
		49.99, nil, "English", true, time.Now(), time.Now(), nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("LEFT JOIN users t ON t.id = c.teacher_id WHERE c.id = $1")).
		WithArgs("c1").
		WillReturnRows(rows)

	course, err := repo.FindByID(context.Background(), "c1", []string{"teacher"})
	require.NoError(t, err)
	assert.Nil(t, course.TeacherName)
	assert.Nil(t, course.TeacherEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT .+ FROM courses c").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing", nil)
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
}

func TestCourseRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("INSERT INTO courses").
		WillReturnResult(sqlmock.NewResult(1, 1))

	course := &models.Course{Title: "Go Basics", Description: "Intro", Category: "Programming", TeacherID: "t1", Level: "Beginner", Price: 49.99, Language: "English"}
	require.NoError(t, repo.Create(context.Background(), course))
	assert.NotEmpty(t, course.ID)
	assert.False(t, course.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectExec("UPDATE courses SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.Course{ID: "missing"})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
}
