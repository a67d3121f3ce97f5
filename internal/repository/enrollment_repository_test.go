package repository

import (
	"context"
	"net/http"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunova/lms-api/internal/models"
	"github.com/edunova/lms-api/internal/query"
	appErrors "github.com/edunova/lms-api/pkg/errors"
)

func TestEnrollmentRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec("INSERT INTO enrollments").
		WillReturnError(&pq.Error{Code: "23505", Detail: "Key (student_id, course_id)=(s1, c1) already exists."})

	err := repo.Create(context.Background(), &models.Enrollment{StudentID: "s1", CourseID: "c1", Status: models.EnrollmentActive})
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindConflict, fault.Kind)
	assert.Equal(t, http.StatusBadRequest, fault.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListWithNestedExpansion(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "progress", "status", "enrolled_at", "created_at", "updated_at",
		"course_title", "course_level", "course_teacher_name",
	}).AddRow("e1", "s1", "c1", 40, models.EnrollmentActive, time.Now(), time.Now(), time.Now(),
		"Go Basics", "Beginner", "Teacher One")

	mock.MatchExpectationsInOrder(false)
	mock.ExpectQuery(regexp.QuoteMeta("c.title AS course_title, c.level AS course_level, ct.name AS course_teacher_name FROM enrollments e LEFT JOIN courses c ON c.id = e.course_id LEFT JOIN users ct ON ct.id = c.teacher_id WHERE e.student_id = $1")).
		WithArgs("s1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments e WHERE e.student_id = $1")).
		WithArgs("s1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	p := query.Params{Page: 1, Limit: 10, Expand: []string{"course"}}
	enrollments, total, err := repo.List(context.Background(), models.EnrollmentFilter{StudentID: "s1"}, p)
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, 1, total)
	require.NotNil(t, enrollments[0].CourseTitle)
	assert.Equal(t, "Go Basics", *enrollments[0].CourseTitle)
	require.NotNil(t, enrollments[0].CourseTeacherName)
	assert.Equal(t, "Teacher One", *enrollments[0].CourseTeacherName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryRoster(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{
		"id", "student_id", "course_id", "progress", "status", "enrolled_at", "created_at", "updated_at",
		"student_name", "student_email",
	}).
		AddRow("e1", "s1", "c1", 100, models.EnrollmentCompleted, time.Now(), time.Now(), time.Now(), "Amara Silva", "amara@edunova.lk").
		AddRow("e2", "s2", "c1", 25, models.EnrollmentActive, time.Now(), time.Now(), time.Now(), "Bimal Perera", "bimal@edunova.lk")

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.course_id = $1 ORDER BY e.enrolled_at ASC, e.id ASC")).
		WithArgs("c1").
		WillReturnRows(rows)

	roster, err := repo.Roster(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, "Amara Silva", *roster[0].StudentName)
	assert.Equal(t, models.EnrollmentActive, roster[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollments WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	var fault *appErrors.Error
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, appErrors.KindNotFound, fault.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
