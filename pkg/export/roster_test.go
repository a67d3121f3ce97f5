package export

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edunova/lms-api/internal/models"
)

func strp(s string) *string { return &s }

func TestRoster(t *testing.T) {
	course := &models.CourseDetail{Course: models.Course{ID: "c1", Title: "Go Basics"}}
	enrolled := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	enrollments := []models.EnrollmentDetail{
		{
			Enrollment:   models.Enrollment{Progress: 100, Status: models.EnrollmentCompleted, EnrolledAt: enrolled},
			StudentName:  strp("Amara Silva"),
			StudentEmail: strp("amara@edunova.lk"),
		},
		{
			// Student row survives a deleted account: names fall back to empty.
			Enrollment: models.Enrollment{Progress: 25, Status: models.EnrollmentActive, EnrolledAt: enrolled},
		},
	}

	out, err := Roster(course, enrollments)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,email,progress,status,enrolledAt", lines[0])
	assert.Equal(t, "Amara Silva,amara@edunova.lk,100,completed,2026-03-14", lines[1])
	assert.Equal(t, ",,25,active,2026-03-14", lines[2])
}

func TestRosterEmptyCourse(t *testing.T) {
	out, err := Roster(&models.CourseDetail{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "name,email,progress,status,enrolledAt\n", string(out))
}

func TestRosterFilename(t *testing.T) {
	assert.Equal(t, "Go Basics-roster.csv", RosterFilename(&models.CourseDetail{Course: models.Course{Title: "Go Basics"}}))
	assert.Equal(t, "course-roster.csv", RosterFilename(nil))
}
