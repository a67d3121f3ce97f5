package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/edunova/lms-api/internal/models"
)

// Roster renders a course's enrollment list as CSV, one row per student in
// enrollment order.
func Roster(course *models.CourseDetail, enrollments []models.EnrollmentDetail) ([]byte, error) {
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)

	if err := w.Write([]string{"name", "email", "progress", "status", "enrolledAt"}); err != nil {
		return nil, fmt.Errorf("write roster header: %w", err)
	}
	for _, e := range enrollments {
		record := []string{
			deref(e.StudentName),
			deref(e.StudentEmail),
			strconv.Itoa(e.Progress),
			e.Status,
			e.EnrolledAt.Format("2006-01-02"),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("write roster row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush roster: %w", err)
	}
	return buf.Bytes(), nil
}

// RosterFilename derives the download filename from the course title.
func RosterFilename(course *models.CourseDetail) string {
	title := "course"
	if course != nil && course.Title != "" {
		title = course.Title
	}
	return title + "-roster.csv"
}
