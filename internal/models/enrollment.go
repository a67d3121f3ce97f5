package models

import "time"

// Enrollment statuses.
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
)

// Enrollment links a student to a course. The (student, course) pair is
// unique; duplicates surface as a conflict fault.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student"`
	CourseID   string    `db:"course_id" json:"course"`
	Progress   int       `db:"progress" json:"progress"`
	Status     string    `db:"status" json:"status"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolledAt"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}

// EnrollmentDetail carries the student and course expansions, the latter
// nesting one level into the course's teacher.
type EnrollmentDetail struct {
	Enrollment
	StudentName       *string `db:"student_name" json:"studentName,omitempty"`
	StudentEmail      *string `db:"student_email" json:"studentEmail,omitempty"`
	CourseTitle       *string `db:"course_title" json:"courseTitle,omitempty"`
	CourseLevel       *string `db:"course_level" json:"courseLevel,omitempty"`
	CourseTeacherName *string `db:"course_teacher_name" json:"courseTeacherName,omitempty"`
}

// EnrollmentFilter captures the exact-match filters of the enrollment listing.
type EnrollmentFilter struct {
	StudentID string
	CourseID  string
	Status    string
}
