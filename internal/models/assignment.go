package models

import "time"

// Assignment is coursework published by a teacher for a course.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	CourseID    string     `db:"course_id" json:"course"`
	TeacherID   string     `db:"teacher_id" json:"teacher"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	DueDate     *time.Time `db:"due_date" json:"dueDate,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updatedAt"`
}

// AssignmentDetail carries the course expansion projection.
type AssignmentDetail struct {
	Assignment
	CourseTitle *string `db:"course_title" json:"courseTitle,omitempty"`
}

// AssignmentFilter captures the filters accepted by the assignment listing.
type AssignmentFilter struct {
	CourseID  string
	TeacherID string
}
