package models

import "time"

// GradePending is the grade assigned to fresh submissions.
const GradePending = "Pending"

// Submission is a student's answer to an assignment. One submission per
// (assignment, student) pair.
type Submission struct {
	ID           string    `db:"id" json:"id"`
	AssignmentID string    `db:"assignment_id" json:"assignment"`
	StudentID    string    `db:"student_id" json:"student"`
	FileURL      *string   `db:"file_url" json:"fileUrl,omitempty"`
	Grade        string    `db:"grade" json:"grade"`
	Feedback     string    `db:"feedback" json:"feedback"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submittedAt"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// SubmissionDetail carries the assignment and student expansions.
type SubmissionDetail struct {
	Submission
	AssignmentTitle *string `db:"assignment_title" json:"assignmentTitle,omitempty"`
	StudentName     *string `db:"student_name" json:"studentName,omitempty"`
}

// SubmissionFilter captures the filters accepted by the submission listing.
type SubmissionFilter struct {
	AssignmentID string
	StudentID    string
	Grade        string
}
