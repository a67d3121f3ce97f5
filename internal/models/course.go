package models

import "time"

// Course levels and languages, as accepted by the catalog.
const (
	LevelBeginner     = "Beginner"
	LevelIntermediate = "Intermediate"
	LevelAdvanced     = "Advanced"
)

// Course is a published (or pending-approval) course record.
type Course struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Category    string    `db:"category" json:"category"`
	TeacherID   string    `db:"teacher_id" json:"teacher"`
	Level       string    `db:"level" json:"level"`
	Price       float64   `db:"price" json:"price"`
	Thumbnail   *string   `db:"thumbnail" json:"thumbnail,omitempty"`
	Language    string    `db:"language" json:"language"`
	Approved    bool      `db:"approved" json:"isApproved"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// CourseDetail carries the projected teacher expansion. The fields stay nil
// when the expansion is not requested or the reference dangles.
type CourseDetail struct {
	Course
	TeacherName  *string `db:"teacher_name" json:"teacherName,omitempty"`
	TeacherEmail *string `db:"teacher_email" json:"teacherEmail,omitempty"`
}

// CourseFilter captures the exact-match filters of the catalog listing.
type CourseFilter struct {
	Category  string
	Level     string
	Language  string
	TeacherID string
	Approved  *bool
}
