package models

import "time"

// Lesson is a unit of course content, ordered by position within its course.
type Lesson struct {
	ID        string    `db:"id" json:"id"`
	CourseID  string    `db:"course_id" json:"course"`
	Title     string    `db:"title" json:"title"`
	VideoURL  *string   `db:"video_url" json:"videoUrl,omitempty"`
	Content   string    `db:"content" json:"content"`
	Duration  int       `db:"duration" json:"duration"`
	Position  int       `db:"position" json:"order"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// LessonFilter captures the filters accepted by the lesson listing.
type LessonFilter struct {
	CourseID string
}
