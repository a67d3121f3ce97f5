package models

import "time"

// Interaction modes.
const (
	ModeText  = "text"
	ModeVoice = "voice"
)

// Interaction logs a single assistant exchange. The course reference is
// optional; general questions are logged without one.
type Interaction struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user"`
	CourseID  *string   `db:"course_id" json:"course,omitempty"`
	Question  string    `db:"question" json:"question"`
	Response  string    `db:"response" json:"response"`
	Mode      string    `db:"mode" json:"mode"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// InteractionDetail carries the user expansion projection.
type InteractionDetail struct {
	Interaction
	UserName *string `db:"user_name" json:"userName,omitempty"`
}

// InteractionFilter captures the filters accepted by the interaction listing.
type InteractionFilter struct {
	UserID   string
	CourseID string
	Mode     string
}
