package models

import "time"

// Role is the closed set of roles known to the authorization gate. Adding a
// role means touching this block, not a route definition.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole resolves a raw string against the closed role set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return Role(raw), true
	default:
		return "", false
	}
}

// Status tracks the registration approval state of an account.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// User is the principal record behind every authenticated request.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Status       Status    `db:"status" json:"status"`
	ProfileImage *string   `db:"profile_image" json:"profileImage,omitempty"`
	AvatarURL    *string   `db:"avatar_url" json:"avatarUrl,omitempty"`
	Language     string    `db:"language" json:"language"`
	Active       bool      `db:"active" json:"isActive"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures the exact-match filters accepted by the user listing.
type UserFilter struct {
	Role   *Role
	Status *Status
	Active *bool
}
