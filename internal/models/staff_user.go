package models

import "time"

// StaffUser is the elevated-privilege record for an auth user. Its presence
// is what makes an authenticated user staff; its absence is not an error.
type StaffUser struct {
	ID        string    `json:"id" db:"id"` // auth user id
	Username  string    `json:"username" db:"username"`
	Email     string    `json:"email" db:"email"`
	Role      string    `json:"role" db:"role"` // staff | moderator | admin
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
