package entity

import "time"

// User is an account of the bill backend
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Type         string    `json:"type"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is the read-only identity of the connected user.
// It is passed explicitly to the components that need it.
type Session struct {
	Type  string `json:"type"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// IsAdmin returns true for administrator sessions
func (s Session) IsAdmin() bool {
	return s.Type == UserTypeAdmin
}
