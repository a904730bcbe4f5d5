package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account. Any user may both offer rides as a
// driver and book seats as a rider; there is no role split.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Name         string    `json:"name" db:"name"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Locale       string    `json:"locale" db:"locale"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// UserSummary is the public projection embedded in ride and booking responses.
type UserSummary struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Phone *string   `json:"phone,omitempty"`
}

// Summary returns the public projection of the user.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Phone: u.Phone}
}

// RegisterRequest represents a registration payload
type RegisterRequest struct {
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8"`
	Name     string  `json:"name" binding:"required,min=2"`
	Phone    *string `json:"phone,omitempty" binding:"omitempty,sqphone"`
	Locale   string  `json:"locale" binding:"omitempty,oneof=sq en"`
}

// LoginRequest represents a login payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the issued token and the authenticated user
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
