package model

import "github.com/google/uuid"

// UserProfile is the display data the directory returns for a user.
type UserProfile struct {
	UserID uuid.UUID `json:"user_id" db:"user_id"`
	Name   string    `json:"name" db:"name"`
	Email  string    `json:"email" db:"email"`
}
