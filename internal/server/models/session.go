package models

import "time"

// Session binds a user to a refresh token value. There is at most one per user.
type Session struct {
	ID           string
	UserID       string
	RefreshToken string
	UserAgent    string
	IP           string
	IsValid      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
