package model

import "time"

// User represents a registered account. PasswordHash never leaves the
// repository/service layers; templates receive only the fields they show.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsMember     bool
	IsAdmin      bool
	CreatedAt    time.Time
}
