package entity

import (
	"strings"
	"time"
)

// User is the aggregate root for the identity domain.
// Password holds a bcrypt hash and must never leave the service layer.
type User struct {
	ID              string
	Email           string
	Password        string
	Name            string
	ProfilePicture  string
	IsEmailVerified bool
	LastLogin       *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
