package entity

import "time"

// Purpose discriminates what a signed token may be used for.
type Purpose string

const (
	PurposeEmailVerification Purpose = "email-verification"
	PurposeResetPassword     Purpose = "reset-password"
	PurposeLogin             Purpose = "login"
)

func (p Purpose) String() string { return string(p) }

// VerificationToken is a pending proof bound to one user and one purpose.
// At most one record per (UserID, Purpose) exists at a time.
type VerificationToken struct {
	ID        string
	UserID    string
	Token     string
	Purpose   Purpose
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the stored expiry has passed at now.
func (v *VerificationToken) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
