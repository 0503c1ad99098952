package entity

import "time"

// Session is the single active login of a user.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	CreatedAt time.Time
}
