package models

import (
	"time"

	id "vims/pkg/domain"
)

// User is an application account. Every insurance entity is scoped to the
// user that created it.
type User struct {
	ID           id.UserID
	Username     string
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Session represents a login session. Tokens carry the session ID; logout
// revokes the session, which invalidates outstanding tokens.
type Session struct {
	ID        string
	UserID    id.UserID
	CreatedAt time.Time
	ExpiresAt time.Time
	Revoked   bool
}

// Live reports whether the session can still authenticate requests at now.
func (s Session) Live(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
