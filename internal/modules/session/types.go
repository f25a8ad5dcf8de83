package session

import (
	"errors"
	"time"
)

var (
	// ErrTokenNotFound means the presented token matches no session.
	ErrTokenNotFound = errors.New("session token not found")
	// ErrTokenExpired means the session exists but its window has closed.
	ErrTokenExpired = errors.New("session token expired")
	// ErrNoActiveSession means no session is currently inside its window.
	ErrNoActiveSession = errors.New("no active session")
)

// SessionDTO is the wire shape of a minted session.
type SessionDTO struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
