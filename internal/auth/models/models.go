// Package models defines the auth domain entities.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an operator account for the CRM dashboard.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is one authenticated login. TokenJTI tracks the current access
// token for revocation on logout.
type Session struct {
	ID         uuid.UUID `json:"id"`
	UserID     uuid.UUID `json:"user_id"`
	TokenJTI   string    `json:"-"`
	DeviceName string    `json:"device_name"`
	ClientIP   string    `json:"client_ip"`
	CreatedAt  time.Time `json:"created_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// Active reports whether the session is still valid at the given time.
func (s Session) Active(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
