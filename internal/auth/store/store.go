// Package store defines the persistence interfaces for the auth domain.
// Implementations return pkg/platform/sentinel errors.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"confcrm/internal/auth/models"
)

// UserStore persists operator accounts.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Get(ctx context.Context, id uuid.UUID) (models.User, error)
	Create(ctx context.Context, u models.User) error
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, s models.Session) error
	Get(ctx context.Context, id uuid.UUID) (models.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// RevocationList records revoked token JTIs until their natural expiry.
type RevocationList interface {
	RevokeToken(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
