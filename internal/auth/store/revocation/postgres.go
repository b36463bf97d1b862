// Package revocation tracks revoked token JTIs until their natural expiry.
package revocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// Schema is the DDL the store expects.
const Schema = `
CREATE TABLE IF NOT EXISTS token_revocations (
	jti        TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
);
`

// Clock is an injectable time source.
type Clock func() time.Time

// PostgresStore persists revoked token JTIs in PostgreSQL via database/sql.
type PostgresStore struct {
	db    *sql.DB
	clock Clock
}

// PostgresOption configures a PostgresStore.
type PostgresOption func(*PostgresStore)

// WithClock sets the clock function for testability.
func WithClock(clock Clock) PostgresOption {
	return func(s *PostgresStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewPostgres constructs a PostgreSQL-backed revocation list.
func NewPostgres(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RevokeToken adds a token to the revocation list until ttl elapses.
func (s *PostgresStore) RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	expiresAt := s.clock().Add(ttl)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_revocations (jti, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		jti, expiresAt)
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// RevokeTokens revokes a batch of JTIs in one round trip.
func (s *PostgresStore) RevokeTokens(ctx context.Context, jtis []string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	valid := make([]string, 0, len(jtis))
	for _, jti := range jtis {
		if jti != "" {
			valid = append(valid, jti)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	expiresAt := s.clock().Add(ttl)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_revocations (jti, expires_at)
		SELECT unnest($1::text[]), $2
		ON CONFLICT (jti) DO UPDATE SET expires_at = EXCLUDED.expires_at`,
		pq.Array(valid), expiresAt)
	if err != nil {
		return fmt.Errorf("revoke tokens batch: %w", err)
	}
	return nil
}

// IsRevoked checks if a token is in the revocation list and not yet expired.
func (s *PostgresStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var expiresAt time.Time
	err := s.db.QueryRowContext(ctx,
		"SELECT expires_at FROM token_revocations WHERE jti = $1", jti).Scan(&expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check token revocation: %w", err)
	}
	return !s.clock().After(expiresAt), nil
}

// PurgeExpired removes entries past their expiry; run periodically.
func (s *PostgresStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM token_revocations WHERE expires_at < $1", s.clock())
	if err != nil {
		return 0, fmt.Errorf("purge revocations: %w", err)
	}
	return res.RowsAffected()
}
