//go:build integration

package revocation_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"confcrm/internal/auth/store/revocation"
	"confcrm/pkg/testutil/containers"
)

type RevocationSuite struct {
	suite.Suite
	db  *sql.DB
	ctx context.Context
}

func TestRevocationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RevocationSuite))
}

func (s *RevocationSuite) SetupSuite() {
	pg := containers.GetManager().GetPostgres(s.T())
	db, err := sql.Open("postgres", pg.DSN)
	s.Require().NoError(err)
	s.db = db
	s.ctx = context.Background()
}

func (s *RevocationSuite) SetupTest() {
	_, err := s.db.ExecContext(s.ctx, "TRUNCATE token_revocations")
	s.Require().NoError(err)
}

func (s *RevocationSuite) TestRevokeAndCheck() {
	store := revocation.NewPostgres(s.db)
	s.Require().NoError(store.RevokeToken(s.ctx, "jti-1", time.Hour))

	revoked, err := store.IsRevoked(s.ctx, "jti-1")
	s.Require().NoError(err)
	s.True(revoked)

	revoked, err = store.IsRevoked(s.ctx, "jti-unknown")
	s.Require().NoError(err)
	s.False(revoked)
}

func (s *RevocationSuite) TestExpiredEntryNoLongerRevoked() {
	now := time.Now()
	clock := now
	store := revocation.NewPostgres(s.db, revocation.WithClock(func() time.Time { return clock }))

	s.Require().NoError(store.RevokeToken(s.ctx, "jti-2", time.Minute))
	clock = now.Add(2 * time.Minute)

	revoked, err := store.IsRevoked(s.ctx, "jti-2")
	s.Require().NoError(err)
	s.False(revoked)

	purged, err := store.PurgeExpired(s.ctx)
	s.Require().NoError(err)
	s.EqualValues(1, purged)
}

func (s *RevocationSuite) TestBatchRevoke() {
	store := revocation.NewPostgres(s.db)
	s.Require().NoError(store.RevokeTokens(s.ctx, []string{"a", "", "b"}, time.Hour))

	for _, jti := range []string{"a", "b"} {
		revoked, err := store.IsRevoked(s.ctx, jti)
		s.Require().NoError(err)
		s.Truef(revoked, "jti %s should be revoked", jti)
	}
}
