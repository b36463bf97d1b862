package token

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	dErrors "confcrm/pkg/domain-errors"
)

type TokenServiceSuite struct {
	suite.Suite
	svc *Service
}

func TestTokenServiceSuite(t *testing.T) {
	suite.Run(t, new(TokenServiceSuite))
}

func (s *TokenServiceSuite) SetupTest() {
	s.svc = NewService("test-signing-key", "confcrm", "confcrm-api")
}

func (s *TokenServiceSuite) TestRoundTrip() {
	userID, sessionID := uuid.New(), uuid.New()
	signed, jti, err := s.svc.GenerateAccessToken(userID, sessionID, time.Hour)
	s.Require().NoError(err)
	s.NotEmpty(jti)

	claims, err := s.svc.ValidateToken(signed)
	s.Require().NoError(err)
	s.Equal(userID.String(), claims.UserID)
	s.Equal(sessionID.String(), claims.SessionID)
	s.Equal(jti, claims.ID)
}

func (s *TokenServiceSuite) TestExpiredToken() {
	signed, _, err := s.svc.GenerateAccessToken(uuid.New(), uuid.New(), -time.Minute)
	s.Require().NoError(err)

	_, err = s.svc.ValidateToken(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

func (s *TokenServiceSuite) TestWrongKeyRejected() {
	signed, _, err := s.svc.GenerateAccessToken(uuid.New(), uuid.New(), time.Hour)
	s.Require().NoError(err)

	other := NewService("another-key", "confcrm", "confcrm-api")
	_, err = other.ValidateToken(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}

type staticRevocations struct{ revoked map[string]bool }

func (r staticRevocations) RevokeToken(_ context.Context, jti string, _ time.Duration) error {
	r.revoked[jti] = true
	return nil
}

func (r staticRevocations) IsRevoked(_ context.Context, jti string) (bool, error) {
	return r.revoked[jti], nil
}

func (s *TokenServiceSuite) TestValidatorChecksRevocationList() {
	signed, jti, err := s.svc.GenerateAccessToken(uuid.New(), uuid.New(), time.Hour)
	s.Require().NoError(err)

	revocations := staticRevocations{revoked: map[string]bool{}}
	validator := NewValidator(s.svc, revocations)

	claims, err := validator.ValidateToken(signed)
	s.Require().NoError(err)
	s.NotEmpty(claims.UserID)

	s.Require().NoError(revocations.RevokeToken(context.Background(), jti, time.Hour))
	_, err = validator.ValidateToken(signed)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
}
