package token

import (
	"context"

	"confcrm/internal/auth/store"
	"confcrm/internal/platform/middleware"
	dErrors "confcrm/pkg/domain-errors"
)

// Validator adapts the token Service to the middleware contract and checks
// the revocation list on every validate. A nil revocation list skips the
// check.
type Validator struct {
	service     *Service
	revocations store.RevocationList
}

func NewValidator(service *Service, revocations store.RevocationList) *Validator {
	return &Validator{service: service, revocations: revocations}
}

func (v *Validator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	claims, err := v.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if v.revocations != nil {
		revoked, err := v.revocations.IsRevoked(context.Background(), claims.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "revocation check failed")
		}
		if revoked {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token has been revoked")
		}
	}
	return &middleware.TokenClaims{
		UserID:    claims.UserID,
		SessionID: claims.SessionID,
	}, nil
}
