// Package service implements login, logout and session introspection.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"confcrm/internal/auth/device"
	"confcrm/internal/auth/models"
	"confcrm/internal/auth/store"
	"confcrm/internal/auth/token"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/platform/sentinel"
	"confcrm/pkg/requestcontext"
)

// Service orchestrates the auth stores and the token service.
type Service struct {
	users       store.UserStore
	sessions    store.SessionStore
	revocations store.RevocationList
	tokens      *token.Service
	logger      *slog.Logger
	sessionTTL  time.Duration
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSessionTTL overrides the default session lifetime.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
		}
	}
}

// New creates an auth Service.
func New(users store.UserStore, sessions store.SessionStore, revocations store.RevocationList, tokens *token.Service, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		users:       users,
		sessions:    sessions,
		revocations: revocations,
		tokens:      tokens,
		logger:      logger,
		sessionTTL:  24 * time.Hour,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token   string
	User    models.User
	Session models.Session
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password produce the same error so the endpoint does not leak which emails
// exist.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
		}
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "login failed")
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return LoginResult{}, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}

	now := s.now()
	sess := models.Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		DeviceName: device.ParseUserAgent(requestcontext.UserAgent(ctx)),
		ClientIP:   requestcontext.ClientIP(ctx),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.sessionTTL),
		LastSeenAt: now,
	}

	signed, jti, err := s.tokens.GenerateAccessToken(user.ID, sess.ID, s.sessionTTL)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "token generation failed")
	}
	sess.TokenJTI = jti

	if err := s.sessions.Create(ctx, sess); err != nil {
		return LoginResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "session creation failed")
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", user.ID,
		"session_id", sess.ID,
		"device", sess.DeviceName,
	)
	return LoginResult{Token: signed, User: user, Session: sess}, nil
}

// Logout revokes the session's token and deletes the session. Returns the
// closed session's ID so callers can drop per-session state.
func (s *Service) Logout(ctx context.Context) (uuid.UUID, error) {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return uuid.Nil, dErrors.New(dErrors.CodeUnauthorized, "no active session")
		}
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "logout failed")
	}

	if ttl := sess.ExpiresAt.Sub(s.now()); ttl > 0 {
		if err := s.revocations.RevokeToken(ctx, sess.TokenJTI, ttl); err != nil {
			return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "token revocation failed")
		}
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInternal, "session deletion failed")
	}

	s.logger.InfoContext(ctx, "user logged out", "session_id", sessionID)
	return sessionID, nil
}

// Introspect returns the calling session with its user.
func (s *Service) Introspect(ctx context.Context) (models.Session, models.User, error) {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID == uuid.Nil {
		return models.Session{}, models.User{}, dErrors.New(dErrors.CodeUnauthorized, "no active session")
	}
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Session{}, models.User{}, dErrors.New(dErrors.CodeUnauthorized, "no active session")
		}
		return models.Session{}, models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "introspection failed")
	}
	user, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return models.Session{}, models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "introspection failed")
	}
	return sess, user, nil
}

// Register creates an operator account with a bcrypt password hash.
func (s *Service) Register(ctx context.Context, email, name, password string) (models.User, error) {
	if email == "" || password == "" {
		return models.User{}, dErrors.New(dErrors.CodeBadRequest, "email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "password hashing failed")
	}
	user := models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return models.User{}, dErrors.New(dErrors.CodeConflict, "email already registered")
		}
		return models.User{}, dErrors.Wrap(err, dErrors.CodeInternal, "user creation failed")
	}
	return user, nil
}

// SessionChecker adapts the session store to the fetcher's auth probe: a
// session is active when it exists in the store and has not expired.
type SessionChecker struct {
	sessions store.SessionStore
	now      func() time.Time
}

// NewSessionChecker builds a checker over the session store.
func NewSessionChecker(sessions store.SessionStore, now func() time.Time) *SessionChecker {
	if now == nil {
		now = time.Now
	}
	return &SessionChecker{sessions: sessions, now: now}
}

// ActiveSession reports whether the context carries a live session.
func (c *SessionChecker) ActiveSession(ctx context.Context) bool {
	sessionID := requestcontext.SessionID(ctx)
	if sessionID == uuid.Nil {
		return false
	}
	sess, err := c.sessions.Get(ctx, sessionID)
	if err != nil {
		return false
	}
	return sess.Active(c.now())
}
