// Package handler exposes the operator authentication endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confcrm/internal/auth/models"
	"confcrm/internal/auth/service"
	"confcrm/internal/crm/fetcher"
	"confcrm/internal/platform/metrics"
	"confcrm/internal/platform/middleware"
	"confcrm/internal/transport/http/shared"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

// Service defines the auth operations the handler depends on.
type Service interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
	Logout(ctx context.Context) (uuid.UUID, error)
	Introspect(ctx context.Context) (models.Session, models.User, error)
	Register(ctx context.Context, email, name, password string) (models.User, error)
}

// Handler handles login, logout, registration and session introspection.
type Handler struct {
	logger    *slog.Logger
	auth      Service
	fetchers  *fetcher.Registry
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new auth Handler.
func New(auth Service, fetchers *fetcher.Registry, logger *slog.Logger,
	m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		auth:      auth,
		fetchers:  fetchers,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the auth routes with the chi router. Login and account
// registration are the only unauthenticated endpoints in the API.
func (h *Handler) Register(r chi.Router) {
	authRouter := chi.NewRouter()
	authRouter.Use(middleware.Recovery(h.logger))
	authRouter.Use(middleware.RequestID)
	authRouter.Use(middleware.Logger(h.logger))
	authRouter.Use(middleware.Timeout(10 * time.Second))
	authRouter.Use(middleware.ContentTypeJSON)
	authRouter.Use(middleware.Latency(h.metrics))

	authRouter.Post("/login", h.handleLogin)
	authRouter.Post("/register", h.handleRegister)

	authRouter.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(h.validator, h.logger))
		pr.Post("/logout", h.handleLogout)
		pr.Get("/session", h.handleIntrospect)
	})

	r.Mount("/auth", authRouter)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token   string         `json:"token"`
	User    models.User    `json:"user"`
	Session models.Session `json:"session"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "login failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "login failed"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, loginResponse{
		Token:   result.Token,
		User:    result.User,
		Session: result.Session,
	})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.auth.Register(ctx, req.Email, req.Name, req.Password)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeBadRequest) || dErrors.Is(err, dErrors.CodeConflict) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "registration failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "registration failed"))
		return
	}
	shared.WriteJSON(w, http.StatusCreated, user)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sessionID, err := h.auth.Logout(ctx)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "logout failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "logout failed"))
		return
	}

	// The session's browse state dies with the session.
	h.fetchers.Drop(sessionID)

	w.WriteHeader(http.StatusNoContent)
}

type introspectResponse struct {
	Session models.Session `json:"session"`
	User    models.User    `json:"user"`
}

func (h *Handler) handleIntrospect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sess, user, err := h.auth.Introspect(ctx)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeUnauthorized) {
			shared.WriteError(w, err)
			return
		}
		h.logger.ErrorContext(ctx, "session introspection failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "session introspection failed"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, introspectResponse{Session: sess, User: user})
}
