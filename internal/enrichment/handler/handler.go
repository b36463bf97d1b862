// Package handler exposes the enrichment endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confcrm/internal/crm/fetcher"
	"confcrm/internal/crm/models"
	"confcrm/internal/platform/metrics"
	"confcrm/internal/platform/middleware"
	"confcrm/internal/transport/http/shared"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

// Service defines the enrichment operations the handler depends on.
type Service interface {
	EnrichAttendee(ctx context.Context, id uuid.UUID) (models.Attendee, error)
	EnrichHealthSystem(ctx context.Context, id uuid.UUID) (models.HealthSystem, error)
	RunAIColumn(ctx context.Context, template string, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Handler handles the enrichment endpoints. All routes require auth; the
// providers behind them bill per call.
type Handler struct {
	logger    *slog.Logger
	enrich    Service
	fetchers  *fetcher.Registry
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new enrichment Handler.
func New(enrich Service, fetchers *fetcher.Registry, logger *slog.Logger,
	m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		enrich:    enrich,
		fetchers:  fetchers,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the enrichment routes with the chi router. The timeout is
// generous: AI column runs call the completion provider once per row.
func (h *Handler) Register(r chi.Router) {
	enrichRouter := chi.NewRouter()
	enrichRouter.Use(middleware.Recovery(h.logger))
	enrichRouter.Use(middleware.RequestID)
	enrichRouter.Use(middleware.Logger(h.logger))
	enrichRouter.Use(middleware.Timeout(2 * time.Minute))
	enrichRouter.Use(middleware.ContentTypeJSON)
	enrichRouter.Use(middleware.Latency(h.metrics))
	enrichRouter.Use(middleware.RequireAuth(h.validator, h.logger))

	enrichRouter.Post("/attendees/{id}", h.handleEnrichAttendee)
	enrichRouter.Post("/health-systems/{id}", h.handleEnrichHealthSystem)
	enrichRouter.Post("/ai-column", h.handleAIColumn)

	r.Mount("/enrich", enrichRouter)
}

func (h *Handler) handleEnrichAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid id"))
		return
	}
	a, err := h.enrich.EnrichAttendee(ctx, id)
	if err != nil {
		h.writeEnrichError(ctx, w, err, "attendee enrichment failed")
		return
	}

	// Push the enriched record into the session's held state so the dashboard
	// sees it without a refetch.
	f := h.fetchers.Get(requestcontext.SessionID(ctx))
	held := f.Snapshot().Attendees
	for i := range held {
		if held[i].ID == a.ID {
			held[i] = a
		}
	}
	f.SetAttendees(held)

	shared.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleEnrichHealthSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid id"))
		return
	}
	hs, err := h.enrich.EnrichHealthSystem(ctx, id)
	if err != nil {
		h.writeEnrichError(ctx, w, err, "health system enrichment failed")
		return
	}

	f := h.fetchers.Get(requestcontext.SessionID(ctx))
	held := f.Snapshot().HealthSystems
	for i := range held {
		if held[i].ID == hs.ID {
			held[i] = hs
		}
	}
	f.SetHealthSystems(held)

	shared.WriteJSON(w, http.StatusOK, hs)
}

type aiColumnRequest struct {
	Template    string      `json:"template"`
	AttendeeIDs []uuid.UUID `json:"attendee_ids"`
}

type aiColumnResponse struct {
	Results map[uuid.UUID]string `json:"results"`
}

func (h *Handler) handleAIColumn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req aiColumnRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	results, err := h.enrich.RunAIColumn(ctx, req.Template, req.AttendeeIDs)
	if err != nil {
		h.writeEnrichError(ctx, w, err, "ai column run failed")
		return
	}
	shared.WriteJSON(w, http.StatusOK, aiColumnResponse{Results: results})
}

func (h *Handler) writeEnrichError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.Is(err, dErrors.CodeBadRequest) ||
		dErrors.Is(err, dErrors.CodeNotFound) ||
		dErrors.Is(err, dErrors.CodeUnavailable) {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
