// Package handler exposes the CRM browse, CRUD, list and export endpoints.
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"confcrm/internal/crm/fetcher"
	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/internal/platform/metrics"
	"confcrm/internal/platform/middleware"
	"confcrm/internal/transport/http/shared"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

// Service defines the CRM operations the handler depends on.
type Service interface {
	CreateAttendee(ctx context.Context, a models.Attendee) (models.Attendee, error)
	GetAttendee(ctx context.Context, id uuid.UUID) (models.Attendee, error)
	UpdateAttendee(ctx context.Context, a models.Attendee) (models.Attendee, error)
	DeleteAttendees(ctx context.Context, ids []uuid.UUID) error
	AddAttendeeToConference(ctx context.Context, attendeeID, conferenceID uuid.UUID) error

	CreateHealthSystem(ctx context.Context, h models.HealthSystem) (models.HealthSystem, error)
	GetHealthSystem(ctx context.Context, id uuid.UUID) (models.HealthSystem, error)
	UpdateHealthSystem(ctx context.Context, h models.HealthSystem) (models.HealthSystem, error)
	DeleteHealthSystem(ctx context.Context, id uuid.UUID) error

	CreateConference(ctx context.Context, c models.Conference) (models.Conference, error)
	GetConference(ctx context.Context, id uuid.UUID) (models.Conference, error)
	UpdateConference(ctx context.Context, c models.Conference) (models.Conference, error)
	DeleteConference(ctx context.Context, id uuid.UUID) error

	Lists(ctx context.Context) ([]models.List, error)
	GetList(ctx context.Context, id uuid.UUID) (models.List, error)
	CreateList(ctx context.Context, name string) (models.List, error)
	DeleteList(ctx context.Context, id uuid.UUID) error
	AddToList(ctx context.Context, listID uuid.UUID, attendeeIDs []uuid.UUID) (models.List, error)
	RemoveFromList(ctx context.Context, listID, attendeeID uuid.UUID) error

	ExportAttendeesCSV(ctx context.Context, f query.Filter, listID *uuid.UUID, w io.Writer) error
}

// Handler handles the CRM endpoints.
type Handler struct {
	logger    *slog.Logger
	crm       Service
	fetchers  *fetcher.Registry
	metrics   *metrics.Metrics
	validator middleware.TokenValidator
}

// New creates a new CRM Handler.
func New(crm Service, fetchers *fetcher.Registry, logger *slog.Logger,
	m *metrics.Metrics, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		crm:       crm,
		fetchers:  fetchers,
		metrics:   m,
		validator: validator,
	}
}

// Register registers the CRM routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	crmRouter := chi.NewRouter()
	crmRouter.Use(middleware.Recovery(h.logger))
	crmRouter.Use(middleware.RequestID)
	crmRouter.Use(middleware.Logger(h.logger))
	crmRouter.Use(middleware.Timeout(30 * time.Second))
	crmRouter.Use(middleware.ContentTypeJSON)
	crmRouter.Use(middleware.Latency(h.metrics))
	crmRouter.Use(middleware.RequireAuth(h.validator, h.logger))

	crmRouter.Post("/fetch", h.handleFetch)

	crmRouter.Post("/attendees", h.handleCreateAttendee)
	crmRouter.Get("/attendees/{id}", h.handleGetAttendee)
	crmRouter.Put("/attendees/{id}", h.handleUpdateAttendee)
	crmRouter.Post("/attendees/delete", h.handleDeleteAttendees)
	crmRouter.Post("/attendees/export", h.handleExportAttendees)
	crmRouter.Post("/attendees/{id}/conferences/{conferenceID}", h.handleAddToConference)

	crmRouter.Post("/health-systems", h.handleCreateHealthSystem)
	crmRouter.Get("/health-systems/{id}", h.handleGetHealthSystem)
	crmRouter.Put("/health-systems/{id}", h.handleUpdateHealthSystem)
	crmRouter.Delete("/health-systems/{id}", h.handleDeleteHealthSystem)

	crmRouter.Post("/conferences", h.handleCreateConference)
	crmRouter.Get("/conferences/{id}", h.handleGetConference)
	crmRouter.Put("/conferences/{id}", h.handleUpdateConference)
	crmRouter.Delete("/conferences/{id}", h.handleDeleteConference)

	crmRouter.Get("/lists", h.handleLists)
	crmRouter.Post("/lists", h.handleCreateList)
	crmRouter.Get("/lists/{id}", h.handleGetList)
	crmRouter.Delete("/lists/{id}", h.handleDeleteList)
	crmRouter.Post("/lists/{id}/members", h.handleAddToList)
	crmRouter.Delete("/lists/{id}/members/{attendeeID}", h.handleRemoveFromList)

	r.Mount("/crm", crmRouter)
}

func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeBadRequest, "invalid %s", name)
	}
	return id, nil
}

// fetchRequest mirrors fetcher.Options on the wire.
type fetchRequest struct {
	Page       int                   `json:"page"`
	PageSize   int                   `json:"page_size"`
	Search     string                `json:"search"`
	Clauses    []models.FilterClause `json:"clauses"`
	Collection models.Collection     `json:"collection"`
	ListID     *uuid.UUID            `json:"list_id"`
}

type fetchResponse struct {
	Attendees     []models.Attendee          `json:"attendees"`
	HealthSystems []models.HealthSystem      `json:"health_systems"`
	Conferences   []models.Conference        `json:"conferences"`
	Totals        map[models.Collection]int  `json:"totals"`
	HasMore       map[models.Collection]bool `json:"has_more"`
	Page          int                        `json:"page"`
	Loading       bool                       `json:"loading"`
	Error         string                     `json:"error,omitempty"`
}

func toFetchResponse(s fetcher.Snapshot) fetchResponse {
	return fetchResponse{
		Attendees:     s.Attendees,
		HealthSystems: s.HealthSystems,
		Conferences:   s.Conferences,
		Totals:        s.Totals,
		HasMore:       s.HasMore,
		Page:          s.Page,
		Loading:       s.Loading,
		Error:         s.Err,
	}
}

// handleFetch loads a page into the caller's session-scoped fetcher and
// returns the full held state. A debounced call is not an error: it simply
// returns the unchanged state.
func (h *Handler) handleFetch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req fetchRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Collection != "" && !req.Collection.Valid() {
		shared.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "unknown collection %q", req.Collection))
		return
	}

	f := h.fetchers.Get(requestcontext.SessionID(ctx))
	err := f.FetchData(ctx, fetcher.Options{
		Page:       req.Page,
		PageSize:   req.PageSize,
		Search:     req.Search,
		Clauses:    req.Clauses,
		Collection: req.Collection,
		ListID:     req.ListID,
	})
	if err != nil && err.Error() == fetcher.ErrAuthRequired {
		shared.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, fetcher.ErrAuthRequired))
		return
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "fetch failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	shared.WriteJSON(w, http.StatusOK, toFetchResponse(f.Snapshot()))
}

// sessionFetcher returns the caller's fetcher for post-mutation reconciliation.
func (h *Handler) sessionFetcher(ctx context.Context) *fetcher.Fetcher {
	return h.fetchers.Get(requestcontext.SessionID(ctx))
}

func (h *Handler) handleCreateAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var a models.Attendee
	if err := shared.DecodeJSON(r, &a); err != nil {
		shared.WriteError(w, err)
		return
	}
	created, err := h.crm.CreateAttendee(ctx, a)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create attendee")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetAttendee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	a, err := h.crm.GetAttendee(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load attendee")
		return
	}
	shared.WriteJSON(w, http.StatusOK, a)
}

func (h *Handler) handleUpdateAttendee(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var a models.Attendee
	if err := shared.DecodeJSON(r, &a); err != nil {
		shared.WriteError(w, err)
		return
	}
	a.ID = id
	updated, err := h.crm.UpdateAttendee(ctx, a)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update attendee")
		return
	}

	// Reconcile the session's held state so the next snapshot reflects the
	// edit without a refetch.
	f := h.sessionFetcher(ctx)
	held := f.Snapshot().Attendees
	for i := range held {
		if held[i].ID == updated.ID {
			held[i] = updated
		}
	}
	f.SetAttendees(held)

	shared.WriteJSON(w, http.StatusOK, updated)
}

type deleteAttendeesRequest struct {
	IDs []uuid.UUID `json:"ids"`
}

func (h *Handler) handleDeleteAttendees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deleteAttendeesRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.DeleteAttendees(ctx, req.IDs); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete attendees")
		return
	}

	deleted := make(map[uuid.UUID]bool, len(req.IDs))
	for _, id := range req.IDs {
		deleted[id] = true
	}
	f := h.sessionFetcher(ctx)
	held := f.Snapshot().Attendees
	kept := held[:0]
	for _, a := range held {
		if !deleted[a.ID] {
			kept = append(kept, a)
		}
	}
	f.SetAttendees(kept)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleAddToConference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attendeeID, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	conferenceID, err := pathID(r, "conferenceID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.AddAttendeeToConference(ctx, attendeeID, conferenceID); err != nil {
		h.writeServiceError(ctx, w, err, "failed to associate attendee with conference")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exportRequest struct {
	Search  string                `json:"search"`
	Clauses []models.FilterClause `json:"clauses"`
	ListID  *uuid.UUID            `json:"list_id"`
}

// handleExportAttendees streams the filtered attendee set as CSV. The export
// walks every matching page, not just the held ones.
func (h *Handler) handleExportAttendees(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req exportRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="attendees.csv"`)

	filter := query.Filter{Clauses: req.Clauses, Search: req.Search}
	if err := h.crm.ExportAttendeesCSV(ctx, filter, req.ListID, w); err != nil {
		// Headers may already be on the wire; log instead of rewriting the
		// response as JSON mid-stream.
		h.logger.ErrorContext(ctx, "csv export failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (h *Handler) handleCreateHealthSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var hs models.HealthSystem
	if err := shared.DecodeJSON(r, &hs); err != nil {
		shared.WriteError(w, err)
		return
	}
	created, err := h.crm.CreateHealthSystem(ctx, hs)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create health system")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetHealthSystem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	hs, err := h.crm.GetHealthSystem(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load health system")
		return
	}
	shared.WriteJSON(w, http.StatusOK, hs)
}

func (h *Handler) handleUpdateHealthSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var hs models.HealthSystem
	if err := shared.DecodeJSON(r, &hs); err != nil {
		shared.WriteError(w, err)
		return
	}
	hs.ID = id
	updated, err := h.crm.UpdateHealthSystem(ctx, hs)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update health system")
		return
	}

	f := h.sessionFetcher(ctx)
	held := f.Snapshot().HealthSystems
	for i := range held {
		if held[i].ID == updated.ID {
			held[i] = updated
		}
	}
	f.SetHealthSystems(held)

	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteHealthSystem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.DeleteHealthSystem(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete health system")
		return
	}

	f := h.sessionFetcher(ctx)
	held := f.Snapshot().HealthSystems
	kept := held[:0]
	for _, hs := range held {
		if hs.ID != id {
			kept = append(kept, hs)
		}
	}
	f.SetHealthSystems(kept)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCreateConference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var c models.Conference
	if err := shared.DecodeJSON(r, &c); err != nil {
		shared.WriteError(w, err)
		return
	}
	created, err := h.crm.CreateConference(ctx, c)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create conference")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, created)
}

func (h *Handler) handleGetConference(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.crm.GetConference(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load conference")
		return
	}
	shared.WriteJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateConference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var c models.Conference
	if err := shared.DecodeJSON(r, &c); err != nil {
		shared.WriteError(w, err)
		return
	}
	c.ID = id
	updated, err := h.crm.UpdateConference(ctx, c)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to update conference")
		return
	}

	f := h.sessionFetcher(ctx)
	held := f.Snapshot().Conferences
	for i := range held {
		if held[i].ID == updated.ID {
			held[i] = updated
		}
	}
	f.SetConferences(held)

	shared.WriteJSON(w, http.StatusOK, updated)
}

func (h *Handler) handleDeleteConference(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.DeleteConference(ctx, id); err != nil {
		h.writeServiceError(ctx, w, err, "failed to delete conference")
		return
	}

	f := h.sessionFetcher(ctx)
	held := f.Snapshot().Conferences
	kept := held[:0]
	for _, c := range held {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	f.SetConferences(kept)

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.crm.Lists(r.Context())
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load lists")
		return
	}
	shared.WriteJSON(w, http.StatusOK, lists)
}

type createListRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createListRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.crm.CreateList(ctx, req.Name)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create list")
		return
	}
	shared.WriteJSON(w, http.StatusCreated, list)
}

func (h *Handler) handleGetList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.crm.GetList(r.Context(), id)
	if err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to load list")
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.DeleteList(r.Context(), id); err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to delete list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addToListRequest struct {
	AttendeeIDs []uuid.UUID `json:"attendee_ids"`
}

func (h *Handler) handleAddToList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listID, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req addToListRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.crm.AddToList(ctx, listID, req.AttendeeIDs)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to add attendees to list")
		return
	}
	shared.WriteJSON(w, http.StatusOK, list)
}

func (h *Handler) handleRemoveFromList(w http.ResponseWriter, r *http.Request) {
	listID, err := pathID(r, "id")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	attendeeID, err := pathID(r, "attendeeID")
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.crm.RemoveFromList(r.Context(), listID, attendeeID); err != nil {
		h.writeServiceError(r.Context(), w, err, "failed to remove attendee from list")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeServiceError logs unexpected failures and writes the coded error.
// Client-caused codes pass through without the error log.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	var de *dErrors.Error
	if errors.As(err, &de) && de.Code != dErrors.CodeInternal {
		shared.WriteError(w, err)
		return
	}
	h.logger.ErrorContext(ctx, msg,
		"request_id", requestcontext.RequestID(ctx),
		"error", err.Error(),
	)
	shared.WriteError(w, dErrors.New(dErrors.CodeInternal, msg))
}
