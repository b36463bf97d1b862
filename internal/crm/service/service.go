// Package service implements the CRM record operations on top of the stores.
//
// Stores speak sentinel errors; this layer translates them into coded domain
// errors, stamps identities and timestamps, publishes change events and
// bumps metrics. Handlers stay thin.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"confcrm/internal/changefeed"
	"confcrm/internal/crm/models"
	"confcrm/internal/crm/store"
	"confcrm/internal/platform/metrics"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/platform/sentinel"
	"confcrm/pkg/requestcontext"
)

// Service exposes the CRM record operations.
type Service struct {
	stores  store.Stores
	feed    *changefeed.Publisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithChangefeed attaches the record-change publisher. A nil publisher is
// valid and drops events.
func WithChangefeed(feed *changefeed.Publisher) Option {
	return func(s *Service) { s.feed = feed }
}

// WithMetrics attaches the Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// New creates a Service over the given stores.
func New(stores store.Stores, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{stores: stores, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// translate maps store sentinels onto coded domain errors.
func translate(err error, notFoundMsg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, notFoundMsg)
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "record already exists")
	case errors.Is(err, sentinel.ErrUnavailable):
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "storage unavailable")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, "storage operation failed")
	}
}

func (s *Service) publish(ctx context.Context, action changefeed.Action, col models.Collection, id uuid.UUID) {
	s.feed.Publish(ctx, changefeed.Event{
		Action:     action,
		Collection: col,
		RecordID:   id,
		ActorID:    requestcontext.UserID(ctx),
		At:         requestcontext.Now(ctx),
	})
}

func (s *Service) countCreated(col models.Collection) {
	if s.metrics != nil {
		s.metrics.RecordsCreated.WithLabelValues(string(col)).Inc()
	}
}

func (s *Service) countDeleted(col models.Collection, n int) {
	if s.metrics != nil {
		s.metrics.RecordsDeleted.WithLabelValues(string(col)).Add(float64(n))
	}
}
