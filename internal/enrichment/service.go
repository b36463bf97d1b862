package enrichment

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/store"
	"confcrm/internal/platform/metrics"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/platform/sentinel"
	"confcrm/pkg/requestcontext"
)

// Service orchestrates the enrichment providers against the CRM stores.
// Looked-up data fills blank fields only; operator-entered data wins.
type Service struct {
	contacts      ContactClient
	organizations OrganizationClient
	ai            AIClient
	attendees     store.AttendeeStore
	healthSystems store.HealthSystemStore
	logger        *slog.Logger
	metrics       *metrics.Metrics
	tracer        trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics attaches the Prometheus instruments.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithTracer attaches an otel tracer for enrichment spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Service) { s.tracer = t }
}

// New creates an enrichment Service.
func New(contacts ContactClient, organizations OrganizationClient, ai AIClient,
	attendees store.AttendeeStore, healthSystems store.HealthSystemStore,
	logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		contacts:      contacts,
		organizations: organizations,
		ai:            ai,
		attendees:     attendees,
		healthSystems: healthSystems,
		logger:        logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) count(provider, outcome string) {
	if s.metrics != nil {
		s.metrics.EnrichmentCalls.WithLabelValues(provider, outcome).Inc()
	}
}

func (s *Service) span(ctx context.Context, name string) (context.Context, trace.Span) {
	if s.tracer == nil {
		return ctx, nil
	}
	return s.tracer.Start(ctx, name)
}

// EnrichAttendee looks up contact data and persists it into the attendee's
// blank fields.
func (s *Service) EnrichAttendee(ctx context.Context, id uuid.UUID) (models.Attendee, error) {
	ctx, span := s.span(ctx, "enrichment.EnrichAttendee")
	if span != nil {
		defer span.End()
	}

	a, err := s.attendees.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Attendee{}, dErrors.New(dErrors.CodeNotFound, "attendee not found")
		}
		return models.Attendee{}, dErrors.Wrap(err, dErrors.CodeInternal, "enrichment failed")
	}

	data, err := s.contacts.LookupContact(ctx, a)
	if err != nil {
		s.count("contact", "error")
		return models.Attendee{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "contact lookup failed")
	}
	s.count("contact", "ok")

	if a.Email == "" {
		a.Email = data.Email
	}
	if a.Phone == "" {
		a.Phone = data.Phone
	}
	if a.LinkedInURL == "" {
		a.LinkedInURL = data.LinkedInURL
	}
	if a.Title == "" {
		a.Title = data.Title
	}
	a.UpdatedAt = requestcontext.Now(ctx)

	if err := s.attendees.Update(ctx, a); err != nil {
		return models.Attendee{}, dErrors.Wrap(err, dErrors.CodeInternal, "enrichment persist failed")
	}
	return a, nil
}

// EnrichHealthSystem looks up registry data and persists it into the health
// system's blank fields.
func (s *Service) EnrichHealthSystem(ctx context.Context, id uuid.UUID) (models.HealthSystem, error) {
	ctx, span := s.span(ctx, "enrichment.EnrichHealthSystem")
	if span != nil {
		defer span.End()
	}

	h, err := s.healthSystems.Get(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.HealthSystem{}, dErrors.New(dErrors.CodeNotFound, "health system not found")
		}
		return models.HealthSystem{}, dErrors.Wrap(err, dErrors.CodeInternal, "enrichment failed")
	}

	data, err := s.organizations.LookupOrganization(ctx, h)
	if err != nil {
		s.count("organization", "error")
		return models.HealthSystem{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "organization lookup failed")
	}
	s.count("organization", "ok")

	if h.ExternalID == "" {
		h.ExternalID = data.ExternalID
	}
	if h.Street == "" {
		h.Street = data.Street
	}
	if h.City == "" {
		h.City = data.City
	}
	if h.State == "" {
		h.State = data.State
	}
	if h.Zip == "" {
		h.Zip = data.Zip
	}
	if h.Website == "" {
		h.Website = data.Website
	}
	h.UpdatedAt = requestcontext.Now(ctx)

	if err := s.healthSystems.Update(ctx, h); err != nil {
		return models.HealthSystem{}, dErrors.Wrap(err, dErrors.CodeInternal, "enrichment persist failed")
	}
	return h, nil
}

// RunAIColumn renders the prompt template per attendee and collects the
// completions. Failures are per-row: a missing attendee or provider error is
// logged and skipped so one bad row does not sink the batch.
func (s *Service) RunAIColumn(ctx context.Context, template string, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if template == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "prompt template is required")
	}
	if len(ids) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no attendee ids given")
	}

	ctx, span := s.span(ctx, "enrichment.RunAIColumn")
	if span != nil {
		defer span.End()
	}

	results := make(map[uuid.UUID]string, len(ids))
	for _, id := range ids {
		a, err := s.attendees.Get(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "ai column skipped attendee", "attendee_id", id, "error", err)
			continue
		}
		completion, err := s.ai.Complete(ctx, RenderPrompt(template, a))
		if err != nil {
			s.count("ai", "error")
			s.logger.WarnContext(ctx, "ai completion failed", "attendee_id", id, "error", err)
			continue
		}
		s.count("ai", "ok")
		results[id] = completion
	}
	return results, nil
}
