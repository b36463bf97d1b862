package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"confcrm/internal/changefeed"
	"confcrm/internal/crm/models"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

// CreateHealthSystem stores a new health system.
func (s *Service) CreateHealthSystem(ctx context.Context, h models.HealthSystem) (models.HealthSystem, error) {
	if strings.TrimSpace(h.Name) == "" {
		return models.HealthSystem{}, dErrors.New(dErrors.CodeBadRequest, "health system name is required")
	}
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	now := requestcontext.Now(ctx)
	h.CreatedAt, h.UpdatedAt = now, now

	if err := s.stores.HealthSystems.Create(ctx, h); err != nil {
		return models.HealthSystem{}, translate(err, "health system not found")
	}
	s.countCreated(models.CollectionHealthSystems)
	s.publish(ctx, changefeed.ActionCreated, models.CollectionHealthSystems, h.ID)
	return h, nil
}

// GetHealthSystem returns one health system.
func (s *Service) GetHealthSystem(ctx context.Context, id uuid.UUID) (models.HealthSystem, error) {
	h, err := s.stores.HealthSystems.Get(ctx, id)
	if err != nil {
		return models.HealthSystem{}, translate(err, "health system not found")
	}
	return h, nil
}

// UpdateHealthSystem replaces a health system's fields.
func (s *Service) UpdateHealthSystem(ctx context.Context, h models.HealthSystem) (models.HealthSystem, error) {
	if h.ID == uuid.Nil {
		return models.HealthSystem{}, dErrors.New(dErrors.CodeBadRequest, "health system id is required")
	}
	if strings.TrimSpace(h.Name) == "" {
		return models.HealthSystem{}, dErrors.New(dErrors.CodeBadRequest, "health system name is required")
	}
	h.UpdatedAt = requestcontext.Now(ctx)
	if err := s.stores.HealthSystems.Update(ctx, h); err != nil {
		return models.HealthSystem{}, translate(err, "health system not found")
	}
	s.publish(ctx, changefeed.ActionUpdated, models.CollectionHealthSystems, h.ID)
	return h, nil
}

// DeleteHealthSystem removes a health system; attendee references to it are
// cleared, not cascaded.
func (s *Service) DeleteHealthSystem(ctx context.Context, id uuid.UUID) error {
	if err := s.stores.HealthSystems.Delete(ctx, id); err != nil {
		return translate(err, "health system not found")
	}
	s.countDeleted(models.CollectionHealthSystems, 1)
	s.publish(ctx, changefeed.ActionDeleted, models.CollectionHealthSystems, id)
	return nil
}
