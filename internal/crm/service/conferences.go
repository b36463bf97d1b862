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

func validateConference(c models.Conference) error {
	if strings.TrimSpace(c.Name) == "" {
		return dErrors.New(dErrors.CodeBadRequest, "conference name is required")
	}
	if c.StartDate.IsZero() {
		return dErrors.New(dErrors.CodeBadRequest, "conference start date is required")
	}
	if !c.EndDate.IsZero() && c.EndDate.Before(c.StartDate) {
		return dErrors.New(dErrors.CodeBadRequest, "conference end date precedes its start date")
	}
	return nil
}

// CreateConference stores a new conference.
func (s *Service) CreateConference(ctx context.Context, c models.Conference) (models.Conference, error) {
	if err := validateConference(c); err != nil {
		return models.Conference{}, err
	}
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.EndDate.IsZero() {
		c.EndDate = c.StartDate
	}
	now := requestcontext.Now(ctx)
	c.CreatedAt, c.UpdatedAt = now, now

	if err := s.stores.Conferences.Create(ctx, c); err != nil {
		return models.Conference{}, translate(err, "conference not found")
	}
	s.countCreated(models.CollectionConferences)
	s.publish(ctx, changefeed.ActionCreated, models.CollectionConferences, c.ID)
	return c, nil
}

// GetConference returns one conference.
func (s *Service) GetConference(ctx context.Context, id uuid.UUID) (models.Conference, error) {
	c, err := s.stores.Conferences.Get(ctx, id)
	if err != nil {
		return models.Conference{}, translate(err, "conference not found")
	}
	return c, nil
}

// UpdateConference replaces a conference's fields.
func (s *Service) UpdateConference(ctx context.Context, c models.Conference) (models.Conference, error) {
	if c.ID == uuid.Nil {
		return models.Conference{}, dErrors.New(dErrors.CodeBadRequest, "conference id is required")
	}
	if err := validateConference(c); err != nil {
		return models.Conference{}, err
	}
	c.UpdatedAt = requestcontext.Now(ctx)
	if err := s.stores.Conferences.Update(ctx, c); err != nil {
		return models.Conference{}, translate(err, "conference not found")
	}
	s.publish(ctx, changefeed.ActionUpdated, models.CollectionConferences, c.ID)
	return c, nil
}

// DeleteConference removes a conference and its attendee links.
func (s *Service) DeleteConference(ctx context.Context, id uuid.UUID) error {
	if err := s.stores.Conferences.Delete(ctx, id); err != nil {
		return translate(err, "conference not found")
	}
	s.countDeleted(models.CollectionConferences, 1)
	s.publish(ctx, changefeed.ActionDeleted, models.CollectionConferences, id)
	return nil
}
