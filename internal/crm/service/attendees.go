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

// CreateAttendee stores a new attendee. Missing IDs and timestamps are
// assigned here so callers can submit bare records.
func (s *Service) CreateAttendee(ctx context.Context, a models.Attendee) (models.Attendee, error) {
	if strings.TrimSpace(a.FirstName) == "" && strings.TrimSpace(a.LastName) == "" && strings.TrimSpace(a.Email) == "" {
		return models.Attendee{}, dErrors.New(dErrors.CodeBadRequest, "attendee needs a name or an email")
	}
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Certifications == nil {
		a.Certifications = []string{}
	}
	now := requestcontext.Now(ctx)
	a.CreatedAt, a.UpdatedAt = now, now

	if err := s.stores.Attendees.Create(ctx, a); err != nil {
		return models.Attendee{}, translate(err, "attendee not found")
	}
	s.countCreated(models.CollectionAttendees)
	s.publish(ctx, changefeed.ActionCreated, models.CollectionAttendees, a.ID)
	return a, nil
}

// GetAttendee returns one attendee with its conferences embedded.
func (s *Service) GetAttendee(ctx context.Context, id uuid.UUID) (models.Attendee, error) {
	a, err := s.stores.Attendees.Get(ctx, id)
	if err != nil {
		return models.Attendee{}, translate(err, "attendee not found")
	}
	return a, nil
}

// UpdateAttendee replaces an attendee's fields.
func (s *Service) UpdateAttendee(ctx context.Context, a models.Attendee) (models.Attendee, error) {
	if a.ID == uuid.Nil {
		return models.Attendee{}, dErrors.New(dErrors.CodeBadRequest, "attendee id is required")
	}
	a.UpdatedAt = requestcontext.Now(ctx)
	if err := s.stores.Attendees.Update(ctx, a); err != nil {
		return models.Attendee{}, translate(err, "attendee not found")
	}
	s.publish(ctx, changefeed.ActionUpdated, models.CollectionAttendees, a.ID)
	return a, nil
}

// DeleteAttendees removes attendees in bulk; memberships and conference links
// go with them.
func (s *Service) DeleteAttendees(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return dErrors.New(dErrors.CodeBadRequest, "no attendee ids given")
	}
	if err := s.stores.Attendees.Delete(ctx, ids...); err != nil {
		return translate(err, "attendee not found")
	}
	s.countDeleted(models.CollectionAttendees, len(ids))
	for _, id := range ids {
		s.publish(ctx, changefeed.ActionDeleted, models.CollectionAttendees, id)
	}
	return nil
}

// AddAttendeeToConference links an attendee to a conference; duplicates are a
// no-op success.
func (s *Service) AddAttendeeToConference(ctx context.Context, attendeeID, conferenceID uuid.UUID) error {
	if _, err := s.stores.Attendees.Get(ctx, attendeeID); err != nil {
		return translate(err, "attendee not found")
	}
	if _, err := s.stores.Conferences.Get(ctx, conferenceID); err != nil {
		return translate(err, "conference not found")
	}
	if err := s.stores.Attendees.AddConference(ctx, attendeeID, conferenceID); err != nil {
		return translate(err, "attendee not found")
	}
	s.publish(ctx, changefeed.ActionUpdated, models.CollectionAttendees, attendeeID)
	return nil
}
