package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"confcrm/internal/crm/models"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

// Lists returns all lists with derived member counts.
func (s *Service) Lists(ctx context.Context) ([]models.List, error) {
	lists, err := s.stores.Lists.All(ctx)
	if err != nil {
		return nil, translate(err, "list not found")
	}
	return lists, nil
}

// GetList returns one list with its derived member count.
func (s *Service) GetList(ctx context.Context, id uuid.UUID) (models.List, error) {
	l, err := s.stores.Lists.Get(ctx, id)
	if err != nil {
		return models.List{}, translate(err, "list not found")
	}
	return l, nil
}

// CreateList creates an empty list.
func (s *Service) CreateList(ctx context.Context, name string) (models.List, error) {
	if strings.TrimSpace(name) == "" {
		return models.List{}, dErrors.New(dErrors.CodeBadRequest, "list name is required")
	}
	l := models.List{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.stores.Lists.Create(ctx, l); err != nil {
		return models.List{}, translate(err, "list not found")
	}
	return l, nil
}

// DeleteList removes a list and its memberships; attendees stay.
func (s *Service) DeleteList(ctx context.Context, id uuid.UUID) error {
	if err := s.stores.Lists.Delete(ctx, id); err != nil {
		return translate(err, "list not found")
	}
	return nil
}

// AddToList adds the selected attendees to a list. Attendees already on the
// list are skipped silently, keeping the bulk action idempotent.
func (s *Service) AddToList(ctx context.Context, listID uuid.UUID, attendeeIDs []uuid.UUID) (models.List, error) {
	if len(attendeeIDs) == 0 {
		return models.List{}, dErrors.New(dErrors.CodeBadRequest, "no attendee ids given")
	}
	if err := s.stores.Lists.AddMembers(ctx, listID, attendeeIDs); err != nil {
		return models.List{}, translate(err, "list not found")
	}
	return s.GetList(ctx, listID)
}

// RemoveFromList removes one attendee from a list.
func (s *Service) RemoveFromList(ctx context.Context, listID, attendeeID uuid.UUID) error {
	if err := s.stores.Lists.RemoveMember(ctx, listID, attendeeID); err != nil {
		return translate(err, "list membership not found")
	}
	return nil
}
