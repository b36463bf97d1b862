// Package store defines the persistence interfaces for the CRM collections.
//
// Stores are interface-driven to keep the fetcher and services testable and to
// allow swapping the in-memory and Postgres implementations without rewiring
// business code. Implementations return pkg/platform/sentinel errors for
// infrastructure facts (ErrNotFound etc.); services translate them.
package store

import (
	"context"

	"github.com/google/uuid"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
)

// AttendeeStore persists attendees and their join entities.
//
// Count and Page take the same compiled filter; Page ranges are zero-indexed
// and inclusive on both ends. CountListMembers deliberately takes no filter:
// the membership join makes a filtered count structurally different from the
// plain membership count, and the dashboard shows the latter.
type AttendeeStore interface {
	Count(ctx context.Context, f query.Filter) (int, error)
	Page(ctx context.Context, f query.Filter, from, to int) ([]models.Attendee, error)
	CountListMembers(ctx context.Context, listID uuid.UUID) (int, error)
	PageListMembers(ctx context.Context, listID uuid.UUID, f query.Filter, from, to int) ([]models.Attendee, error)
	Get(ctx context.Context, id uuid.UUID) (models.Attendee, error)
	Create(ctx context.Context, a models.Attendee) error
	Update(ctx context.Context, a models.Attendee) error
	Delete(ctx context.Context, ids ...uuid.UUID) error
	// AddConference links an attendee to a conference. Duplicate pairs are a
	// no-op success, not an error.
	AddConference(ctx context.Context, attendeeID, conferenceID uuid.UUID) error
}

// HealthSystemStore persists health systems.
type HealthSystemStore interface {
	Count(ctx context.Context, f query.Filter) (int, error)
	Page(ctx context.Context, f query.Filter, from, to int) ([]models.HealthSystem, error)
	Get(ctx context.Context, id uuid.UUID) (models.HealthSystem, error)
	Create(ctx context.Context, h models.HealthSystem) error
	Update(ctx context.Context, h models.HealthSystem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ConferenceStore persists conferences.
type ConferenceStore interface {
	Count(ctx context.Context, f query.Filter) (int, error)
	Page(ctx context.Context, f query.Filter, from, to int) ([]models.Conference, error)
	Get(ctx context.Context, id uuid.UUID) (models.Conference, error)
	Create(ctx context.Context, c models.Conference) error
	Update(ctx context.Context, c models.Conference) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ListStore persists attendee lists and their memberships.
type ListStore interface {
	All(ctx context.Context) ([]models.List, error)
	Get(ctx context.Context, id uuid.UUID) (models.List, error)
	Create(ctx context.Context, l models.List) error
	Delete(ctx context.Context, id uuid.UUID) error
	// AddMembers inserts (attendee, list) pairs. Duplicate pairs are a no-op
	// success so bulk "add to list" stays idempotent.
	AddMembers(ctx context.Context, listID uuid.UUID, attendeeIDs []uuid.UUID) error
	RemoveMember(ctx context.Context, listID, attendeeID uuid.UUID) error
}

// Stores bundles the per-collection stores for wiring.
type Stores struct {
	Attendees     AttendeeStore
	HealthSystems HealthSystemStore
	Conferences   ConferenceStore
	Lists         ListStore
}
