// Package memory provides an in-memory implementation of the CRM stores.
// It backs unit tests and local development; semantics mirror the Postgres
// implementation, including sort orders and duplicate-pair no-ops.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/internal/crm/store"
	"confcrm/pkg/platform/sentinel"
)

// Store holds all four collections behind one mutex and exposes them through
// per-collection views satisfying the store interfaces. The event-driven
// callers never contend in practice; the lock keeps concurrent test fetches
// safe.
type Store struct {
	mu            sync.RWMutex
	attendees     map[uuid.UUID]models.Attendee
	healthSystems map[uuid.UUID]models.HealthSystem
	conferences   map[uuid.UUID]models.Conference
	lists         map[uuid.UUID]models.List
	listMembers   map[uuid.UUID]map[uuid.UUID]struct{} // list -> attendee set
	confMembers   map[uuid.UUID]map[uuid.UUID]struct{} // conference -> attendee set
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		attendees:     make(map[uuid.UUID]models.Attendee),
		healthSystems: make(map[uuid.UUID]models.HealthSystem),
		conferences:   make(map[uuid.UUID]models.Conference),
		lists:         make(map[uuid.UUID]models.List),
		listMembers:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
		confMembers:   make(map[uuid.UUID]map[uuid.UUID]struct{}),
	}
}

// Stores returns the store bundle backed by this instance.
func (s *Store) Stores() store.Stores {
	return store.Stores{
		Attendees:     &AttendeeStore{s},
		HealthSystems: &HealthSystemStore{s},
		Conferences:   &ConferenceStore{s},
		Lists:         &ListStore{s},
	}
}

func compile(f query.Filter, col models.Collection) *predicate {
	p := &predicate{}
	query.Apply(p, f, col)
	return p
}

// pageBounds clamps an inclusive [from,to] range onto a slice of length n.
func pageBounds(from, to, n int) (int, int, bool) {
	if from < 0 {
		from = 0
	}
	if from >= n || to < from {
		return 0, 0, false
	}
	if to >= n {
		to = n - 1
	}
	return from, to, true
}

func (s *Store) attendeesMatching(f query.Filter) []models.Attendee {
	p := compile(f, models.CollectionAttendees)
	out := make([]models.Attendee, 0, len(s.attendees))
	for _, a := range s.attendees {
		if p.matches(a) {
			out = append(out, a)
		}
	}
	sortAttendees(out)
	return out
}

func sortAttendees(as []models.Attendee) {
	sort.SliceStable(as, func(i, j int) bool {
		if as[i].LastName != as[j].LastName {
			return as[i].LastName < as[j].LastName
		}
		if as[i].FirstName != as[j].FirstName {
			return as[i].FirstName < as[j].FirstName
		}
		return as[i].ID.String() < as[j].ID.String()
	})
}

// AttendeeStore is the attendee view over the shared in-memory state.
type AttendeeStore struct{ s *Store }

func (v *AttendeeStore) Count(ctx context.Context, f query.Filter) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return len(v.s.attendeesMatching(f)), nil
}

func (v *AttendeeStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.Attendee, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	matched := v.s.attendeesMatching(f)
	lo, hi, ok := pageBounds(from, to, len(matched))
	if !ok {
		return []models.Attendee{}, nil
	}
	return append([]models.Attendee(nil), matched[lo:hi+1]...), nil
}

func (v *AttendeeStore) CountListMembers(ctx context.Context, listID uuid.UUID) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if _, ok := v.s.lists[listID]; !ok {
		return 0, sentinel.ErrNotFound
	}
	return len(v.s.listMembers[listID]), nil
}

func (v *AttendeeStore) PageListMembers(ctx context.Context, listID uuid.UUID, f query.Filter, from, to int) ([]models.Attendee, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	if _, ok := v.s.lists[listID]; !ok {
		return nil, sentinel.ErrNotFound
	}
	p := compile(f, models.CollectionAttendees)
	matched := make([]models.Attendee, 0, len(v.s.listMembers[listID]))
	for attendeeID := range v.s.listMembers[listID] {
		a, ok := v.s.attendees[attendeeID]
		if ok && p.matches(a) {
			matched = append(matched, a)
		}
	}
	sortAttendees(matched)
	lo, hi, ok := pageBounds(from, to, len(matched))
	if !ok {
		return []models.Attendee{}, nil
	}
	return append([]models.Attendee(nil), matched[lo:hi+1]...), nil
}

func (v *AttendeeStore) Get(ctx context.Context, id uuid.UUID) (models.Attendee, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	a, ok := v.s.attendees[id]
	if !ok {
		return models.Attendee{}, sentinel.ErrNotFound
	}
	// Embed associated conferences, most recent first.
	for confID, members := range v.s.confMembers {
		if _, in := members[id]; in {
			if c, ok := v.s.conferences[confID]; ok {
				a.Conferences = append(a.Conferences, c)
			}
		}
	}
	sort.SliceStable(a.Conferences, func(i, j int) bool {
		return a.Conferences[i].StartDate.After(a.Conferences[j].StartDate)
	})
	return a, nil
}

func (v *AttendeeStore) Create(ctx context.Context, a models.Attendee) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.attendees[a.ID]; exists {
		return sentinel.ErrConflict
	}
	a.Conferences = nil
	v.s.attendees[a.ID] = a
	return nil
}

func (v *AttendeeStore) Update(ctx context.Context, a models.Attendee) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.attendees[a.ID]; !exists {
		return sentinel.ErrNotFound
	}
	a.Conferences = nil
	v.s.attendees[a.ID] = a
	return nil
}

func (v *AttendeeStore) Delete(ctx context.Context, ids ...uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	for _, id := range ids {
		delete(v.s.attendees, id)
		for _, members := range v.s.listMembers {
			delete(members, id)
		}
		for _, members := range v.s.confMembers {
			delete(members, id)
		}
	}
	return nil
}

func (v *AttendeeStore) AddConference(ctx context.Context, attendeeID, conferenceID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.attendees[attendeeID]; !ok {
		return sentinel.ErrNotFound
	}
	if _, ok := v.s.conferences[conferenceID]; !ok {
		return sentinel.ErrNotFound
	}
	if v.s.confMembers[conferenceID] == nil {
		v.s.confMembers[conferenceID] = make(map[uuid.UUID]struct{})
	}
	// Duplicate pair: no-op success.
	v.s.confMembers[conferenceID][attendeeID] = struct{}{}
	return nil
}

// HealthSystemStore is the health-system view over the shared state.
type HealthSystemStore struct{ s *Store }

func (v *HealthSystemStore) matching(f query.Filter) []models.HealthSystem {
	p := compile(f, models.CollectionHealthSystems)
	out := make([]models.HealthSystem, 0, len(v.s.healthSystems))
	for _, h := range v.s.healthSystems {
		if p.matches(h) {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (v *HealthSystemStore) Count(ctx context.Context, f query.Filter) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return len(v.matching(f)), nil
}

func (v *HealthSystemStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.HealthSystem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	matched := v.matching(f)
	lo, hi, ok := pageBounds(from, to, len(matched))
	if !ok {
		return []models.HealthSystem{}, nil
	}
	return append([]models.HealthSystem(nil), matched[lo:hi+1]...), nil
}

func (v *HealthSystemStore) Get(ctx context.Context, id uuid.UUID) (models.HealthSystem, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	h, ok := v.s.healthSystems[id]
	if !ok {
		return models.HealthSystem{}, sentinel.ErrNotFound
	}
	return h, nil
}

func (v *HealthSystemStore) Create(ctx context.Context, h models.HealthSystem) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.healthSystems[h.ID]; exists {
		return sentinel.ErrConflict
	}
	v.s.healthSystems[h.ID] = h
	return nil
}

func (v *HealthSystemStore) Update(ctx context.Context, h models.HealthSystem) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.healthSystems[h.ID]; !exists {
		return sentinel.ErrNotFound
	}
	v.s.healthSystems[h.ID] = h
	return nil
}

func (v *HealthSystemStore) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.healthSystems, id)
	// Soft reference: clear dangling attendee pointers.
	for aid, a := range v.s.attendees {
		if a.HealthSystemID != nil && *a.HealthSystemID == id {
			a.HealthSystemID = nil
			v.s.attendees[aid] = a
		}
	}
	return nil
}

// ConferenceStore is the conference view over the shared state.
type ConferenceStore struct{ s *Store }

func (v *ConferenceStore) matching(f query.Filter) []models.Conference {
	p := compile(f, models.CollectionConferences)
	out := make([]models.Conference, 0, len(v.s.conferences))
	for _, c := range v.s.conferences {
		if p.matches(c) {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func (v *ConferenceStore) Count(ctx context.Context, f query.Filter) (int, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return len(v.matching(f)), nil
}

func (v *ConferenceStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.Conference, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	matched := v.matching(f)
	lo, hi, ok := pageBounds(from, to, len(matched))
	if !ok {
		return []models.Conference{}, nil
	}
	return append([]models.Conference(nil), matched[lo:hi+1]...), nil
}

func (v *ConferenceStore) Get(ctx context.Context, id uuid.UUID) (models.Conference, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	c, ok := v.s.conferences[id]
	if !ok {
		return models.Conference{}, sentinel.ErrNotFound
	}
	return c, nil
}

func (v *ConferenceStore) Create(ctx context.Context, c models.Conference) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.conferences[c.ID]; exists {
		return sentinel.ErrConflict
	}
	v.s.conferences[c.ID] = c
	return nil
}

func (v *ConferenceStore) Update(ctx context.Context, c models.Conference) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.conferences[c.ID]; !exists {
		return sentinel.ErrNotFound
	}
	v.s.conferences[c.ID] = c
	return nil
}

func (v *ConferenceStore) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.conferences, id)
	delete(v.s.confMembers, id)
	return nil
}

// ListStore is the list view over the shared state.
type ListStore struct{ s *Store }

func (v *ListStore) All(ctx context.Context) ([]models.List, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	out := make([]models.List, 0, len(v.s.lists))
	for id, l := range v.s.lists {
		l.MemberCount = len(v.s.listMembers[id])
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (v *ListStore) Get(ctx context.Context, id uuid.UUID) (models.List, error) {
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	l, ok := v.s.lists[id]
	if !ok {
		return models.List{}, sentinel.ErrNotFound
	}
	l.MemberCount = len(v.s.listMembers[id])
	return l, nil
}

func (v *ListStore) Create(ctx context.Context, l models.List) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, exists := v.s.lists[l.ID]; exists {
		return sentinel.ErrConflict
	}
	v.s.lists[l.ID] = l
	v.s.listMembers[l.ID] = make(map[uuid.UUID]struct{})
	return nil
}

func (v *ListStore) Delete(ctx context.Context, id uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	delete(v.s.lists, id)
	delete(v.s.listMembers, id)
	return nil
}

func (v *ListStore) AddMembers(ctx context.Context, listID uuid.UUID, attendeeIDs []uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.lists[listID]; !ok {
		return sentinel.ErrNotFound
	}
	for _, attendeeID := range attendeeIDs {
		if _, ok := v.s.attendees[attendeeID]; !ok {
			continue
		}
		// Duplicate pair: no-op success.
		v.s.listMembers[listID][attendeeID] = struct{}{}
	}
	return nil
}

func (v *ListStore) RemoveMember(ctx context.Context, listID, attendeeID uuid.UUID) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if _, ok := v.s.lists[listID]; !ok {
		return sentinel.ErrNotFound
	}
	delete(v.s.listMembers[listID], attendeeID)
	return nil
}
