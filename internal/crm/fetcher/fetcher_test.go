package fetcher

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/internal/crm/store"
	"confcrm/internal/crm/store/memory"
)

type fakeSession struct{ active bool }

func (f *fakeSession) ActiveSession(context.Context) bool { return f.active }

// fakeClock drives the debounce guard deterministically.
type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// countingAttendeeStore wraps an AttendeeStore and counts every call, so the
// unauthenticated path can assert zero store traffic.
type countingAttendeeStore struct {
	store.AttendeeStore
	calls *atomic.Int64
}

func (c countingAttendeeStore) Count(ctx context.Context, f query.Filter) (int, error) {
	c.calls.Add(1)
	return c.AttendeeStore.Count(ctx, f)
}

func (c countingAttendeeStore) Page(ctx context.Context, f query.Filter, from, to int) ([]models.Attendee, error) {
	c.calls.Add(1)
	return c.AttendeeStore.Page(ctx, f, from, to)
}

func (c countingAttendeeStore) CountListMembers(ctx context.Context, listID uuid.UUID) (int, error) {
	c.calls.Add(1)
	return c.AttendeeStore.CountListMembers(ctx, listID)
}

func (c countingAttendeeStore) PageListMembers(ctx context.Context, listID uuid.UUID, f query.Filter, from, to int) ([]models.Attendee, error) {
	c.calls.Add(1)
	return c.AttendeeStore.PageListMembers(ctx, listID, f, from, to)
}

// failingConferenceStore simulates a partial backend outage.
type failingConferenceStore struct {
	store.ConferenceStore
}

func (failingConferenceStore) Count(context.Context, query.Filter) (int, error) {
	return 0, errors.New("conference backend down")
}

type FetcherSuite struct {
	suite.Suite
	mem     *memory.Store
	stores  store.Stores
	session *fakeSession
	clock   *fakeClock
	ctx     context.Context
}

func TestFetcherSuite(t *testing.T) {
	suite.Run(t, new(FetcherSuite))
}

func (s *FetcherSuite) SetupTest() {
	s.mem = memory.NewStore()
	s.stores = s.mem.Stores()
	s.session = &fakeSession{active: true}
	s.clock = &fakeClock{now: time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)}
	s.ctx = context.Background()
}

func (s *FetcherSuite) newFetcher(opts ...Option) *Fetcher {
	base := []Option{WithClock(s.clock.Now)}
	return New(s.stores, s.session, append(base, opts...)...)
}

// fetch advances the clock past the debounce window first, so tests exercise
// merge semantics without tripping the guard.
func (s *FetcherSuite) fetch(f *Fetcher, opts Options) error {
	s.clock.Advance(time.Second)
	return f.FetchData(s.ctx, opts)
}

func (s *FetcherSuite) seedAttendees(n int) []models.Attendee {
	attendees := make([]models.Attendee, 0, n)
	for i := 0; i < n; i++ {
		a := models.Attendee{
			ID:        uuid.New(),
			FirstName: "First",
			LastName:  fmt.Sprintf("Last%03d", i),
			Email:     fmt.Sprintf("a%03d@example.com", i),
		}
		s.Require().NoError(s.stores.Attendees.Create(s.ctx, a))
		attendees = append(attendees, a)
	}
	return attendees
}

func (s *FetcherSuite) TestPageZeroReplaces() {
	s.seedAttendees(3)
	f := s.newFetcher()

	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees}))
	first := f.Snapshot()
	s.Require().Len(first.Attendees, 3)

	// A second page-0 fetch must not duplicate anything.
	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees}))
	second := f.Snapshot()
	s.Equal(first.Attendees, second.Attendees)
}

func (s *FetcherSuite) TestLaterPagesAppendAndDedupe() {
	s.seedAttendees(5)
	f := s.newFetcher()

	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, Page: 0, PageSize: 2}))
	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, Page: 1, PageSize: 2}))
	snap := f.Snapshot()
	s.Require().Len(snap.Attendees, 4)

	// Refetching page 1 appends the same rows; dedupe keeps first-seen.
	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, Page: 1, PageSize: 2}))
	again := f.Snapshot()
	s.Equal(snap.Attendees, again.Attendees)

	seen := map[uuid.UUID]int{}
	for _, a := range again.Attendees {
		seen[a.ID]++
	}
	for id, n := range seen {
		s.Equalf(1, n, "attendee %s held more than once", id)
	}
}

func (s *FetcherSuite) TestHasMoreTracksHeldVersusTotal() {
	s.seedAttendees(120)
	f := s.newFetcher()

	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, PageSize: 50}))
	snap := f.Snapshot()
	s.Equal(120, snap.Totals[models.CollectionAttendees])
	s.Len(snap.Attendees, 50)
	s.True(snap.HasMore[models.CollectionAttendees])

	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, Page: 1, PageSize: 50}))
	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees, Page: 2, PageSize: 50}))
	snap = f.Snapshot()
	s.Len(snap.Attendees, 120)
	s.False(snap.HasMore[models.CollectionAttendees])
	s.False(snap.HasMoreAny())
}

func (s *FetcherSuite) TestFilterSemanticsFlowThrough() {
	attendees := s.seedAttendees(3)

	withPhone := attendees[0]
	withPhone.Phone = "555-0100"
	s.Require().NoError(s.stores.Attendees.Update(s.ctx, withPhone))

	f := s.newFetcher()

	s.Run("comma equals becomes set membership", func() {
		opts := Options{
			Collection: models.CollectionAttendees,
			Clauses: []models.FilterClause{{
				ID:       "c1",
				Property: "id",
				Operator: models.OpEquals,
				Value:    attendees[0].ID.String() + "," + attendees[1].ID.String(),
			}},
		}
		s.Require().NoError(s.fetch(f, opts))
		snap := f.Snapshot()
		s.Len(snap.Attendees, 2)
		s.Equal(2, snap.Totals[models.CollectionAttendees])
	})

	s.Run("is_empty and is_not_empty partition the set", func() {
		opts := Options{
			Collection: models.CollectionAttendees,
			Clauses:    []models.FilterClause{{ID: "c1", Property: "phone", Operator: models.OpIsEmpty}},
		}
		s.Require().NoError(s.fetch(f, opts))
		s.Equal(2, f.Snapshot().Totals[models.CollectionAttendees])

		opts.Clauses[0].Operator = models.OpIsNotEmpty
		s.Require().NoError(s.fetch(f, opts))
		s.Equal(1, f.Snapshot().Totals[models.CollectionAttendees])
	})
}

func (s *FetcherSuite) TestSearchScopedPerCollection() {
	a := models.Attendee{ID: uuid.New(), FirstName: "Jane", LastName: "Smith", Email: "jane@example.com"}
	s.Require().NoError(s.stores.Attendees.Create(s.ctx, a))
	s.Require().NoError(s.stores.HealthSystems.Create(s.ctx, models.HealthSystem{
		ID: uuid.New(), Name: "Jane Health Center", City: "Austin",
	}))
	s.Require().NoError(s.stores.Conferences.Create(s.ctx, models.Conference{
		ID: uuid.New(), Name: "HIMSS", StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Location: "Austin",
	}))

	f := s.newFetcher()
	s.Require().NoError(s.fetch(f, Options{Search: "austin"}))
	snap := f.Snapshot()

	// "austin" hits health system city and conference location but no
	// attendee search field.
	s.Equal(0, snap.Totals[models.CollectionAttendees])
	s.Equal(1, snap.Totals[models.CollectionHealthSystems])
	s.Equal(1, snap.Totals[models.CollectionConferences])
}

func (s *FetcherSuite) TestListScopedCountIgnoresClauses() {
	attendees := s.seedAttendees(3)
	list := models.List{ID: uuid.New(), Name: "Prospects"}
	s.Require().NoError(s.stores.Lists.Create(s.ctx, list))
	s.Require().NoError(s.stores.Lists.AddMembers(s.ctx, list.ID, []uuid.UUID{attendees[0].ID, attendees[1].ID}))

	f := s.newFetcher()
	opts := Options{
		Collection: models.CollectionAttendees,
		ListID:     &list.ID,
		Clauses: []models.FilterClause{{
			ID: "c1", Property: "last_name", Operator: models.OpEquals, Value: attendees[0].LastName,
		}},
	}
	s.Require().NoError(s.fetch(f, opts))
	snap := f.Snapshot()

	// Count reflects raw membership; the page applies the clause.
	s.Equal(2, snap.Totals[models.CollectionAttendees])
	s.Require().Len(snap.Attendees, 1)
	s.Equal(attendees[0].ID, snap.Attendees[0].ID)
}

func (s *FetcherSuite) TestUnauthenticatedClearsStateWithoutStoreCalls() {
	s.seedAttendees(2)
	var calls atomic.Int64
	counted := s.stores
	counted.Attendees = countingAttendeeStore{AttendeeStore: s.stores.Attendees, calls: &calls}

	f := New(counted, s.session, WithClock(s.clock.Now))
	s.Require().NoError(s.fetch(f, Options{}))
	s.Require().NotEmpty(f.Snapshot().Attendees)
	callsAfterFetch := calls.Load()

	s.session.active = false
	err := s.fetch(f, Options{})
	s.Require().Error(err)

	snap := f.Snapshot()
	s.Empty(snap.Attendees)
	s.Empty(snap.HealthSystems)
	s.Empty(snap.Conferences)
	s.Equal(ErrAuthRequired, snap.Err)
	s.False(snap.Loading)
	s.Equal(callsAfterFetch, calls.Load(), "no store call may be issued without a session")
}

func (s *FetcherSuite) TestDebounceSuppressesRapidCalls() {
	s.seedAttendees(1)
	f := s.newFetcher(WithDebounce(300 * time.Millisecond))

	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees}))

	// Within the window: suppressed, state untouched.
	s.clock.Advance(100 * time.Millisecond)
	s.seedAttendees(1)
	s.Require().NoError(f.FetchData(s.ctx, Options{Collection: models.CollectionAttendees}))
	s.Len(f.Snapshot().Attendees, 1)

	// Past the window: accepted.
	s.clock.Advance(301 * time.Millisecond)
	s.Require().NoError(f.FetchData(s.ctx, Options{Collection: models.CollectionAttendees}))
	s.Len(f.Snapshot().Attendees, 2)
}

func (s *FetcherSuite) TestPartialFailureKeepsHeldData() {
	s.seedAttendees(2)
	f := s.newFetcher()
	s.Require().NoError(s.fetch(f, Options{}))
	held := f.Snapshot()
	s.Require().Len(held.Attendees, 2)

	broken := s.stores
	broken.Conferences = failingConferenceStore{ConferenceStore: s.stores.Conferences}
	f2 := New(broken, s.session, WithClock(s.clock.Now))
	s.clock.Advance(time.Second)
	s.Require().NoError(f2.FetchData(s.ctx, Options{Collection: models.CollectionAttendees}))

	s.clock.Advance(time.Second)
	err := f2.FetchData(s.ctx, Options{})
	s.Require().Error(err)

	snap := f2.Snapshot()
	s.NotEmpty(snap.Err)
	s.False(snap.Loading)
	s.Len(snap.Attendees, 2, "held records survive a partial failure")
}

func (s *FetcherSuite) TestSettersReconcileState() {
	attendees := s.seedAttendees(3)
	f := s.newFetcher()
	s.Require().NoError(s.fetch(f, Options{Collection: models.CollectionAttendees}))

	f.SetAttendees([]models.Attendee{attendees[0]})
	snap := f.Snapshot()
	s.Require().Len(snap.Attendees, 1)
	s.True(snap.HasMore[models.CollectionAttendees], "fewer held than total flips has-more back on")
}

func TestRegistryScopesFetchersPerSession(t *testing.T) {
	mem := memory.NewStore()
	session := &fakeSession{active: true}
	reg := NewRegistry(func() *Fetcher { return New(mem.Stores(), session) })

	s1, s2 := uuid.New(), uuid.New()
	f1 := reg.Get(s1)
	if reg.Get(s1) != f1 {
		t.Fatal("same session must reuse its fetcher")
	}
	if reg.Get(s2) == f1 {
		t.Fatal("distinct sessions must not share state")
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 fetchers, got %d", reg.Len())
	}
	reg.Drop(s1)
	if reg.Len() != 1 {
		t.Fatalf("expected 1 fetcher after drop, got %d", reg.Len())
	}
}
