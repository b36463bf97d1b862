package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/query"
	"confcrm/internal/crm/store"
	"confcrm/pkg/platform/sentinel"
)

type MemoryStoreSuite struct {
	suite.Suite
	mem    *Store
	stores store.Stores
	ctx    context.Context
}

func (s *MemoryStoreSuite) SetupTest() {
	s.mem = NewStore()
	s.stores = s.mem.Stores()
	s.ctx = context.Background()
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) newAttendee(first, last, email string) models.Attendee {
	return models.Attendee{
		ID:        uuid.New(),
		FirstName: first,
		LastName:  last,
		Email:     email,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

func (s *MemoryStoreSuite) seedAttendee(a models.Attendee) models.Attendee {
	s.Require().NoError(s.stores.Attendees.Create(s.ctx, a))
	return a
}

func clause(property string, op models.Operator, value string) models.FilterClause {
	return models.FilterClause{ID: "c", Property: property, Operator: op, Value: value}
}

func (s *MemoryStoreSuite) TestAttendeePagingAndSort() {
	s.seedAttendee(s.newAttendee("Ana", "Zimmer", "az@example.com"))
	s.seedAttendee(s.newAttendee("Bob", "Adams", "ba@example.com"))
	s.seedAttendee(s.newAttendee("Cara", "Miller", "cm@example.com"))

	s.Run("sorts by last name ascending", func() {
		page, err := s.stores.Attendees.Page(s.ctx, query.Filter{}, 0, 49)
		s.Require().NoError(err)
		s.Require().Len(page, 3)
		s.Equal("Adams", page[0].LastName)
		s.Equal("Miller", page[1].LastName)
		s.Equal("Zimmer", page[2].LastName)
	})

	s.Run("range is inclusive on both ends", func() {
		page, err := s.stores.Attendees.Page(s.ctx, query.Filter{}, 1, 2)
		s.Require().NoError(err)
		s.Require().Len(page, 2)
		s.Equal("Miller", page[0].LastName)
	})

	s.Run("out of range yields empty page", func() {
		page, err := s.stores.Attendees.Page(s.ctx, query.Filter{}, 10, 59)
		s.Require().NoError(err)
		s.Empty(page)
	})
}

func (s *MemoryStoreSuite) TestEmptinessOperators() {
	withPhone := s.newAttendee("Jane", "Doe", "jd@example.com")
	withPhone.Phone = "555-0100"
	s.seedAttendee(withPhone)
	noPhone := s.seedAttendee(s.newAttendee("John", "Roe", "jr@example.com"))

	s.Run("is_empty matches blank field", func() {
		f := query.Filter{Clauses: []models.FilterClause{clause("phone", models.OpIsEmpty, "")}}
		page, err := s.stores.Attendees.Page(s.ctx, f, 0, 49)
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal(noPhone.ID, page[0].ID)
	})

	s.Run("is_not_empty matches the complement", func() {
		f := query.Filter{Clauses: []models.FilterClause{clause("phone", models.OpIsNotEmpty, "")}}
		page, err := s.stores.Attendees.Page(s.ctx, f, 0, 49)
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal(withPhone.ID, page[0].ID)
	})
}

func (s *MemoryStoreSuite) TestCommaEqualsSetMembership() {
	a := s.seedAttendee(s.newAttendee("Jane", "Doe", "jd@example.com"))
	b := s.seedAttendee(s.newAttendee("John", "Roe", "jr@example.com"))
	s.seedAttendee(s.newAttendee("Cara", "Poe", "cp@example.com"))

	f := query.Filter{Clauses: []models.FilterClause{
		clause("id", models.OpEquals, a.ID.String()+","+b.ID.String()),
	}}
	count, err := s.stores.Attendees.Count(s.ctx, f)
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *MemoryStoreSuite) TestSearchScopedToCollectionFields() {
	s.seedAttendee(s.newAttendee("Jane", "Smith", "jane@example.com"))
	s.Require().NoError(s.stores.HealthSystems.Create(s.ctx, models.HealthSystem{
		ID:   uuid.New(),
		Name: "Jane Health Center",
		City: "Austin",
	}))

	s.Run("matches attendee first name case-insensitively", func() {
		count, err := s.stores.Attendees.Count(s.ctx, query.Filter{Search: "jane"})
		s.Require().NoError(err)
		s.Equal(1, count)
	})

	s.Run("health system search uses its own field set", func() {
		count, err := s.stores.HealthSystems.Count(s.ctx, query.Filter{Search: "austin"})
		s.Require().NoError(err)
		s.Equal(1, count)
	})
}

func (s *MemoryStoreSuite) TestConferenceSortNewestFirst() {
	old := models.Conference{ID: uuid.New(), Name: "Old", StartDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	recent := models.Conference{ID: uuid.New(), Name: "Recent", StartDate: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)}
	s.Require().NoError(s.stores.Conferences.Create(s.ctx, old))
	s.Require().NoError(s.stores.Conferences.Create(s.ctx, recent))

	page, err := s.stores.Conferences.Page(s.ctx, query.Filter{}, 0, 49)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("Recent", page[0].Name)
}

func (s *MemoryStoreSuite) TestListMembership() {
	a := s.seedAttendee(s.newAttendee("Jane", "Doe", "jd@example.com"))
	b := s.seedAttendee(s.newAttendee("John", "Roe", "jr@example.com"))
	list := models.List{ID: uuid.New(), Name: "Prospects"}
	s.Require().NoError(s.stores.Lists.Create(s.ctx, list))

	s.Run("duplicate pair insert is a no-op success", func() {
		s.Require().NoError(s.stores.Lists.AddMembers(s.ctx, list.ID, []uuid.UUID{a.ID, b.ID}))
		s.Require().NoError(s.stores.Lists.AddMembers(s.ctx, list.ID, []uuid.UUID{a.ID}))

		count, err := s.stores.Attendees.CountListMembers(s.ctx, list.ID)
		s.Require().NoError(err)
		s.Equal(2, count)
	})

	s.Run("membership count ignores filter clauses while page applies them", func() {
		f := query.Filter{Clauses: []models.FilterClause{clause("last_name", models.OpEquals, "Doe")}}
		count, err := s.stores.Attendees.CountListMembers(s.ctx, list.ID)
		s.Require().NoError(err)
		s.Equal(2, count)

		page, err := s.stores.Attendees.PageListMembers(s.ctx, list.ID, f, 0, 49)
		s.Require().NoError(err)
		s.Require().Len(page, 1)
		s.Equal(a.ID, page[0].ID)
	})

	s.Run("derived member count on list", func() {
		got, err := s.stores.Lists.Get(s.ctx, list.ID)
		s.Require().NoError(err)
		s.Equal(2, got.MemberCount)
	})

	s.Run("deleting an attendee removes memberships", func() {
		s.Require().NoError(s.stores.Attendees.Delete(s.ctx, b.ID))
		count, err := s.stores.Attendees.CountListMembers(s.ctx, list.ID)
		s.Require().NoError(err)
		s.Equal(1, count)
	})
}

func (s *MemoryStoreSuite) TestConferenceAssociation() {
	a := s.seedAttendee(s.newAttendee("Jane", "Doe", "jd@example.com"))
	conf := models.Conference{ID: uuid.New(), Name: "HIMSS", StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}
	s.Require().NoError(s.stores.Conferences.Create(s.ctx, conf))

	s.Require().NoError(s.stores.Attendees.AddConference(s.ctx, a.ID, conf.ID))
	s.Require().NoError(s.stores.Attendees.AddConference(s.ctx, a.ID, conf.ID), "duplicate pair must be a no-op")

	got, err := s.stores.Attendees.Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Conferences, 1)
	s.Equal(conf.ID, got.Conferences[0].ID)
}

func (s *MemoryStoreSuite) TestNotFoundSentinels() {
	_, err := s.stores.Attendees.Get(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.stores.Attendees.CountListMembers(s.ctx, uuid.New())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)

	err = s.stores.HealthSystems.Update(s.ctx, models.HealthSystem{ID: uuid.New()})
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}
