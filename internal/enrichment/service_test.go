package enrichment_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confcrm/internal/crm/models"
	"confcrm/internal/crm/store"
	"confcrm/internal/crm/store/memory"
	"confcrm/internal/enrichment"
	"confcrm/internal/enrichment/mocks"
	dErrors "confcrm/pkg/domain-errors"
	"confcrm/pkg/requestcontext"
)

type EnrichmentSuite struct {
	suite.Suite
	ctrl     *gomock.Controller
	contacts *mocks.MockContactClient
	orgs     *mocks.MockOrganizationClient
	ai       *mocks.MockAIClient
	stores   store.Stores
	svc      *enrichment.Service
	ctx      context.Context
}

func TestEnrichmentSuite(t *testing.T) {
	suite.Run(t, new(EnrichmentSuite))
}

func (s *EnrichmentSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.contacts = mocks.NewMockContactClient(s.ctrl)
	s.orgs = mocks.NewMockOrganizationClient(s.ctrl)
	s.ai = mocks.NewMockAIClient(s.ctrl)
	s.stores = memory.NewStore().Stores()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.svc = enrichment.New(s.contacts, s.orgs, s.ai, s.stores.Attendees, s.stores.HealthSystems, logger)
	s.ctx = requestcontext.WithTime(context.Background(), time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC))
}

func (s *EnrichmentSuite) seedAttendee(a models.Attendee) models.Attendee {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	s.Require().NoError(s.stores.Attendees.Create(s.ctx, a))
	return a
}

func (s *EnrichmentSuite) TestEnrichAttendeeFillsBlanksOnly() {
	a := s.seedAttendee(models.Attendee{
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@mercy.org",
	})

	s.contacts.EXPECT().
		LookupContact(gomock.Any(), gomock.Any()).
		Return(enrichment.ContactData{
			Email:       "other@provider.test",
			Phone:       "555-0100",
			LinkedInURL: "https://linkedin.com/in/janedoe",
			Title:       "CIO",
		}, nil)

	enriched, err := s.svc.EnrichAttendee(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("jane@mercy.org", enriched.Email, "existing data wins")
	s.Equal("555-0100", enriched.Phone)
	s.Equal("CIO", enriched.Title)

	persisted, err := s.stores.Attendees.Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("555-0100", persisted.Phone)
}

func (s *EnrichmentSuite) TestEnrichAttendeeProviderFailure() {
	a := s.seedAttendee(models.Attendee{LastName: "Doe"})

	s.contacts.EXPECT().
		LookupContact(gomock.Any(), gomock.Any()).
		Return(enrichment.ContactData{}, errors.New("provider timeout"))

	_, err := s.svc.EnrichAttendee(s.ctx, a.ID)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
}

func (s *EnrichmentSuite) TestEnrichAttendeeUnknownID() {
	_, err := s.svc.EnrichAttendee(s.ctx, uuid.New())
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *EnrichmentSuite) TestEnrichHealthSystem() {
	hs := models.HealthSystem{ID: uuid.New(), Name: "Mercy General", City: "Austin"}
	s.Require().NoError(s.stores.HealthSystems.Create(s.ctx, hs))

	s.orgs.EXPECT().
		LookupOrganization(gomock.Any(), gomock.Any()).
		Return(enrichment.OrganizationData{
			ExternalID: "HS-001",
			City:       "Dallas",
			Website:    "https://mercy.example.org",
		}, nil)

	enriched, err := s.svc.EnrichHealthSystem(s.ctx, hs.ID)
	s.Require().NoError(err)
	s.Equal("HS-001", enriched.ExternalID)
	s.Equal("Austin", enriched.City, "existing data wins")
	s.Equal("https://mercy.example.org", enriched.Website)
}

func (s *EnrichmentSuite) TestRunAIColumn() {
	a := s.seedAttendee(models.Attendee{FirstName: "Jane", LastName: "Doe", Title: "CIO"})
	b := s.seedAttendee(models.Attendee{FirstName: "John", LastName: "Roe"})

	s.ai.EXPECT().
		Complete(gomock.Any(), "Summarize Doe").
		Return("summary for Doe", nil)
	s.ai.EXPECT().
		Complete(gomock.Any(), "Summarize Roe").
		Return("", errors.New("rate limited"))

	results, err := s.svc.RunAIColumn(s.ctx, "Summarize {{last_name}}", []uuid.UUID{a.ID, b.ID, uuid.New()})
	s.Require().NoError(err)
	s.Require().Len(results, 1, "failed and missing rows are skipped")
	s.Equal("summary for Doe", results[a.ID])
}

func (s *EnrichmentSuite) TestRunAIColumnValidation() {
	_, err := s.svc.RunAIColumn(s.ctx, "", []uuid.UUID{uuid.New()})
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))

	_, err = s.svc.RunAIColumn(s.ctx, "prompt", nil)
	s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
}
