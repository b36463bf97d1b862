package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"confcrm/internal/crm/fetcher"
	"confcrm/internal/crm/handler"
	"confcrm/internal/crm/models"
	"confcrm/internal/crm/service"
	"confcrm/internal/crm/store/memory"
	"confcrm/internal/platform/middleware"
	"confcrm/pkg/testutil"
)

// staticValidator accepts one fixed token and rejects everything else.
type staticValidator struct {
	token     string
	userID    uuid.UUID
	sessionID uuid.UUID
}

func (v staticValidator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	if tokenString != v.token {
		return nil, errors.New("unknown token")
	}
	return &middleware.TokenClaims{
		UserID:    v.userID.String(),
		SessionID: v.sessionID.String(),
	}, nil
}

type alwaysActive struct{}

func (alwaysActive) ActiveSession(ctx context.Context) bool { return true }

type CRMHandlerSuite struct {
	suite.Suite
	router    chi.Router
	svc       *service.Service
	store     *memory.Store
	validator staticValidator
}

func TestCRMHandlerSuite(t *testing.T) {
	suite.Run(t, new(CRMHandlerSuite))
}

func (s *CRMHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.store = memory.NewStore()
	stores := s.store.Stores()
	s.svc = service.New(stores, logger)
	s.validator = staticValidator{
		token:     "valid-token",
		userID:    uuid.New(),
		sessionID: uuid.New(),
	}
	registry := fetcher.NewRegistry(func() *fetcher.Fetcher {
		return fetcher.New(stores, alwaysActive{},
			fetcher.WithDebounce(0),
			fetcher.WithLogger(logger))
	})

	s.router = chi.NewRouter()
	handler.New(s.svc, registry, logger, nil, s.validator).Register(s.router)
}

func (s *CRMHandlerSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	req := testutil.NewJSONRequest(s.T(), method, path, body)
	req.Header.Set("Authorization", "Bearer "+s.validator.token)
	return testutil.DoRequest(s.router, req)
}

func (s *CRMHandlerSuite) decode(rec *httptest.ResponseRecorder, dst any) {
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(dst))
}

func (s *CRMHandlerSuite) TestRequiresAuth() {
	req := httptest.NewRequest(http.MethodGet, "/crm/lists", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/crm/lists", nil)
	req.Header.Set("Authorization", "Bearer wrong-token")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}

func (s *CRMHandlerSuite) TestAttendeeCRUD() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{
		FirstName: "Jane", LastName: "Doe", Email: "jane@mercy.org",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	var created models.Attendee
	s.decode(rec, &created)
	s.NotEqual(uuid.Nil, created.ID)

	rec = s.do(http.MethodGet, "/crm/attendees/"+created.ID.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	created.Title = "CIO"
	rec = s.do(http.MethodPut, "/crm/attendees/"+created.ID.String(), created)
	s.Require().Equal(http.StatusOK, rec.Code)
	var updated models.Attendee
	s.decode(rec, &updated)
	s.Equal("CIO", updated.Title)

	rec = s.do(http.MethodPost, "/crm/attendees/delete", map[string]any{
		"ids": []uuid.UUID{created.ID},
	})
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/crm/attendees/"+created.ID.String(), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *CRMHandlerSuite) TestCreateAttendeeValidation() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{Phone: "555-0100"})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/crm/attendees", nil)
	s.Equal(http.StatusBadRequest, rec.Code, "empty body is rejected")
}

func (s *CRMHandlerSuite) TestFetchReturnsHeldState() {
	for i := 0; i < 3; i++ {
		rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{
			LastName: fmt.Sprintf("Attendee%d", i),
		})
		s.Require().Equal(http.StatusCreated, rec.Code)
	}

	rec := s.do(http.MethodPost, "/crm/fetch", map[string]any{"page": 0})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Attendees []models.Attendee          `json:"attendees"`
		Totals    map[models.Collection]int  `json:"totals"`
		HasMore   map[models.Collection]bool `json:"has_more"`
	}
	s.decode(rec, &resp)
	s.Len(resp.Attendees, 3)
	s.Equal(3, resp.Totals[models.CollectionAttendees])
	s.False(resp.HasMore[models.CollectionAttendees])
}

func (s *CRMHandlerSuite) TestFetchRejectsUnknownCollection() {
	rec := s.do(http.MethodPost, "/crm/fetch", map[string]any{"collection": "invoices"})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *CRMHandlerSuite) TestFetchAppliesFilterClauses() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{LastName: "Doe", Title: "CIO"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	rec = s.do(http.MethodPost, "/crm/attendees", models.Attendee{LastName: "Roe"})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/crm/fetch", map[string]any{
		"collection": "attendees",
		"clauses": []models.FilterClause{
			{ID: "1", Property: "title", Operator: models.OpIsNotEmpty},
		},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Attendees []models.Attendee `json:"attendees"`
	}
	s.decode(rec, &resp)
	s.Require().Len(resp.Attendees, 1)
	s.Equal("Doe", resp.Attendees[0].LastName)
}

func (s *CRMHandlerSuite) TestUpdateReconcilesFetcherState() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{LastName: "Doe"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var created models.Attendee
	s.decode(rec, &created)

	rec = s.do(http.MethodPost, "/crm/fetch", map[string]any{"collection": "attendees"})
	s.Require().Equal(http.StatusOK, rec.Code)

	created.Title = "CTO"
	rec = s.do(http.MethodPut, "/crm/attendees/"+created.ID.String(), created)
	s.Require().Equal(http.StatusOK, rec.Code)

	// A delete reconciles too: the next fetch-free snapshot must not contain
	// the removed record.
	rec = s.do(http.MethodPost, "/crm/attendees/delete", map[string]any{
		"ids": []uuid.UUID{created.ID},
	})
	s.Require().Equal(http.StatusNoContent, rec.Code)
}

func (s *CRMHandlerSuite) TestConferenceEndBeforeStart() {
	rec := s.do(http.MethodPost, "/crm/conferences", map[string]any{
		"name":       "HIMSS",
		"start_date": "2026-03-03T00:00:00Z",
		"end_date":   "2026-03-01T00:00:00Z",
	})
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *CRMHandlerSuite) TestListLifecycle() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{LastName: "Doe"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var a models.Attendee
	s.decode(rec, &a)

	rec = s.do(http.MethodPost, "/crm/lists", map[string]string{"name": "VIPs"})
	s.Require().Equal(http.StatusCreated, rec.Code)
	var list models.List
	s.decode(rec, &list)

	rec = s.do(http.MethodPost, "/crm/lists/"+list.ID.String()+"/members", map[string]any{
		"attendee_ids": []uuid.UUID{a.ID},
	})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.decode(rec, &list)
	s.Equal(1, list.MemberCount)

	rec = s.do(http.MethodDelete, "/crm/lists/"+list.ID.String()+"/members/"+a.ID.String(), nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodDelete, "/crm/lists/"+list.ID.String(), nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	rec = s.do(http.MethodGet, "/crm/lists/"+list.ID.String(), nil)
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *CRMHandlerSuite) TestExportCSV() {
	rec := s.do(http.MethodPost, "/crm/attendees", models.Attendee{
		FirstName: "Jane", LastName: "Doe", Email: "jane@mercy.org",
	})
	s.Require().Equal(http.StatusCreated, rec.Code)

	rec = s.do(http.MethodPost, "/crm/attendees/export", map[string]any{})
	s.Require().Equal(http.StatusOK, rec.Code)
	s.Equal("text/csv", rec.Header().Get("Content-Type"))
	s.Contains(rec.Body.String(), "jane@mercy.org")
}

func (s *CRMHandlerSuite) TestInvalidPathID() {
	rec := s.do(http.MethodGet, "/crm/attendees/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}
