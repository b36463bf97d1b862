package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"confcrm/internal/crm/fetcher"
	"confcrm/internal/crm/models"
	"confcrm/internal/crm/store/memory"
	"confcrm/internal/enrichment/handler"
	"confcrm/internal/enrichment/handler/mocks"
	"confcrm/internal/platform/middleware"
	dErrors "confcrm/pkg/domain-errors"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks confcrm/internal/enrichment/handler Service

type stubValidator struct{}

func (stubValidator) ValidateToken(tokenString string) (*middleware.TokenClaims, error) {
	return &middleware.TokenClaims{
		UserID:    uuid.NewString(),
		SessionID: uuid.NewString(),
	}, nil
}

type EnrichHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestEnrichHandlerSuite(t *testing.T) {
	suite.Run(t, new(EnrichHandlerSuite))
}

func (s *EnrichHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)

	registry := fetcher.NewRegistry(func() *fetcher.Fetcher {
		return fetcher.New(memory.NewStore().Stores(), activeSession{}, fetcher.WithLogger(logger))
	})

	s.router = chi.NewRouter()
	handler.New(s.service, registry, logger, nil, stubValidator{}).Register(s.router)
}

type activeSession struct{}

func (activeSession) ActiveSession(ctx context.Context) bool { return true }

func (s *EnrichHandlerSuite) post(path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Authorization", "Bearer any")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *EnrichHandlerSuite) TestEnrichAttendee() {
	id := uuid.New()
	enriched := models.Attendee{ID: id, LastName: "Doe", Phone: "555-0100"}
	s.service.EXPECT().EnrichAttendee(gomock.Any(), id).Return(enriched, nil)

	rec := s.post("/enrich/attendees/"+id.String(), nil)
	s.Require().Equal(http.StatusOK, rec.Code)

	var got models.Attendee
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&got))
	s.Equal("555-0100", got.Phone)
}

func (s *EnrichHandlerSuite) TestEnrichAttendeeProviderDown() {
	id := uuid.New()
	s.service.EXPECT().EnrichAttendee(gomock.Any(), id).
		Return(models.Attendee{}, dErrors.New(dErrors.CodeUnavailable, "contact lookup failed"))

	rec := s.post("/enrich/attendees/"+id.String(), nil)
	s.Equal(http.StatusServiceUnavailable, rec.Code)
}

func (s *EnrichHandlerSuite) TestEnrichAttendeeInvalidID() {
	s.service.EXPECT().EnrichAttendee(gomock.Any(), gomock.Any()).Times(0)

	rec := s.post("/enrich/attendees/not-a-uuid", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *EnrichHandlerSuite) TestAIColumn() {
	a, b := uuid.New(), uuid.New()
	s.service.EXPECT().
		RunAIColumn(gomock.Any(), "Summarize {{last_name}}", []uuid.UUID{a, b}).
		Return(map[uuid.UUID]string{a: "summary"}, nil)

	rec := s.post("/enrich/ai-column", map[string]any{
		"template":     "Summarize {{last_name}}",
		"attendee_ids": []uuid.UUID{a, b},
	})
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Results map[uuid.UUID]string `json:"results"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Len(resp.Results, 1)
	s.Equal("summary", resp.Results[a])
}

func (s *EnrichHandlerSuite) TestAIColumnValidation() {
	s.service.EXPECT().
		RunAIColumn(gomock.Any(), "", gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeBadRequest, "prompt template is required"))

	rec := s.post("/enrich/ai-column", map[string]any{"attendee_ids": []uuid.UUID{uuid.New()}})
	s.Equal(http.StatusBadRequest, rec.Code)
}
