package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"

	"confcrm/internal/auth/handler"
	"confcrm/internal/auth/models"
	"confcrm/internal/auth/service"
	"confcrm/internal/auth/store/revocation"
	"confcrm/internal/auth/store/session"
	"confcrm/internal/auth/store/user"
	"confcrm/internal/auth/token"
	"confcrm/internal/crm/fetcher"
	crmstore "confcrm/internal/crm/store/memory"
)

type AuthHandlerSuite struct {
	suite.Suite
	router chi.Router
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerSuite))
}

func (s *AuthHandlerSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	users := user.NewMemory()
	sessions := session.NewMemory()
	revocations := revocation.NewMemory()
	tokens := token.NewService("test-signing-key", "confcrm", "confcrm-api")
	validator := token.NewValidator(tokens, revocations)
	authSvc := service.New(users, sessions, revocations, tokens, logger)

	checker := service.NewSessionChecker(sessions, nil)
	registry := fetcher.NewRegistry(func() *fetcher.Fetcher {
		return fetcher.New(crmstore.NewStore().Stores(), checker, fetcher.WithLogger(logger))
	})

	s.router = chi.NewRouter()
	handler.New(authSvc, registry, logger, nil, validator).Register(s.router)
}

func (s *AuthHandlerSuite) post(path string, body any, bearer string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *AuthHandlerSuite) register(email, password string) {
	rec := s.post("/auth/register", map[string]string{
		"email":    email,
		"name":     "Test Operator",
		"password": password,
	}, "")
	s.Require().Equal(http.StatusCreated, rec.Code)
}

func (s *AuthHandlerSuite) login(email, password string) (string, models.Session) {
	rec := s.post("/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Token   string         `json:"token"`
		Session models.Session `json:"session"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Require().NotEmpty(resp.Token)
	return resp.Token, resp.Session
}

func (s *AuthHandlerSuite) TestRegisterLoginIntrospect() {
	s.register("op@confcrm.test", "hunter22")
	tok, sess := s.login("op@confcrm.test", "hunter22")

	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Require().Equal(http.StatusOK, rec.Code)

	var resp struct {
		Session models.Session `json:"session"`
		User    models.User    `json:"user"`
	}
	s.Require().NoError(json.NewDecoder(rec.Body).Decode(&resp))
	s.Equal(sess.ID, resp.Session.ID)
	s.Equal("op@confcrm.test", resp.User.Email)
}

func (s *AuthHandlerSuite) TestLoginRejectsBadCredentials() {
	s.register("op@confcrm.test", "hunter22")

	rec := s.post("/auth/login", map[string]string{
		"email":    "op@confcrm.test",
		"password": "wrong",
	}, "")
	s.Equal(http.StatusUnauthorized, rec.Code)

	rec = s.post("/auth/login", map[string]string{
		"email":    "nobody@confcrm.test",
		"password": "hunter22",
	}, "")
	s.Equal(http.StatusUnauthorized, rec.Code, "unknown email looks identical to a bad password")
}

func (s *AuthHandlerSuite) TestDuplicateRegistrationConflicts() {
	s.register("op@confcrm.test", "hunter22")
	rec := s.post("/auth/register", map[string]string{
		"email":    "op@confcrm.test",
		"name":     "Someone Else",
		"password": "other",
	}, "")
	s.Equal(http.StatusConflict, rec.Code)
}

func (s *AuthHandlerSuite) TestLogoutRevokesToken() {
	s.register("op@confcrm.test", "hunter22")
	tok, _ := s.login("op@confcrm.test", "hunter22")

	rec := s.post("/auth/logout", map[string]string{}, tok)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	// The token dies with the session.
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec2 := httptest.NewRecorder()
	s.router.ServeHTTP(rec2, req)
	s.Equal(http.StatusUnauthorized, rec2.Code)
}

func (s *AuthHandlerSuite) TestUnauthenticatedIntrospection() {
	req := httptest.NewRequest(http.MethodGet, "/auth/session", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusUnauthorized, rec.Code)
}
