package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/apperrors"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/auth"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/models"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/services"
	"github.com/AkhilGurrapu/DataSarva-snow-sub000/pkg/warehouse"
)

// stubConnectionService scripts responses and records calls.
type stubConnectionService struct {
	connections  []*models.Connection
	listErr      error
	activated    []int64
	activateErr  error
	deleted      []int64
	testErr      error
	testedInputs []services.ConnectionInput
}

func (s *stubConnectionService) List(ctx context.Context, userID uuid.UUID) ([]*models.Connection, error) {
	return s.connections, s.listErr
}

func (s *stubConnectionService) Create(ctx context.Context, userID uuid.UUID, input services.ConnectionInput) (*models.Connection, error) {
	conn := &models.Connection{ID: 1, Name: input.Name, Account: input.Account}
	return conn, nil
}

func (s *stubConnectionService) Update(ctx context.Context, userID uuid.UUID, id int64, input services.ConnectionInput) (*models.Connection, error) {
	return &models.Connection{ID: id, Name: input.Name}, nil
}

func (s *stubConnectionService) Activate(ctx context.Context, userID uuid.UUID, id int64) (*models.Connection, error) {
	if s.activateErr != nil {
		return nil, s.activateErr
	}
	s.activated = append(s.activated, id)
	return &models.Connection{ID: id, IsActive: true}, nil
}

func (s *stubConnectionService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func (s *stubConnectionService) Test(ctx context.Context, input services.ConnectionInput) error {
	s.testedInputs = append(s.testedInputs, input)
	return s.testErr
}

func (s *stubConnectionService) OpenActive(ctx context.Context, userID uuid.UUID) (warehouse.Conn, *models.Connection, error) {
	return nil, nil, apperrors.ErrNoActiveConnection
}

var _ services.ConnectionService = (*stubConnectionService)(nil)

func newConnectionsMux(t *testing.T, svc services.ConnectionService) (*http.ServeMux, *auth.SessionManager) {
	t.Helper()
	sessions, err := auth.NewSessionManager(auth.SessionConfig{Secret: "test-secret"})
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}

	mux := http.NewServeMux()
	NewConnectionsHandler(svc, zap.NewNop()).RegisterRoutes(mux, auth.NewMiddleware(sessions))
	return mux, sessions
}

func authedRequest(t *testing.T, sessions *auth.SessionManager, method, path string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	// Issue a session cookie onto a throwaway response, then replay it.
	rec := httptest.NewRecorder()
	seed := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := sessions.Issue(rec, seed, uuid.New()); err != nil {
		t.Fatalf("failed to issue session: %v", err)
	}

	req := httptest.NewRequest(method, path, &buf)
	for _, cookie := range rec.Result().Cookies() {
		req.AddCookie(cookie)
	}
	return req
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ApiResponse {
	t.Helper()
	var resp ApiResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestListRequiresAuth(t *testing.T) {
	mux, _ := newConnectionsMux(t, &stubConnectionService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/connections", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestListReturnsConnections(t *testing.T) {
	svc := &stubConnectionService{connections: []*models.Connection{
		{ID: 1, Name: "prod", IsActive: true},
		{ID: 2, Name: "staging"},
	}}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodGet, "/api/connections", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success envelope")
	}

	raw, _ := json.Marshal(resp.Data)
	var connections []models.Connection
	if err := json.Unmarshal(raw, &connections); err != nil {
		t.Fatalf("failed to decode connections: %v", err)
	}
	if len(connections) != 2 || !connections[0].IsActive {
		t.Errorf("unexpected connections %v", connections)
	}
}

func TestUpdateWithIsActiveDispatchesActivate(t *testing.T) {
	svc := &stubConnectionService{}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodPut, "/api/connections/5",
		map[string]any{"isActive": true}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(svc.activated) != 1 || svc.activated[0] != 5 {
		t.Errorf("expected Activate(5), got %v", svc.activated)
	}
}

func TestActivateUnknownConnectionReturns404(t *testing.T) {
	svc := &stubConnectionService{activateErr: apperrors.ErrNotFound}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodPut, "/api/connections/99",
		map[string]any{"isActive": true}))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error != "not_found" {
		t.Errorf("expected not_found code, got %q", resp.Error)
	}
}

func TestUpdateWithoutIsActiveUpdatesSettings(t *testing.T) {
	svc := &stubConnectionService{}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodPut, "/api/connections/5",
		map[string]any{"name": "renamed"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.activated) != 0 {
		t.Error("expected no activation for a settings update")
	}
}

func TestUpdateWithInvalidIDReturns400(t *testing.T) {
	mux, sessions := newConnectionsMux(t, &stubConnectionService{})

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodPut, "/api/connections/abc",
		map[string]any{"isActive": true}))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteConnection(t *testing.T) {
	svc := &stubConnectionService{}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodDelete, "/api/connections/3", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(svc.deleted) != 1 || svc.deleted[0] != 3 {
		t.Errorf("expected Delete(3), got %v", svc.deleted)
	}
}

func TestConnectionTestFailureIsStructured(t *testing.T) {
	svc := &stubConnectionService{testErr: apperrors.ErrUnavailable}
	mux, sessions := newConnectionsMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authedRequest(t, sessions, http.MethodPost, "/api/connections/test",
		map[string]any{"account": "xy12345", "username": "alice", "password": "pw"}))

	// A failed credential test is still a 200; the result is in the body.
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	raw, _ := json.Marshal(resp.Data)
	var result TestConnectionResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("failed to decode test result: %v", err)
	}
	if result.Success {
		t.Error("expected failed test result")
	}
	if result.Message == "" {
		t.Error("expected failure message")
	}
}
