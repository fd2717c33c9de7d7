package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
)

const testCookieName = "session_token"

type stubResolver struct {
	sessions map[string]*models.Session
	err      error
}

func (s *stubResolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	sess, ok := s.sessions[token]
	if !ok {
		return nil, session.ErrNoSession
	}
	return sess, nil
}

func sessionFor(userID uuid.UUID, isAdmin bool) *models.Session {
	return &models.Session{
		ID:     uuid.New(),
		UserID: userID,
		User:   models.User{ID: userID, IsActive: true, IsAdmin: isAdmin},
	}
}

func TestSessionAuthRejectsMissingCookie(t *testing.T) {
	store := &stubResolver{sessions: map[string]*models.Session{}}
	handler := SessionAuth(store, testCookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSessionAuthRejectsUnknownToken(t *testing.T) {
	store := &stubResolver{sessions: map[string]*models.Session{}}
	handler := SessionAuth(store, testCookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "stale"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestSessionAuthSeedsContext(t *testing.T) {
	userID := uuid.New()
	store := &stubResolver{sessions: map[string]*models.Session{
		"live-token": sessionFor(userID, true),
	}}

	var captured struct {
		userID  uuid.UUID
		isAdmin bool
		token   string
	}
	handler := SessionAuth(store, testCookieName, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.userID = UserIDFromContext(r.Context())
		captured.isAdmin = IsAdminFromContext(r.Context())
		captured.token = SessionTokenFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "live-token"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured.userID != userID {
		t.Fatalf("expected user %s got %s", userID, captured.userID)
	}
	if !captured.isAdmin {
		t.Fatal("expected admin flag in context")
	}
	if captured.token != "live-token" {
		t.Fatalf("expected session token in context, got %q", captured.token)
	}
}

func TestRequireAdminBlocksRegularUsers(t *testing.T) {
	handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = req.WithContext(WithUser(req.Context(), uuid.New(), false))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestRequireAdminAllowsAdmins(t *testing.T) {
	handler := RequireAdmin(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	req = req.WithContext(WithUser(req.Context(), uuid.New(), true))
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
