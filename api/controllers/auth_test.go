package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gastosapp/gastos-backend/internal/auth"
	"github.com/gastosapp/gastos-backend/internal/users"
	"github.com/gastosapp/gastos-backend/pkg/config"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
)

type stubAuthService struct {
	result    *auth.LoginResult
	err       error
	loggedOut []string
	validate  *auth.ValidateResponse
}

func (s *stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResult, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAuthService) Logout(ctx context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAuthService) Validate(ctx context.Context, token string) (*auth.ValidateResponse, error) {
	if s.validate != nil {
		return s.validate, nil
	}
	return &auth.ValidateResponse{Valid: false}, nil
}

func testSessionConfig() config.SessionConfig {
	return config.SessionConfig{CookieName: "session_token", TTL: time.Hour}
}

func findCookie(t *testing.T, resp *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %s not set", name)
	return nil
}

func TestAuthLoginSetsSessionCookie(t *testing.T) {
	svc := &stubAuthService{result: &auth.LoginResult{
		Token:     "issued-token",
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &users.UserDTO{ID: uuid.New(), Email: "ana@example.com"},
	}}
	handler := AuthLogin(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body %s", resp.Code, resp.Body.String())
	}
	cookie := findCookie(t, resp, "session_token")
	if cookie.Value != "issued-token" {
		t.Fatalf("unexpected cookie value %q", cookie.Value)
	}
	if !cookie.HttpOnly {
		t.Fatal("expected http-only cookie")
	}
	if cookie.MaxAge <= 0 {
		t.Fatalf("expected positive max-age, got %d", cookie.MaxAge)
	}
	if strings.Contains(resp.Body.String(), "issued-token") {
		t.Fatal("session token must never appear in the response body")
	}
}

func TestAuthLoginPassesThroughRejection(t *testing.T) {
	svc := &stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Credenciales inválidas")}
	handler := AuthLogin(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"ana@example.com","password":"wrong-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "Credenciales inválidas") {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestAuthLogoutClearsCookie(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "doomed"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 1 || svc.loggedOut[0] != "doomed" {
		t.Fatalf("expected session destroyed, got %v", svc.loggedOut)
	}
	cookie := findCookie(t, resp, "session_token")
	if cookie.Value != "" || cookie.MaxAge != -1 {
		t.Fatalf("expected cleared cookie, got value=%q max-age=%d", cookie.Value, cookie.MaxAge)
	}
}

func TestAuthLogoutWithoutCookieStillSucceeds(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthLogout(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if len(svc.loggedOut) != 0 {
		t.Fatalf("expected no destroy call, got %v", svc.loggedOut)
	}
}

func TestAuthValidateDeadSessionIs401(t *testing.T) {
	svc := &stubAuthService{}
	handler := AuthValidate(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/validate", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"valid":false`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}

func TestAuthValidateLiveSession(t *testing.T) {
	svc := &stubAuthService{validate: &auth.ValidateResponse{
		Valid: true,
		User:  &users.UserDTO{ID: uuid.New()},
	}}
	handler := AuthValidate(svc, testSessionConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/validate", nil)
	req.AddCookie(&http.Cookie{Name: "session_token", Value: "live"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"valid":true`) {
		t.Fatalf("unexpected body: %s", resp.Body.String())
	}
}
