package auth

import (
	"context"
	"testing"
	"time"

	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type stubUserRepo struct {
	user *models.User
}

func (r stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubSessionStore struct {
	sessions  map[string]*models.Session
	destroyed []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: map[string]*models.Session{}}
}

func (s *stubSessionStore) Create(_ context.Context, userID uuid.UUID) (*models.Session, error) {
	token, err := session.NewToken()
	if err != nil {
		return nil, err
	}
	sess := &models.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    userID,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	s.sessions[token] = sess
	return sess, nil
}

func (s *stubSessionStore) Resolve(_ context.Context, token string) (*models.Session, error) {
	sess, ok := s.sessions[token]
	if !ok {
		return nil, session.ErrNoSession
	}
	return sess, nil
}

func (s *stubSessionStore) Destroy(_ context.Context, token string) error {
	s.destroyed = append(s.destroyed, token)
	delete(s.sessions, token)
	return nil
}

func buildTestService(t *testing.T, user *models.User) (Service, *stubSessionStore) {
	t.Helper()
	store := newStubSessionStore()
	svc, err := NewService(ServiceParams{
		UserRepo:     stubUserRepo{user: user},
		SessionStore: store,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc, store
}

func mustHashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.HashPassword(password, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	return &models.User{
		ID:           uuid.New(),
		Email:        "casa@example.com",
		PasswordHash: mustHashPassword(t, password),
		IsActive:     true,
	}
}

func TestLoginSuccess(t *testing.T) {
	user := activeUser(t, "hunter2hunter2")
	svc, store := buildTestService(t, user)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    "Casa@Example.com",
		Password: "hunter2hunter2",
	})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected a session token")
	}
	if result.User == nil || result.User.ID != user.ID {
		t.Fatalf("expected user in login result")
	}
	if _, ok := store.sessions[result.Token]; !ok {
		t.Fatalf("session was not persisted")
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	user := activeUser(t, "hunter2hunter2")
	disabled := activeUser(t, "hunter2hunter2")
	disabled.IsActive = false
	passwordless := activeUser(t, "hunter2hunter2")
	passwordless.PasswordHash = ""

	cases := []struct {
		name     string
		user     *models.User
		email    string
		password string
	}{
		{"unknown email", user, "nobody@example.com", "hunter2hunter2"},
		{"wrong password", user, user.Email, "not-the-password"},
		{"disabled account", disabled, disabled.Email, "hunter2hunter2"},
		{"no stored password", passwordless, passwordless.Email, "hunter2hunter2"},
		{"empty password", user, user.Email, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, store := buildTestService(t, tc.user)
			_, err := svc.Login(context.Background(), LoginRequest{
				Email:    tc.email,
				Password: tc.password,
			})
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
				t.Fatalf("expected unauthorized, got %v", err)
			}
			if typed.Message() != invalidCredentialsMessage {
				t.Fatalf("message = %q, want the generic one", typed.Message())
			}
			if len(store.sessions) != 0 {
				t.Fatalf("no session should exist after a failed login")
			}
		})
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	user := activeUser(t, "hunter2hunter2")
	svc, store := buildTestService(t, user)

	result, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if err := svc.Logout(context.Background(), result.Token); err != nil {
		t.Fatalf("second logout: %v", err)
	}
	if err := svc.Logout(context.Background(), ""); err != nil {
		t.Fatalf("logout without cookie: %v", err)
	}
	if len(store.sessions) != 0 {
		t.Fatalf("session survived logout")
	}
}

func TestValidateReportsInvalidWithoutError(t *testing.T) {
	user := activeUser(t, "hunter2hunter2")
	svc, _ := buildTestService(t, user)

	resp, err := svc.Validate(context.Background(), "bogus-token")
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if resp.Valid {
		t.Fatalf("bogus token should not validate")
	}
	if resp.User != nil {
		t.Fatalf("invalid session must not leak a user")
	}
}

func TestValidateRejectsDeactivatedOwner(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Session{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}

	user := activeUser(t, "hunter2hunter2")
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("creating user: %v", err)
	}
	store, err := session.NewStore(db, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	svc, err := NewService(ServiceParams{
		UserRepo:     stubUserRepo{user: user},
		SessionStore: store,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	result, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	resp, err := svc.Validate(context.Background(), result.Token)
	if err != nil || !resp.Valid {
		t.Fatalf("fresh session should validate, got %+v, %v", resp, err)
	}

	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	resp, err = svc.Validate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("validate after deactivation: %v", err)
	}
	if resp.Valid || resp.User != nil {
		t.Fatalf("deactivated owner must not validate, got %+v", resp)
	}
}

func TestValidateReturnsUser(t *testing.T) {
	user := activeUser(t, "hunter2hunter2")
	svc, store := buildTestService(t, user)

	result, err := svc.Login(context.Background(), LoginRequest{Email: user.Email, Password: "hunter2hunter2"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	store.sessions[result.Token].User = *user

	resp, err := svc.Validate(context.Background(), result.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if !resp.Valid || resp.User == nil || resp.User.ID != user.ID {
		t.Fatalf("expected valid session with user, got %+v", resp)
	}
}
