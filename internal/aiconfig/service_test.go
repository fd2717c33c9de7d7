package aiconfig

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
)

type stubServiceRepo struct {
	byUser map[uuid.UUID]*models.AIConfig
	global *models.GlobalAIConfig
	saved  *models.AIConfig
}

func (r *stubServiceRepo) FindByUser(_ context.Context, userID uuid.UUID) (*models.AIConfig, error) {
	if cfg, ok := r.byUser[userID]; ok {
		return cfg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubServiceRepo) Upsert(_ context.Context, cfg *models.AIConfig) error {
	r.saved = cfg
	return nil
}

func (r *stubServiceRepo) FindGlobal(_ context.Context) (*models.GlobalAIConfig, error) {
	if r.global != nil {
		return r.global, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubServiceRepo) SaveGlobal(_ context.Context, cfg *models.GlobalAIConfig) error {
	r.global = cfg
	return nil
}

func newServiceForTest(t *testing.T, repo *stubServiceRepo, settingsFile string) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo: repo,
		Cfg:  config.AIConfig{SettingsFile: settingsFile},
	})
	if err != nil {
		t.Fatalf("building service: %v", err)
	}
	return svc
}

func TestGetConfigDefaultsToGoogle(t *testing.T) {
	repo := &stubServiceRepo{byUser: map[uuid.UUID]*models.AIConfig{}}
	svc := newServiceForTest(t, repo, filepath.Join(t.TempDir(), "settings.json"))

	dto, err := svc.GetConfig(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Provider != enums.AIProviderGoogle {
		t.Fatalf("expected google default, got %s", dto.Provider)
	}
	if dto.APIKey != "" {
		t.Fatalf("expected empty key, got %q", dto.APIKey)
	}
}

func TestUpsertConfigRejectsUnknownProvider(t *testing.T) {
	repo := &stubServiceRepo{byUser: map[uuid.UUID]*models.AIConfig{}}
	svc := newServiceForTest(t, repo, filepath.Join(t.TempDir(), "settings.json"))

	err := svc.UpsertConfig(context.Background(), uuid.New(), UpsertConfigRequest{
		Provider: "anthropic",
		APIKey:   "sk-whatever",
	})
	var typed *pkgerrors.Error
	if !errors.As(err, &typed) || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if repo.saved != nil {
		t.Fatal("nothing should be persisted for a bad provider")
	}
}

func TestLegacySettingsRoundTrip(t *testing.T) {
	repo := &stubServiceRepo{byUser: map[uuid.UUID]*models.AIConfig{}}
	file := filepath.Join(t.TempDir(), "nested", "google_settings.json")
	svc := newServiceForTest(t, repo, file)
	ctx := context.Background()

	// Missing file reads as empty settings.
	settings, err := svc.GetLegacySettings(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.APIKey != "" {
		t.Fatalf("expected empty settings, got %+v", settings)
	}

	saved := LegacySettings{APIKey: "AIzaLegacyKey", Model: "gemini-pro"}
	if err := svc.SaveLegacySettings(ctx, saved); err != nil {
		t.Fatalf("saving: %v", err)
	}

	settings, err = svc.GetLegacySettings(ctx)
	if err != nil {
		t.Fatalf("reading back: %v", err)
	}
	if settings.APIKey != saved.APIKey || settings.Model != saved.Model {
		t.Fatalf("round trip mismatch: %+v", settings)
	}

	if err := svc.DeleteLegacySettings(ctx); err != nil {
		t.Fatalf("deleting: %v", err)
	}
	// Deleting twice is fine.
	if err := svc.DeleteLegacySettings(ctx); err != nil {
		t.Fatalf("second delete: %v", err)
	}

	settings, err = svc.GetLegacySettings(ctx)
	if err != nil {
		t.Fatalf("after delete: %v", err)
	}
	if settings.APIKey != "" {
		t.Fatalf("expected empty settings after delete, got %+v", settings)
	}
}

func TestSaveGlobalConfigPersists(t *testing.T) {
	repo := &stubServiceRepo{byUser: map[uuid.UUID]*models.AIConfig{}}
	svc := newServiceForTest(t, repo, filepath.Join(t.TempDir(), "settings.json"))
	ctx := context.Background()

	err := svc.SaveGlobalConfig(ctx, SaveGlobalConfigRequest{
		Provider: "openai",
		APIKey:   "sk-global-key",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dto, err := svc.GetGlobalConfig(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Provider != enums.AIProviderOpenAI || dto.APIKey != "sk-global-key" {
		t.Fatalf("unexpected global config: %+v", dto)
	}
}
