package aiconfig

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/google/uuid"
)

// Service manages AI credentials: the per-user rows, the instance-wide
// singleton, and the legacy on-disk settings file.
type Service interface {
	GetConfig(ctx context.Context, userID uuid.UUID) (*ConfigDTO, error)
	UpsertConfig(ctx context.Context, userID uuid.UUID, req UpsertConfigRequest) error
	GetGlobalConfig(ctx context.Context) (*GlobalConfigDTO, error)
	SaveGlobalConfig(ctx context.Context, req SaveGlobalConfigRequest) error
	GetLegacySettings(ctx context.Context) (*LegacySettings, error)
	SaveLegacySettings(ctx context.Context, settings LegacySettings) error
	DeleteLegacySettings(ctx context.Context) error
}

// GlobalConfigDTO is the instance-wide fallback credential set.
type GlobalConfigDTO struct {
	Provider  enums.AIProvider `json:"provider"`
	APIKey    string           `json:"apiKey"`
	ModelName string           `json:"modelName"`
	BaseURL   string           `json:"baseUrl,omitempty"`
}

// SaveGlobalConfigRequest replaces the instance-wide fallback credentials.
type SaveGlobalConfigRequest struct {
	Provider  string `json:"provider" validate:"required"`
	APIKey    string `json:"apiKey" validate:"required,min=8"`
	ModelName string `json:"modelName" validate:"omitempty,max=120"`
	BaseURL   string `json:"baseUrl" validate:"omitempty,url"`
}

type service struct {
	repo serviceRepository
	cfg  config.AIConfig
}

type serviceRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.AIConfig, error)
	Upsert(ctx context.Context, cfg *models.AIConfig) error
	FindGlobal(ctx context.Context) (*models.GlobalAIConfig, error)
	SaveGlobal(ctx context.Context, cfg *models.GlobalAIConfig) error
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo serviceRepository
	Cfg  config.AIConfig
}

// NewService constructs an AI configuration service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("ai config repository is required")
	}
	return &service{repo: params.Repo, cfg: params.Cfg}, nil
}

// GetConfig returns the caller's saved credentials, or an empty google
// default when nothing is stored yet.
func (s *service) GetConfig(ctx context.Context, userID uuid.UUID) (*ConfigDTO, error) {
	cfg, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if db.IsNotFound(err) {
			return &ConfigDTO{Provider: enums.AIProviderGoogle}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load ai config")
	}
	return &ConfigDTO{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		ModelName: cfg.ModelName,
	}, nil
}

func (s *service) UpsertConfig(ctx context.Context, userID uuid.UUID, req UpsertConfigRequest) error {
	provider, err := enums.ParseAIProvider(req.Provider)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "proveedor de IA inválido")
	}

	cfg := &models.AIConfig{
		UserID:    userID,
		Provider:  provider,
		APIKey:    req.APIKey,
		ModelName: req.ModelName,
	}
	if err := s.repo.Upsert(ctx, cfg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save ai config")
	}
	return nil
}

func (s *service) GetGlobalConfig(ctx context.Context) (*GlobalConfigDTO, error) {
	cfg, err := s.repo.FindGlobal(ctx)
	if err != nil {
		if db.IsNotFound(err) {
			return &GlobalConfigDTO{Provider: enums.AIProviderGoogle}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load global ai config")
	}
	return &GlobalConfigDTO{
		Provider:  cfg.Provider,
		APIKey:    cfg.APIKey,
		ModelName: cfg.ModelName,
		BaseURL:   cfg.BaseURL,
	}, nil
}

func (s *service) SaveGlobalConfig(ctx context.Context, req SaveGlobalConfigRequest) error {
	provider, err := enums.ParseAIProvider(req.Provider)
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "proveedor de IA inválido")
	}

	cfg := &models.GlobalAIConfig{
		Provider:  provider,
		APIKey:    req.APIKey,
		ModelName: req.ModelName,
		BaseURL:   req.BaseURL,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.SaveGlobal(ctx, cfg); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save global ai config")
	}
	return nil
}

// GetLegacySettings reads the on-disk settings file. A missing file is an
// empty payload, matching how old installs behaved.
func (s *service) GetLegacySettings(_ context.Context) (*LegacySettings, error) {
	raw, err := os.ReadFile(s.cfg.SettingsFile)
	if err != nil {
		if os.IsNotExist(err) {
			return &LegacySettings{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read settings file")
	}
	var settings LegacySettings
	if err := json.Unmarshal(raw, &settings); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "parse settings file")
	}
	return &settings, nil
}

func (s *service) SaveLegacySettings(_ context.Context, settings LegacySettings) error {
	if err := os.MkdirAll(filepath.Dir(s.cfg.SettingsFile), 0o755); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create settings dir")
	}
	raw, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode settings")
	}
	if err := os.WriteFile(s.cfg.SettingsFile, raw, 0o600); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "write settings file")
	}
	return nil
}

func (s *service) DeleteLegacySettings(_ context.Context) error {
	if err := os.Remove(s.cfg.SettingsFile); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete settings file")
	}
	return nil
}
