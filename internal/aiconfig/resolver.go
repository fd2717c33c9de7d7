package aiconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/enums"
	"github.com/google/uuid"
)

// ErrUnconfigured means no credential source produced a usable API key.
var ErrUnconfigured = errors.New("no AI credentials configured")

// Resolver walks the credential sources in priority order: the caller's own
// config, the instance-wide singleton, any other user's row, the legacy
// settings file, and finally the server environment.
type Resolver struct {
	repo resolverRepository
	cfg  config.AIConfig
}

type resolverRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*models.AIConfig, error)
	FindAny(ctx context.Context) (*models.AIConfig, error)
	FindGlobal(ctx context.Context) (*models.GlobalAIConfig, error)
}

// NewResolver constructs a credential resolver.
func NewResolver(repo resolverRepository, cfg config.AIConfig) (*Resolver, error) {
	if repo == nil {
		return nil, fmt.Errorf("ai config repository is required")
	}
	return &Resolver{repo: repo, cfg: cfg}, nil
}

// Resolve finds credentials for the user. A nil user id skips the per-user
// tier, which is what unauthenticated internals use.
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (*ResolvedSettings, error) {
	if userID != uuid.Nil {
		own, err := r.repo.FindByUser(ctx, userID)
		if err != nil && !db.IsNotFound(err) {
			return nil, fmt.Errorf("loading user ai config: %w", err)
		}
		if own != nil && own.APIKey != "" {
			return r.fromUserConfig(own, SourceUser), nil
		}
	}

	global, err := r.repo.FindGlobal(ctx)
	if err != nil && !db.IsNotFound(err) {
		return nil, fmt.Errorf("loading global ai config: %w", err)
	}
	if global != nil && global.APIKey != "" {
		settings := &ResolvedSettings{
			Provider: global.Provider,
			APIKey:   global.APIKey,
			Model:    global.ModelName,
			BaseURL:  global.BaseURL,
			Source:   SourceGlobal,
		}
		r.applyDefaults(settings)
		return settings, nil
	}

	shared, err := r.repo.FindAny(ctx)
	if err != nil && !db.IsNotFound(err) {
		return nil, fmt.Errorf("loading shared ai config: %w", err)
	}
	if shared != nil && shared.APIKey != "" {
		return r.fromUserConfig(shared, SourceShared), nil
	}

	if settings := r.fromLegacyFile(); settings != nil {
		return settings, nil
	}

	if settings := r.fromEnv(); settings != nil {
		return settings, nil
	}

	return nil, ErrUnconfigured
}

func (r *Resolver) fromUserConfig(cfg *models.AIConfig, source string) *ResolvedSettings {
	settings := &ResolvedSettings{
		Provider: cfg.Provider,
		APIKey:   cfg.APIKey,
		Model:    cfg.ModelName,
		Source:   source,
	}
	r.applyDefaults(settings)
	return settings
}

// fromLegacyFile reads the pre-multiuser google_settings.json. Any read or
// parse failure just moves resolution on to the next tier.
func (r *Resolver) fromLegacyFile() *ResolvedSettings {
	raw, err := os.ReadFile(r.cfg.SettingsFile)
	if err != nil {
		return nil
	}
	var legacy LegacySettings
	if err := json.Unmarshal(raw, &legacy); err != nil || legacy.APIKey == "" {
		return nil
	}
	settings := &ResolvedSettings{
		Provider: enums.AIProviderGoogle,
		APIKey:   legacy.APIKey,
		Model:    legacy.Model,
		BaseURL:  legacy.BaseURL,
		Source:   SourceFile,
	}
	r.applyDefaults(settings)
	return settings
}

func (r *Resolver) fromEnv() *ResolvedSettings {
	if r.cfg.GoogleAPIKey != "" {
		settings := &ResolvedSettings{
			Provider: enums.AIProviderGoogle,
			APIKey:   r.cfg.GoogleAPIKey,
			Source:   SourceEnv,
		}
		r.applyDefaults(settings)
		return settings
	}
	if r.cfg.OpenAIAPIKey != "" {
		settings := &ResolvedSettings{
			Provider: enums.AIProviderOpenAI,
			APIKey:   r.cfg.OpenAIAPIKey,
			Source:   SourceEnv,
		}
		r.applyDefaults(settings)
		return settings
	}
	return nil
}

func (r *Resolver) applyDefaults(settings *ResolvedSettings) {
	switch settings.Provider {
	case enums.AIProviderOpenAI:
		if settings.Model == "" {
			settings.Model = r.cfg.OpenAIModel
		}
		if settings.BaseURL == "" {
			settings.BaseURL = r.cfg.OpenAIBaseURL
		}
	default:
		if settings.Provider == "" {
			settings.Provider = enums.AIProviderGoogle
		}
		if settings.Model == "" {
			settings.Model = r.cfg.GoogleModel
		}
		if settings.BaseURL == "" {
			settings.BaseURL = r.cfg.GoogleBaseURL
		}
	}
}
