package aiconfig

import "github.com/gastosapp/gastos-backend/pkg/enums"

// ConfigDTO is the per-user AI configuration exposed over HTTP. The key is
// returned so the settings screen can show it; nothing else ever echoes it.
type ConfigDTO struct {
	Provider  enums.AIProvider `json:"provider"`
	APIKey    string           `json:"apiKey"`
	ModelName string           `json:"modelName"`
}

// UpsertConfigRequest saves or replaces the caller's AI credentials.
type UpsertConfigRequest struct {
	Provider  string `json:"provider" validate:"required"`
	APIKey    string `json:"apiKey" validate:"required,min=8"`
	ModelName string `json:"modelName" validate:"omitempty,max=120"`
}

// LegacySettings mirrors the on-disk google_settings.json shape kept for
// installations that predate per-user credentials.
type LegacySettings struct {
	APIKey  string `json:"apiKey"`
	Model   string `json:"model,omitempty"`
	BaseURL string `json:"baseUrl,omitempty"`
}

// ResolvedSettings is what the AI clients actually run with, wherever the
// credentials came from.
type ResolvedSettings struct {
	Provider enums.AIProvider
	APIKey   string
	Model    string
	BaseURL  string
	Source   string
}

// Resolution sources, in priority order.
const (
	SourceUser   = "user"
	SourceGlobal = "global"
	SourceShared = "shared"
	SourceFile   = "file"
	SourceEnv    = "env"
)
