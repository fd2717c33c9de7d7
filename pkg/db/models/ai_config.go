package models

import (
	"time"

	"github.com/gastosapp/gastos-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AIConfig holds one user's AI provider credentials. At most one row per user.
type AIConfig struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex"`
	Provider  enums.AIProvider `gorm:"column:provider;type:text;not null"`
	APIKey    string           `gorm:"column:api_key;type:text;not null"`
	ModelName string           `gorm:"column:model_name;type:text;not null;default:''"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *AIConfig) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// GlobalAIConfig is the deployment-wide fallback credential record. The table
// holds at most one row; it replaces the older habit of treating whichever
// per-user row happened to come back first as ambient global configuration.
type GlobalAIConfig struct {
	ID        uint             `gorm:"primaryKey"`
	Provider  enums.AIProvider `gorm:"column:provider;type:text;not null"`
	APIKey    string           `gorm:"column:api_key;type:text;not null"`
	ModelName string           `gorm:"column:model_name;type:text;not null;default:''"`
	BaseURL   string           `gorm:"column:base_url;type:text;not null;default:''"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
