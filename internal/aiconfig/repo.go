package aiconfig

import (
	"context"

	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists per-user and global AI credentials.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an AI config repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUser loads the caller's AI config.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.AIConfig, error) {
	var cfg models.AIConfig
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Upsert saves the user's credentials, replacing any previous row. Each user
// holds at most one config.
func (r *Repository) Upsert(ctx context.Context, cfg *models.AIConfig) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "api_key", "model_name"}),
	}).Create(cfg).Error
}

// FindAny returns the oldest configured row regardless of owner. Receipt
// extraction falls back to it when the caller has no credentials of their
// own.
func (r *Repository) FindAny(ctx context.Context) (*models.AIConfig, error) {
	var cfg models.AIConfig
	if err := r.db.WithContext(ctx).Order("id").First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindGlobal loads the instance-wide config singleton.
func (r *Repository) FindGlobal(ctx context.Context) (*models.GlobalAIConfig, error) {
	var cfg models.GlobalAIConfig
	if err := r.db.WithContext(ctx).First(&cfg, "id = ?", 1).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveGlobal replaces the instance-wide config singleton.
func (r *Repository) SaveGlobal(ctx context.Context, cfg *models.GlobalAIConfig) error {
	cfg.ID = 1
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"provider", "api_key", "model_name", "base_url", "updated_at"}),
	}).Create(cfg).Error
}
