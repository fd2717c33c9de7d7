package pushtokens

import (
	"context"

	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository persists Expo push tokens.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a push token repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert registers the token for the user. A token re-registered from a
// different account moves to the new owner, since devices change hands
// between family members.
func (r *Repository) Upsert(ctx context.Context, token *models.PushToken) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "updated_at"}),
	}).Create(token).Error
}

// ListRecentByUser returns the user's freshest tokens, capped at limit.
func (r *Repository) ListRecentByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.PushToken, error) {
	var tokens []models.PushToken
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&tokens).Error
	if err != nil {
		return nil, err
	}
	return tokens, nil
}

// DeleteByToken removes a token, typically after Expo reports it dead.
func (r *Repository) DeleteByToken(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).Where("token = ?", token).Delete(&models.PushToken{}).Error
}
