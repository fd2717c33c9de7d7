package transactions

import (
	"context"

	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes transaction persistence operations. Every query is
// scoped to the owning user.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a transactions repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new transaction and returns the persisted model.
func (r *Repository) Create(ctx context.Context, tx *models.Transaction) (*models.Transaction, error) {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return nil, err
	}
	return tx, nil
}

// ListByUser returns the user's transactions newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// ListRecent returns up to limit of the user's latest transactions.
func (r *Repository) ListRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// FindByID loads a single transaction owned by the user. Rows belonging to
// other users look like they do not exist.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&tx).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateFlags applies the given column map to the user's transaction and
// returns the refreshed row.
func (r *Repository) UpdateFlags(ctx context.Context, userID, id uuid.UUID, fields map[string]any) (*models.Transaction, error) {
	if len(fields) > 0 {
		result := r.db.WithContext(ctx).
			Model(&models.Transaction{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(fields)
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.FindByID(ctx, userID, id)
}

// Delete removes the user's transaction. Deleting a row the user does not
// own reports not found.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
