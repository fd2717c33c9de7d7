package db

import (
	"context"
	"fmt"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

// MaybeAutoMigrate applies the GORM schema automatically when running in dev
// with the flag enabled. Production schema management stays out of band.
func MaybeAutoMigrate(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *Client) error {
	if !cfg.App.IsDev() || !cfg.FeatureFlags.AutoMigrate {
		return nil
	}

	if logg != nil {
		logg.Info(ctx, "running schema auto-migration (dev)")
	}

	err := client.DB().WithContext(ctx).AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.AIConfig{},
		&models.GlobalAIConfig{},
		&models.PushToken{},
		&models.Transaction{},
	)
	if err != nil {
		return fmt.Errorf("auto-migrating schema: %w", err)
	}
	return nil
}
