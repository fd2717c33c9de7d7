package main

import (
	"context"
	"flag"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gorm.io/gorm/clause"

	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	"github.com/gastosapp/gastos-backend/pkg/logger"
	"github.com/gastosapp/gastos-backend/pkg/security"
)

// Seeds an admin account. Run explicitly; the API never creates users on
// its own.
func main() {
	email := flag.String("email", "admin@example.com", "admin email")
	password := flag.String("password", "", "admin password (required)")
	name := flag.String("name", "Admin", "display name")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "seed"})
	ctx := context.Background()

	if *password == "" {
		logg.Error(ctx, "missing -password flag", nil)
		os.Exit(1)
	}

	if err := godotenv.Load(); err != nil {
		logg.Warn(ctx, ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := db.MaybeAutoMigrate(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run migrations", err)
		os.Exit(1)
	}

	hash, err := security.HashPassword(*password, cfg.Password)
	if err != nil {
		logg.Error(ctx, "failed to hash password", err)
		os.Exit(1)
	}

	displayName := *name
	user := &models.User{
		Email:        strings.ToLower(strings.TrimSpace(*email)),
		Name:         &displayName,
		PasswordHash: hash,
		IsActive:     true,
		IsAdmin:      true,
	}

	err = dbClient.DB().WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "email"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "password_hash", "is_active", "is_admin",
		}),
	}).Create(user).Error
	if err != nil {
		logg.Error(ctx, "failed to upsert admin", err)
		os.Exit(1)
	}

	logg.Info(logg.WithField(ctx, "email", user.Email), "admin account ready")
}
