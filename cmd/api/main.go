package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/gastosapp/gastos-backend/api/routes"
	"github.com/gastosapp/gastos-backend/internal/ai"
	"github.com/gastosapp/gastos-backend/internal/aiconfig"
	"github.com/gastosapp/gastos-backend/internal/auth"
	"github.com/gastosapp/gastos-backend/internal/pushtokens"
	"github.com/gastosapp/gastos-backend/internal/rates"
	"github.com/gastosapp/gastos-backend/internal/realtime"
	"github.com/gastosapp/gastos-backend/internal/transactions"
	"github.com/gastosapp/gastos-backend/internal/users"
	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/config"
	"github.com/gastosapp/gastos-backend/pkg/db"
	"github.com/gastosapp/gastos-backend/pkg/logger"
	"github.com/gastosapp/gastos-backend/pkg/redis"
)

const sessionPurgeInterval = time.Hour

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := db.MaybeAutoMigrate(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessions, err := session.NewStore(dbClient.DB(), cfg.Session.TTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create session store", err)
		os.Exit(1)
	}
	go purgeSessions(context.Background(), sessions, logg)

	hub := realtime.NewBroadcaster(logg)

	usersRepo := users.NewRepository(dbClient.DB())
	usersService, err := users.NewService(users.ServiceParams{
		Repo:        usersRepo,
		PasswordCfg: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:     usersRepo,
		SessionStore: sessions,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	txRepo := transactions.NewRepository(dbClient.DB())
	txService, err := transactions.NewService(transactions.ServiceParams{
		Repo:        txRepo,
		Broadcaster: hub,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create transactions service", err)
		os.Exit(1)
	}

	aiConfigRepo := aiconfig.NewRepository(dbClient.DB())
	aiConfigService, err := aiconfig.NewService(aiconfig.ServiceParams{
		Repo: aiConfigRepo,
		Cfg:  cfg.AI,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ai config service", err)
		os.Exit(1)
	}

	resolver, err := aiconfig.NewResolver(aiConfigRepo, cfg.AI)
	if err != nil {
		logg.Error(context.Background(), "failed to create ai credential resolver", err)
		os.Exit(1)
	}

	aiService, err := ai.NewService(ai.ServiceParams{
		Resolver:     resolver,
		Transactions: txRepo,
		Cfg:          cfg.AI,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create ai service", err)
		os.Exit(1)
	}

	ratesService, err := rates.NewService(rates.ServiceParams{Cfg: cfg.Rates})
	if err != nil {
		logg.Error(context.Background(), "failed to create rates service", err)
		os.Exit(1)
	}

	pushService, err := pushtokens.NewService(pushtokens.ServiceParams{
		Repo: pushtokens.NewRepository(dbClient.DB()),
		Cfg:  cfg.Push,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create push token service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, sessions, redisClient, routes.Services{
			Auth:         authService,
			Users:        usersService,
			Transactions: txService,
			AIConfig:     aiConfigService,
			AI:           aiService,
			Rates:        ratesService,
			PushTokens:   pushService,
			Broadcaster:  hub,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// purgeSessions sweeps expired rows so the sessions table stays small.
func purgeSessions(ctx context.Context, store *session.Store, logg *logger.Logger) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := store.PurgeExpired(ctx)
			if err != nil {
				logg.Error(ctx, "session purge failed", err)
				continue
			}
			if removed > 0 {
				logg.Info(logg.WithField(ctx, "removed", removed), "purged expired sessions")
			}
		}
	}
}
