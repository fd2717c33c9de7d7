package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gastosapp/gastos-backend/api/controllers"
	"github.com/gastosapp/gastos-backend/api/middleware"
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
	"github.com/gastosapp/gastos-backend/pkg/logger"
	"github.com/gastosapp/gastos-backend/pkg/redis"
)

// Services bundles everything the router hands to controllers.
type Services struct {
	Auth         auth.Service
	Users        users.Service
	Transactions transactions.Service
	AIConfig     aiconfig.Service
	AI           ai.Service
	Rates        rates.Service
	PushTokens   pushtokens.Service
	Broadcaster  *realtime.Broadcaster
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	sessions *session.Store,
	redisClient *redis.Client,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	if cfg.Gate.Enabled {
		gate := middleware.NewGate(sessions, cfg.Gate, cfg.Session.CookieName, logg)
		r.Use(gate.Handler)
	}

	loginLimiter := func(next http.Handler) http.Handler { return next }
	if redisClient != nil {
		loginPolicy := middleware.NewAuthRateLimitPolicy(
			"login",
			cfg.AuthRateLimit.LoginWindow,
			cfg.AuthRateLimit.LoginIPLimit,
			cfg.AuthRateLimit.LoginEmailLimit,
		)
		loginLimiter = middleware.AuthRateLimit(loginPolicy, redisClient, logg)
	}

	r.Get("/healthz", controllers.HealthLive(cfg))
	r.Get("/metrics", middleware.MetricsHandler().ServeHTTP)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(loginLimiter).Post("/login", controllers.AuthLogin(svcs.Auth, cfg.Session, logg))
		r.Post("/logout", controllers.AuthLogout(svcs.Auth, cfg.Session, logg))
		r.Get("/validate", controllers.AuthValidate(svcs.Auth, cfg.Session, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionAuth(sessions, cfg.Session.CookieName, logg))
			r.Get("/me", controllers.AuthMe(svcs.Users, logg))
		})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SessionAuth(sessions, cfg.Session.CookieName, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.ListUsers(svcs.Users, logg))
			r.Get("/{id}", controllers.GetUser(svcs.Users, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Post("/", controllers.CreateUser(svcs.Users, logg))
				r.Put("/{id}", controllers.UpdateUser(svcs.Users, logg))
				r.Delete("/{id}", controllers.DeleteUser(svcs.Users, logg))
			})
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", controllers.ListTransactions(svcs.Transactions, logg))
			r.Post("/", controllers.CreateTransaction(svcs.Transactions, logg))
			r.Patch("/{id}", controllers.PatchTransaction(svcs.Transactions, logg))
			r.Delete("/{id}", controllers.DeleteTransaction(svcs.Transactions, logg))
		})

		r.Route("/ai", func(r chi.Router) {
			r.Get("/config", controllers.GetAIConfig(svcs.AIConfig, logg))
			r.Post("/config", controllers.SaveAIConfig(svcs.AIConfig, logg))
			r.Post("/upload-ticket", controllers.ExtractTicket(svcs.AI, logg))
			r.Post("/prompt", controllers.ExecutePrompt(svcs.AI, logg))
			r.Get("/models", controllers.ListAIModels(svcs.AI, logg))
			r.Get("/recommendations", controllers.Recommendations(svcs.AI, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logg))
				r.Get("/global-config", controllers.GetGlobalAIConfig(svcs.AIConfig, logg))
				r.Put("/global-config", controllers.SaveGlobalAIConfig(svcs.AIConfig, logg))
			})
		})

		r.Route("/settings/google", func(r chi.Router) {
			r.Get("/", controllers.GetLegacyGoogleSettings(svcs.AIConfig, logg))
			r.Post("/", controllers.SaveLegacyGoogleSettings(svcs.AIConfig, logg))
			r.Delete("/", controllers.DeleteLegacyGoogleSettings(svcs.AIConfig, logg))
		})

		r.Get("/rates/usd-ars", controllers.USDARSRate(svcs.Rates, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Post("/register", controllers.RegisterPushToken(svcs.PushTokens, logg))
			r.Post("/test", controllers.SendTestNotification(svcs.PushTokens, logg))
		})

		r.Get("/realtime", controllers.StreamEvents(svcs.Broadcaster, logg))
	})

	return r
}
