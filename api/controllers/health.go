package controllers

import (
	"net/http"

	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/pkg/config"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Gastos-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}
