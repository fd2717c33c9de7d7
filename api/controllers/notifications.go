package controllers

import (
	"net/http"

	"github.com/gastosapp/gastos-backend/api/middleware"
	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/api/validators"
	"github.com/gastosapp/gastos-backend/internal/pushtokens"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

// RegisterPushToken stores the caller's Expo push token.
func RegisterPushToken(svc pushtokens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body pushtokens.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if err := svc.Register(r.Context(), userID, body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}

// SendTestNotification pushes a canned message to the caller's devices.
func SendTestNotification(svc pushtokens.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := middleware.UserIDFromContext(r.Context())

		result, err := svc.SendTest(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
