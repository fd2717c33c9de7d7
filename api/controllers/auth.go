package controllers

import (
	"net/http"
	"time"

	"github.com/gastosapp/gastos-backend/api/middleware"
	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/api/validators"
	"github.com/gastosapp/gastos-backend/internal/auth"
	"github.com/gastosapp/gastos-backend/internal/users"
	"github.com/gastosapp/gastos-backend/pkg/config"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

func sessionCookie(cfg config.SessionConfig, token string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	}
}

func expiredSessionCookie(cfg config.SessionConfig) *http.Cookie {
	return &http.Cookie{
		Name:     cfg.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}

// AuthLogin authenticates the credentials and plants the session cookie.
func AuthLogin(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			middleware.CountLoginAttempt("rejected")
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		middleware.CountLoginAttempt("success")
		http.SetCookie(w, sessionCookie(cfg, result.Token, result.ExpiresAt))
		responses.WriteSuccess(w, map[string]*users.UserDTO{
			"user": result.User,
		})
	}
}

// AuthLogout destroys the session and clears the cookie. Always succeeds.
func AuthLogout(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		if cookie, err := r.Cookie(cfg.CookieName); err == nil && cookie.Value != "" {
			if err := svc.Logout(r.Context(), cookie.Value); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		http.SetCookie(w, expiredSessionCookie(cfg))
		responses.WriteSuccess(w, map[string]bool{"ok": true})
	}
}

// AuthValidate reports whether the presented session cookie is still live.
// It never errors on a missing or dead session so gate-style callers can
// probe it cheaply.
func AuthValidate(svc auth.Service, cfg config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		token := ""
		if cookie, err := r.Cookie(cfg.CookieName); err == nil {
			token = cookie.Value
		}

		result, err := svc.Validate(r.Context(), token)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if !result.Valid {
			responses.WriteRaw(w, http.StatusUnauthorized, result)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AuthMe returns the profile of the session's user.
func AuthMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "users service unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		isAdmin := middleware.IsAdminFromContext(r.Context())

		dto, err := svc.Get(r.Context(), userID, isAdmin, userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]*users.UserDTO{"user": dto})
	}
}
