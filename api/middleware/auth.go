package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/db/models"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

type sessionResolver interface {
	Resolve(ctx context.Context, token string) (*models.Session, error)
}

// SessionAuth resolves the session cookie and seeds the request context with
// the authenticated user. Requests without a live session get 401.
func SessionAuth(store sessionResolver, cookieName string, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			sess, err := store.Resolve(r.Context(), cookie.Value)
			if err != nil {
				if errors.Is(err, session.ErrNoSession) {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable"))
					return
				}
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
				return
			}

			ctx := WithUser(r.Context(), sess.UserID, sess.User.IsAdmin)
			ctx = WithSessionToken(ctx, cookie.Value)

			if logg != nil {
				ctx = logg.WithUserID(ctx, sess.UserID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects requests whose session does not belong to an admin.
// It must run after SessionAuth.
func RequireAdmin(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsAdminFromContext(r.Context()) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin access required"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
