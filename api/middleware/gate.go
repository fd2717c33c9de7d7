package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gastosapp/gastos-backend/api/responses"
	"github.com/gastosapp/gastos-backend/pkg/auth/session"
	"github.com/gastosapp/gastos-backend/pkg/config"
	pkgerrors "github.com/gastosapp/gastos-backend/pkg/errors"
	"github.com/gastosapp/gastos-backend/pkg/logger"
)

// Paths reachable without a session. A path is public when it matches
// exactly or lives underneath one of these.
var publicPaths = []string{
	"/login",
	"/api/v1/auth/login",
	"/api/v1/auth/logout",
	"/api/v1/auth/validate",
	"/healthz",
	"/metrics",
}

var staticPrefixes = []string{
	"/_next",
	"/favicon",
	"/assets",
}

// Gate fences off every non-public path behind a live session. Browser
// navigation is bounced to the login page with the original path in the
// `from` query parameter; API clients get a plain 401.
type Gate struct {
	store      sessionResolver
	cfg        config.GateConfig
	cookieName string
	logg       *logger.Logger
	http       *http.Client
}

// NewGate builds the request gate. When cfg.ValidateURL is set the gate
// confirms sessions against that endpoint instead of the local store,
// forwarding the caller's cookies.
func NewGate(store sessionResolver, cfg config.GateConfig, cookieName string, logg *logger.Logger) *Gate {
	timeout := cfg.ValidateTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Gate{
		store:      store,
		cfg:        cfg,
		cookieName: cookieName,
		logg:       logg,
		http:       &http.Client{Timeout: timeout},
	}
}

// Handler returns the middleware.
func (g *Gate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path

		if isStaticPath(path) || isPublicPath(path) {
			next.ServeHTTP(w, r)
			return
		}

		cookie, err := r.Cookie(g.cookieName)
		if err != nil || cookie.Value == "" {
			g.reject(w, r)
			return
		}

		ok, err := g.sessionAlive(r, cookie.Value)
		if err != nil {
			responses.WriteError(r.Context(), g.logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session"))
			return
		}
		if !ok {
			g.reject(w, r)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (g *Gate) sessionAlive(r *http.Request, token string) (bool, error) {
	if g.cfg.ValidateURL != "" {
		return g.validateRemotely(r)
	}

	_, err := g.store.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// validateRemotely asks the configured endpoint whether the session holds,
// forwarding the caller's cookies untouched.
func (g *Gate) validateRemotely(r *http.Request) (bool, error) {
	ctx, cancel := context.WithTimeout(r.Context(), g.http.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.cfg.ValidateURL, nil)
	if err != nil {
		return false, err
	}
	if cookies := r.Header.Get("Cookie"); cookies != "" {
		req.Header.Set("Cookie", cookies)
	}

	resp, err := g.http.Do(req)
	if err != nil {
		// An unreachable validator fails closed.
		return false, nil
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK, nil
}

func (g *Gate) reject(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		target := g.cfg.LoginPath + "?from=" + url.QueryEscape(r.URL.Path)
		http.Redirect(w, r, target, http.StatusFound)
		return
	}
	responses.WriteError(r.Context(), g.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session required"))
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isStaticPath(path string) bool {
	for _, prefix := range staticPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
