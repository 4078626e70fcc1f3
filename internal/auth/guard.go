package auth

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

// DefaultAPIPrefixes are the API paths that require a session.
var DefaultAPIPrefixes = []string{
	"/api/workouts",
	"/api/templates",
	"/api/user",
	"/api/progress",
}

// DefaultPagePrefixes are the page paths that require a session.
var DefaultPagePrefixes = []string{
	"/dashboard",
	"/workouts",
	"/templates",
	"/progress",
	"/settings",
}

// GuardConfig lists the protected prefixes and where page requests are sent when signed out.
type GuardConfig struct {
	APIPrefixes  []string
	PagePrefixes []string
	LoginPath    string
}

// Guard rejects requests to protected paths that carry no plausible session token. It does
// not verify signatures; handlers that need the identity do that.
type Guard struct {
	api   []string
	pages []string
	login string
}

// NewGuard builds a Guard, applying the default prefix lists when cfg leaves them empty.
func NewGuard(cfg GuardConfig) *Guard {
	g := &Guard{api: cfg.APIPrefixes, pages: cfg.PagePrefixes, login: cfg.LoginPath}
	if len(g.api) == 0 {
		g.api = DefaultAPIPrefixes
	}
	if len(g.pages) == 0 {
		g.pages = DefaultPagePrefixes
	}
	if g.login == "" {
		g.login = "/login"
	}
	return g
}

// Wrap applies the guard in front of next.
func (g *Guard) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		switch {
		case matchesPrefix(path, g.api):
			if !hasSessionToken(r) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"type":   "unauthorized",
					"detail": "Authentication required",
				})
				return
			}
		case matchesPrefix(path, g.pages):
			if !hasSessionToken(r) {
				http.Redirect(w, r, g.loginURL(r), http.StatusSeeOther)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (g *Guard) loginURL(r *http.Request) string {
	original := r.URL.Path
	if r.URL.RawQuery != "" {
		original += "?" + r.URL.RawQuery
	}
	return g.login + "?redirect=" + url.QueryEscape(original)
}

func hasSessionToken(r *http.Request) bool {
	return sessionauth.LooksLikeToken(sessionauth.TokenFromRequest(r))
}

// matchesPrefix reports whether path equals a prefix or sits beneath it.
func matchesPrefix(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}
