package auth

import (
	"net/http"
	"strings"
)

// CookieName is the name of the session cookie.
const CookieName = "token"

// Verifier is satisfied by TokenService.
type Verifier interface {
	Verify(token string) (Identity, error)
}

// TokenFromRequest extracts a candidate token, preferring the session cookie over the
// Authorization header. A non-empty cookie wins even when it is stale, so clients that send a
// bearer token must not also carry an old session cookie.
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if value := strings.TrimSpace(cookie.Value); value != "" {
			return value
		}
	}
	return bearerToken(r.Header.Get("Authorization"))
}

func bearerToken(header string) string {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// Session resolves the verified identity for a request. A missing or invalid token is not an
// error: it simply yields no identity.
func Session(v Verifier, r *http.Request) (Identity, bool) {
	token := TokenFromRequest(r)
	if token == "" {
		return Identity{}, false
	}
	identity, err := v.Verify(token)
	if err != nil {
		return Identity{}, false
	}
	return identity, true
}

// Middleware attaches the verified identity, when there is one, to the request context.
// It never rejects a request; handlers decide whether an identity is required.
type Middleware struct {
	verifier Verifier
}

// NewMiddleware constructs a Middleware.
func NewMiddleware(v Verifier) Middleware {
	return Middleware{verifier: v}
}

// Wrap wraps an http.Handler with session resolution.
func (m Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if identity, ok := Session(m.verifier, r); ok {
			r = r.WithContext(WithIdentity(r.Context(), identity))
		}
		next.ServeHTTP(w, r)
	})
}
