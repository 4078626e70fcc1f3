package auth

import (
	"net/http"
	"time"

	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

// CookieWriter sets and clears the session cookie.
type CookieWriter struct {
	Secure bool
	MaxAge time.Duration
}

// Set writes token as an http-only, same-site session cookie.
func (c CookieWriter) Set(w http.ResponseWriter, token string) {
	maxAge := c.MaxAge
	if maxAge <= 0 {
		maxAge = sessionauth.DefaultTTL
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionauth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie immediately.
func (c CookieWriter) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionauth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
