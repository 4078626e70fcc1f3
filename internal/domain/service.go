// Package domain defines the records, repositories and services of the workout tracker.
package domain

import (
	"context"

	"github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

// PasswordHasher hashes and compares passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, auth.Identity, error)
}

// Mailer delivers password reset links.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, name, resetURL string) error
}

// Publisher emits change events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

// NoopPublisher discards every event.
type NoopPublisher struct{}

// Publish performs no action.
func (NoopPublisher) Publish(context.Context, string, string, any) error { return nil }

// Session is a freshly issued session token and the identity it asserts.
type Session struct {
	Token    string
	Identity auth.Identity
}
