package domain

import (
	"context"
	"time"
)

// UserRepository persists accounts. Finders return (nil, nil) when nothing matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByEmail(ctx context.Context, email string) (*User, error)
	FindUserByID(ctx context.Context, id string) (*User, error)
	SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error
	// ConsumeResetToken atomically swaps the password hash and clears the reset fields when
	// tokenHash matches and has not expired at now. It reports whether a user was updated.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error)
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error
	UpdatePreferences(ctx context.Context, userID string, prefs Preferences) error
}

// WorkoutRepository persists workouts. Every lookup is scoped by owner and id together.
type WorkoutRepository interface {
	ListWorkouts(ctx context.Context, ownerID string) ([]Workout, error)
	GetWorkout(ctx context.Context, ownerID, id string) (*Workout, error)
	CreateWorkout(ctx context.Context, workout Workout) error
	// ReplaceWorkout overwrites the document matching workout.ID and workout.UserID and returns
	// the stored result, or nil when nothing matched.
	ReplaceWorkout(ctx context.Context, workout Workout) (*Workout, error)
	DeleteWorkout(ctx context.Context, ownerID, id string) (bool, error)
}

// TemplateRepository persists templates with the same owner scoping as workouts.
type TemplateRepository interface {
	ListTemplates(ctx context.Context, ownerID string) ([]Template, error)
	GetTemplate(ctx context.Context, ownerID, id string) (*Template, error)
	CreateTemplate(ctx context.Context, template Template) error
	ReplaceTemplate(ctx context.Context, template Template) (*Template, error)
	DeleteTemplate(ctx context.Context, ownerID, id string) (bool, error)
}

// Store groups the repositories a backend provides.
type Store interface {
	UserRepository
	WorkoutRepository
	TemplateRepository
}
