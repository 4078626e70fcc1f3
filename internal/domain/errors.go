package domain

import "errors"

var (
	// ErrEmailTaken is returned when signing up with an address that is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthenticated is returned when a session names a user that no longer resolves.
	ErrUnauthenticated = errors.New("not authenticated")
	// ErrNotFound is returned for absent records and for records owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidID is returned for malformed record identifiers.
	ErrInvalidID = errors.New("invalid identifier")
	// ErrInvalidResetToken is returned for unknown, expired or already consumed reset tokens.
	ErrInvalidResetToken = errors.New("invalid or expired reset token")
	// ErrIncorrectPassword is returned when a password change supplies the wrong current password.
	ErrIncorrectPassword = errors.New("current password is incorrect")
	// ErrInvalidPreferences is returned for unknown enum values.
	ErrInvalidPreferences = errors.New("invalid preferences")
)
