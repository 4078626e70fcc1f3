package domain

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	authn "github.com/johnnywrightiv/workout-tracker-sub000/internal/auth"
)

// AccountConfig tunes the account workflows.
type AccountConfig struct {
	BaseURL  string
	ResetTTL time.Duration
}

// AccountService runs signup, login, password and preference workflows.
type AccountService struct {
	users    UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	mailer   Mailer
	baseURL  string
	resetTTL time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewAccountService constructs an AccountService.
func NewAccountService(users UserRepository, hasher PasswordHasher, tokens TokenIssuer, mailer Mailer, cfg AccountConfig, logger zerolog.Logger) *AccountService {
	ttl := cfg.ResetTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AccountService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		resetTTL: ttl,
		now:      time.Now,
		logger:   logger,
	}
}

// SetClock overrides the time source. Intended for tests.
func (s *AccountService) SetClock(now func() time.Time) {
	s.now = now
}

// SignupInput carries validated signup fields.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// Signup registers a new user and opens a session for them.
func (s *AccountService) Signup(ctx context.Context, input SignupInput) (*User, Session, error) {
	email := NormalizeEmail(input.Email)
	existing, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, Session{}, err
	}
	if existing != nil {
		return nil, Session{}, ErrEmailTaken
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, Session{}, err
	}

	now := s.now().UTC()
	user := User{
		ID:           NewID(),
		Email:        email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, Session{}, err
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	return &user, session, nil
}

// Login checks credentials. Unknown emails and wrong passwords both yield ErrInvalidCredentials
// after the same amount of hashing work.
func (s *AccountService) Login(ctx context.Context, email, password string) (*User, Session, error) {
	user, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		return nil, Session{}, err
	}

	hash := ""
	if user != nil {
		hash = user.PasswordHash
	}
	if !s.hasher.Compare(hash, password) || user == nil {
		return nil, Session{}, ErrInvalidCredentials
	}

	session, err := s.issue(user.ID)
	if err != nil {
		return nil, Session{}, err
	}
	return user, session, nil
}

// CurrentUser resolves the user behind a verified session.
func (s *AccountService) CurrentUser(ctx context.Context, userID string) (*User, error) {
	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

// RequestPasswordReset mails a reset link when email belongs to an account. Every failure is
// logged and swallowed so the caller always sees the same outcome.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.FindUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		s.logger.Error().Err(err).Msg("look up reset account")
		return nil
	}
	if user == nil {
		return nil
	}

	token, err := authn.NewResetToken()
	if err != nil {
		s.logger.Error().Err(err).Msg("generate reset token")
		return nil
	}
	expires := s.now().UTC().Add(s.resetTTL)
	if err := s.users.SetResetToken(ctx, user.ID, token.Hash, expires); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("store reset token")
		return nil
	}
	if err := s.mailer.SendPasswordReset(ctx, user.Email, user.Name, s.resetURL(token.Token)); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.ID).Msg("send reset email")
	}
	return nil
}

func (s *AccountService) resetURL(token string) string {
	return s.baseURL + "/reset-password?token=" + url.QueryEscape(token)
}

// ResetPassword consumes a reset token exactly once.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidResetToken
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	ok, err := s.users.ConsumeResetToken(ctx, authn.HashResetToken(token), hash, s.now().UTC())
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	return nil
}

// ChangePassword replaces the password of a signed-in user after re-checking the current one.
func (s *AccountService) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return err
	}
	if !s.hasher.Compare(user.PasswordHash, current) {
		return ErrIncorrectPassword
	}
	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePasswordHash(ctx, user.ID, hash)
}

// Preferences returns the user's stored preferences merged over the defaults.
func (s *AccountService) Preferences(ctx context.Context, userID string) (Preferences, error) {
	user, err := s.CurrentUser(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	return user.Preferences.Merged(), nil
}

// UpdatePreferences stores prefs after checking both enums. Nothing is written when either
// value is unknown.
func (s *AccountService) UpdatePreferences(ctx context.Context, userID string, prefs Preferences) (Preferences, error) {
	if !prefs.ColorScheme.Valid() || !prefs.MeasurementSystem.Valid() {
		return Preferences{}, ErrInvalidPreferences
	}
	if _, err := s.CurrentUser(ctx, userID); err != nil {
		return Preferences{}, err
	}
	if err := s.users.UpdatePreferences(ctx, userID, prefs); err != nil {
		return Preferences{}, err
	}
	return prefs.Merged(), nil
}

func (s *AccountService) issue(userID string) (Session, error) {
	token, identity, err := s.tokens.Issue(userID)
	if err != nil {
		return Session{}, fmt.Errorf("issue session token: %w", err)
	}
	return Session{Token: token, Identity: identity}, nil
}
