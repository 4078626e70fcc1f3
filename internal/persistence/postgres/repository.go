package postgres

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence"
)

//go:embed schema.sql
var schema string

const uniqueViolation = "23505"

// Connect opens a pool, verifies it with a ping and applies the schema.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// Repository provides Postgres-backed persistence for users, workouts and templates.
type Repository struct {
	pool *persistence.Lazy[*pgxpool.Pool]
}

// NewRepository constructs a Repository that connects on first use.
func NewRepository(url string, timeout time.Duration) *Repository {
	return &Repository{pool: persistence.NewLazy("postgres",
		func(ctx context.Context) (*pgxpool.Pool, error) { return Connect(ctx, url) },
		func(_ context.Context, pool *pgxpool.Pool) error { pool.Close(); return nil },
		timeout,
	)}
}

// NewRepositoryFromPool wraps an already open pool.
func NewRepositoryFromPool(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: persistence.NewLazy("postgres",
		func(context.Context) (*pgxpool.Pool, error) { return pool, nil },
		nil, 0,
	)}
}

var _ domain.Store = (*Repository)(nil)

// Close releases the pool if it was opened.
func (r *Repository) Close(ctx context.Context) error {
	return r.pool.Close(ctx)
}

// Ping checks connectivity, connecting first if needed.
func (r *Repository) Ping(ctx context.Context) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	return pool.Ping(ctx)
}

const userColumns = `id, email, password_hash, name, reset_token_hash, reset_expires_at, color_scheme, measurement_system, created_at, updated_at`

// CreateUser implements domain.UserRepository.
func (r *Repository) CreateUser(ctx context.Context, user domain.User) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO users (id, email, password_hash, name, color_scheme, measurement_system, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`

	_, err = pool.Exec(ctx, stmt,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		string(user.Preferences.ColorScheme),
		string(user.Preferences.MeasurementSystem),
		user.CreatedAt,
		user.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrEmailTaken
	}
	return err
}

// FindUserByEmail implements domain.UserRepository.
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

// FindUserByID implements domain.UserRepository.
func (r *Repository) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findUser(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *Repository) findUser(ctx context.Context, query string, arg string) (*domain.User, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	var (
		user        domain.User
		resetHash   *string
		colorScheme string
		measurement string
	)
	err = pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&resetHash,
		&user.ResetExpiresAt,
		&colorScheme,
		&measurement,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if resetHash != nil {
		user.ResetTokenHash = *resetHash
	}
	user.Preferences = domain.Preferences{
		ColorScheme:       domain.ColorScheme(colorScheme),
		MeasurementSystem: domain.MeasurementSystem(measurement),
	}
	return &user, nil
}

// SetResetToken implements domain.UserRepository.
func (r *Repository) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		`UPDATE users SET reset_token_hash=$2, reset_expires_at=$3, updated_at=now() WHERE id=$1`,
		userID, tokenHash, expiresAt)
	return err
}

// ConsumeResetToken implements domain.UserRepository. The match, expiry check and clear happen in
// one statement so a token can only be redeemed once.
func (r *Repository) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return false, err
	}

	const stmt = `UPDATE users
        SET password_hash=$2, reset_token_hash=NULL, reset_expires_at=NULL, updated_at=$3
        WHERE reset_token_hash=$1 AND reset_expires_at > $3`

	tag, err := pool.Exec(ctx, stmt, tokenHash, passwordHash, now)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// UpdatePasswordHash implements domain.UserRepository.
func (r *Repository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx, `UPDATE users SET password_hash=$2, updated_at=now() WHERE id=$1`, userID, passwordHash)
	return err
}

// UpdatePreferences implements domain.UserRepository.
func (r *Repository) UpdatePreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	_, err = pool.Exec(ctx,
		`UPDATE users SET color_scheme=$2, measurement_system=$3, updated_at=now() WHERE id=$1`,
		userID, string(prefs.ColorScheme), string(prefs.MeasurementSystem))
	return err
}
