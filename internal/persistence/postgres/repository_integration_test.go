//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("workouts"),
		postgrescontainer.WithUsername("tracker"),
		postgrescontainer.WithPassword("tracker"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, waitForDatabase(ctx, connStr))

	repo := NewRepository(connStr, 30*time.Second)
	t.Cleanup(func() { _ = repo.Close(ctx) })
	return repo
}

func seedUser(t *testing.T, repo *Repository, email string) domain.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Millisecond)
	user := domain.User{
		ID:           domain.NewID(),
		Email:        email,
		PasswordHash: "hash",
		Name:         "Tester",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	require.NoError(t, repo.CreateUser(context.Background(), user))
	return user
}

func TestRepositoryScopesWorkoutsByOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	alice := seedUser(t, repo, "alice@example.com")
	bob := seedUser(t, repo, "bob@example.com")

	reps, weight := 5, 100.0
	now := time.Now().UTC().Truncate(time.Millisecond)
	workout := domain.Workout{
		ID:        domain.NewID(),
		UserID:    alice.ID,
		Name:      "Heavy Squats",
		StartTime: now,
		Duration:  45,
		Exercises: []domain.Exercise{{Name: "Squat", Reps: &reps, Weight: &weight, ExerciseType: domain.ExerciseStrength}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateWorkout(ctx, workout))

	stored, err := repo.GetWorkout(ctx, alice.ID, workout.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Squat", stored.Exercises[0].Name)
	require.Equal(t, 100.0, *stored.Exercises[0].Weight)

	other, err := repo.GetWorkout(ctx, bob.ID, workout.ID)
	require.NoError(t, err)
	require.Nil(t, other)

	replaced, err := repo.ReplaceWorkout(ctx, domain.Workout{ID: workout.ID, UserID: bob.ID, Name: "Hijack", StartTime: now, UpdatedAt: now})
	require.NoError(t, err)
	require.Nil(t, replaced)

	deleted, err := repo.DeleteWorkout(ctx, bob.ID, workout.ID)
	require.NoError(t, err)
	require.False(t, deleted)

	list, err := repo.ListWorkouts(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestRepositoryRejectsDuplicateEmail(t *testing.T) {
	repo := newTestRepository(t)
	seedUser(t, repo, "dup@example.com")

	err := repo.CreateUser(context.Background(), domain.User{ID: domain.NewID(), Email: "dup@example.com", PasswordHash: "x", Name: "Dup"})
	require.ErrorIs(t, err, domain.ErrEmailTaken)
}

func TestRepositoryConsumesResetTokenOnce(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)
	user := seedUser(t, repo, "reset@example.com")
	now := time.Now().UTC()

	require.NoError(t, repo.SetResetToken(ctx, user.ID, "token-hash", now.Add(time.Hour)))

	ok, err := repo.ConsumeResetToken(ctx, "token-hash", "new-hash", now)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = repo.ConsumeResetToken(ctx, "token-hash", "newer-hash", now)
	require.NoError(t, err)
	require.False(t, ok)

	stored, err := repo.FindUserByEmail(ctx, "reset@example.com")
	require.NoError(t, err)
	require.Equal(t, "new-hash", stored.PasswordHash)
	require.Empty(t, stored.ResetTokenHash)
	require.Nil(t, stored.ResetExpiresAt)
}

func waitForDatabase(ctx context.Context, connStr string) error {
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool, err := pgxpool.New(ctx, connStr)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
			if err == nil {
				return nil
			}
		}
		if time.Now().After(deadline) {
			return err
		}
		time.Sleep(time.Second)
	}
}
