package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

const workoutColumns = `id, user_id, name, start_time, end_time, duration, notes, exercises, created_at, updated_at`

// ListWorkouts implements domain.WorkoutRepository.
func (r *Repository) ListWorkouts(ctx context.Context, ownerID string) ([]domain.Workout, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := pool.Query(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE user_id=$1 ORDER BY start_time DESC, id`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	workouts := make([]domain.Workout, 0)
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// GetWorkout implements domain.WorkoutRepository.
func (r *Repository) GetWorkout(ctx context.Context, ownerID, id string) (*domain.Workout, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}

	row := pool.QueryRow(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id=$1 AND user_id=$2`, id, ownerID)
	w, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

// CreateWorkout implements domain.WorkoutRepository.
func (r *Repository) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return err
	}
	exercises, err := json.Marshal(workout.Exercises)
	if err != nil {
		return err
	}

	const stmt = `INSERT INTO workouts (` + workoutColumns + `) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`
	_, err = pool.Exec(ctx, stmt,
		workout.ID,
		workout.UserID,
		workout.Name,
		workout.StartTime,
		workout.EndTime,
		workout.Duration,
		workout.Notes,
		exercises,
		workout.CreatedAt,
		workout.UpdatedAt,
	)
	return err
}

// ReplaceWorkout implements domain.WorkoutRepository.
func (r *Repository) ReplaceWorkout(ctx context.Context, workout domain.Workout) (*domain.Workout, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	exercises, err := json.Marshal(workout.Exercises)
	if err != nil {
		return nil, err
	}

	const stmt = `UPDATE workouts
        SET name=$3, start_time=$4, end_time=$5, duration=$6, notes=$7, exercises=$8, updated_at=$9
        WHERE id=$1 AND user_id=$2
        RETURNING ` + workoutColumns

	row := pool.QueryRow(ctx, stmt,
		workout.ID,
		workout.UserID,
		workout.Name,
		workout.StartTime,
		workout.EndTime,
		workout.Duration,
		workout.Notes,
		exercises,
		workout.UpdatedAt,
	)
	stored, err := scanWorkout(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return stored, err
}

// DeleteWorkout implements domain.WorkoutRepository.
func (r *Repository) DeleteWorkout(ctx context.Context, ownerID, id string) (bool, error) {
	pool, err := r.pool.Get(ctx)
	if err != nil {
		return false, err
	}
	tag, err := pool.Exec(ctx, `DELETE FROM workouts WHERE id=$1 AND user_id=$2`, id, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func scanWorkout(row pgx.Row) (*domain.Workout, error) {
	var (
		w         domain.Workout
		exercises []byte
	)
	if err := row.Scan(&w.ID, &w.UserID, &w.Name, &w.StartTime, &w.EndTime, &w.Duration, &w.Notes, &exercises, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decodeExercises(exercises, &w.Exercises); err != nil {
		return nil, err
	}
	return &w, nil
}

func decodeExercises(raw []byte, out *[]domain.Exercise) error {
	*out = []domain.Exercise{}
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
