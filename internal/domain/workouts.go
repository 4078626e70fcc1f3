package domain

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/observability"
	"github.com/johnnywrightiv/workout-tracker-sub000/pkg/events"
)

// WorkoutDraft carries the validated, client-supplied fields of a workout.
type WorkoutDraft struct {
	Name      string
	StartTime time.Time
	EndTime   *time.Time
	Duration  int
	Notes     string
	Exercises []Exercise
}

// WorkoutService runs owner-scoped workout operations.
type WorkoutService struct {
	repo      WorkoutRepository
	publisher Publisher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewWorkoutService constructs a WorkoutService.
func NewWorkoutService(repo WorkoutRepository, publisher Publisher, logger zerolog.Logger) *WorkoutService {
	if publisher == nil {
		publisher = NoopPublisher{}
	}
	return &WorkoutService{repo: repo, publisher: publisher, now: time.Now, logger: logger}
}

// List returns every workout owned by userID, most recent first.
func (s *WorkoutService) List(ctx context.Context, userID string) ([]Workout, error) {
	workouts, err := s.repo.ListWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}
	if workouts == nil {
		workouts = []Workout{}
	}
	return workouts, nil
}

// Get fetches one workout by id for its owner.
func (s *WorkoutService) Get(ctx context.Context, userID, id string) (*Workout, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	workout, err := s.repo.GetWorkout(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if workout == nil || !BelongsTo(*workout, userID) {
		return nil, ErrNotFound
	}
	return workout, nil
}

// Create stores a new workout owned by userID.
func (s *WorkoutService) Create(ctx context.Context, userID string, draft WorkoutDraft) (*Workout, error) {
	now := s.now().UTC()
	workout := draft.apply(Workout{ID: NewID(), UserID: userID, CreatedAt: now}, now)
	if err := s.repo.CreateWorkout(ctx, workout); err != nil {
		return nil, err
	}
	observability.RecordWorkoutPersisted(now)
	s.publish(ctx, events.WorkoutLogged, workout)
	return &workout, nil
}

// Replace overwrites a workout as a whole document. Records owned by someone else are
// reported as ErrNotFound.
func (s *WorkoutService) Replace(ctx context.Context, userID, id string, draft WorkoutDraft) (*Workout, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}
	now := s.now().UTC()
	stored, err := s.repo.ReplaceWorkout(ctx, draft.apply(Workout{ID: id, UserID: userID}, now))
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	observability.RecordWorkoutPersisted(now)
	s.publish(ctx, events.WorkoutUpdated, *stored)
	return stored, nil
}

// Delete removes a workout owned by userID.
func (s *WorkoutService) Delete(ctx context.Context, userID, id string) error {
	if !ValidID(id) {
		return ErrInvalidID
	}
	deleted, err := s.repo.DeleteWorkout(ctx, userID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	s.publish(ctx, events.WorkoutDeleted, Workout{ID: id, UserID: userID})
	return nil
}

// Progress summarises every workout owned by userID.
func (s *WorkoutService) Progress(ctx context.Context, userID string) (Progress, error) {
	workouts, err := s.repo.ListWorkouts(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	return Summarize(workouts, s.now()), nil
}

func (s *WorkoutService) publish(ctx context.Context, eventType string, w Workout) {
	payload := events.WorkoutChanged{
		WorkoutID:     w.ID,
		UserID:        w.UserID,
		Name:          w.Name,
		DurationMin:   w.Duration,
		ExerciseCount: len(w.Exercises),
		OccurredAt:    s.now().UTC(),
	}
	if !w.StartTime.IsZero() {
		start := w.StartTime
		payload.StartTime = &start
	}
	if err := s.publisher.Publish(ctx, eventType, w.UserID, payload); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Str("workout_id", w.ID).Msg("publish event")
	}
}

func (d WorkoutDraft) apply(w Workout, now time.Time) Workout {
	w.Name = d.Name
	w.StartTime = d.StartTime.UTC()
	if d.EndTime != nil {
		end := d.EndTime.UTC()
		w.EndTime = &end
	}
	w.Duration = d.Duration
	w.Notes = d.Notes
	w.Exercises = d.Exercises
	if w.Exercises == nil {
		w.Exercises = []Exercise{}
	}
	w.UpdatedAt = now
	return w
}
