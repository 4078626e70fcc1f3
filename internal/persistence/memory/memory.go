// Package memory provides an in-process Store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

// Store keeps users, workouts and templates in maps guarded by a single lock.
type Store struct {
	mu        sync.RWMutex
	users     map[string]domain.User
	emails    map[string]string
	workouts  map[string]domain.Workout
	templates map[string]domain.Template
}

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		users:     make(map[string]domain.User),
		emails:    make(map[string]string),
		workouts:  make(map[string]domain.Workout),
		templates: make(map[string]domain.Template),
	}
}

var _ domain.Store = (*Store)(nil)

// CreateUser implements domain.UserRepository.
func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.emails[user.Email]; taken {
		return domain.ErrEmailTaken
	}
	s.users[user.ID] = user
	s.emails[user.Email] = user.ID
	return nil
}

// FindUserByEmail implements domain.UserRepository.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.emails[email]
	if !ok {
		return nil, nil
	}
	user := s.users[id]
	return &user, nil
}

// FindUserByID implements domain.UserRepository.
func (s *Store) FindUserByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

// SetResetToken implements domain.UserRepository.
func (s *Store) SetResetToken(ctx context.Context, userID, tokenHash string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil
	}
	user.ResetTokenHash = tokenHash
	user.ResetExpiresAt = &expiresAt
	user.UpdatedAt = time.Now().UTC()
	s.users[userID] = user
	return nil
}

// ConsumeResetToken implements domain.UserRepository.
func (s *Store) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, user := range s.users {
		if user.ResetTokenHash == "" || user.ResetTokenHash != tokenHash {
			continue
		}
		if user.ResetExpiresAt == nil || !now.Before(*user.ResetExpiresAt) {
			return false, nil
		}
		user.PasswordHash = passwordHash
		user.ResetTokenHash = ""
		user.ResetExpiresAt = nil
		user.UpdatedAt = now
		s.users[id] = user
		return true, nil
	}
	return false, nil
}

// UpdatePasswordHash implements domain.UserRepository.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		user.PasswordHash = passwordHash
		user.UpdatedAt = time.Now().UTC()
		s.users[userID] = user
	}
	return nil
}

// UpdatePreferences implements domain.UserRepository.
func (s *Store) UpdatePreferences(ctx context.Context, userID string, prefs domain.Preferences) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[userID]; ok {
		user.Preferences = prefs
		user.UpdatedAt = time.Now().UTC()
		s.users[userID] = user
	}
	return nil
}

// ListWorkouts implements domain.WorkoutRepository.
func (s *Store) ListWorkouts(ctx context.Context, ownerID string) ([]domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Workout, 0)
	for _, w := range s.workouts {
		if w.UserID == ownerID {
			out = append(out, cloneWorkout(w))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.After(out[j].StartTime) })
	return out, nil
}

// GetWorkout implements domain.WorkoutRepository.
func (s *Store) GetWorkout(ctx context.Context, ownerID, id string) (*domain.Workout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.workouts[id]
	if !ok || w.UserID != ownerID {
		return nil, nil
	}
	w = cloneWorkout(w)
	return &w, nil
}

// CreateWorkout implements domain.WorkoutRepository.
func (s *Store) CreateWorkout(ctx context.Context, workout domain.Workout) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workouts[workout.ID] = cloneWorkout(workout)
	return nil
}

// ReplaceWorkout implements domain.WorkoutRepository.
func (s *Store) ReplaceWorkout(ctx context.Context, workout domain.Workout) (*domain.Workout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.workouts[workout.ID]
	if !ok || existing.UserID != workout.UserID {
		return nil, nil
	}
	workout.CreatedAt = existing.CreatedAt
	s.workouts[workout.ID] = cloneWorkout(workout)
	out := cloneWorkout(workout)
	return &out, nil
}

// DeleteWorkout implements domain.WorkoutRepository.
func (s *Store) DeleteWorkout(ctx context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workouts[id]
	if !ok || w.UserID != ownerID {
		return false, nil
	}
	delete(s.workouts, id)
	return true, nil
}

// ListTemplates implements domain.TemplateRepository.
func (s *Store) ListTemplates(ctx context.Context, ownerID string) ([]domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Template, 0)
	for _, t := range s.templates {
		if t.UserID == ownerID {
			out = append(out, cloneTemplate(t))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// GetTemplate implements domain.TemplateRepository.
func (s *Store) GetTemplate(ctx context.Context, ownerID, id string) (*domain.Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != ownerID {
		return nil, nil
	}
	t = cloneTemplate(t)
	return &t, nil
}

// CreateTemplate implements domain.TemplateRepository.
func (s *Store) CreateTemplate(ctx context.Context, template domain.Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.templates[template.ID] = cloneTemplate(template)
	return nil
}

// ReplaceTemplate implements domain.TemplateRepository.
func (s *Store) ReplaceTemplate(ctx context.Context, template domain.Template) (*domain.Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.templates[template.ID]
	if !ok || existing.UserID != template.UserID {
		return nil, nil
	}
	template.CreatedAt = existing.CreatedAt
	s.templates[template.ID] = cloneTemplate(template)
	out := cloneTemplate(template)
	return &out, nil
}

// DeleteTemplate implements domain.TemplateRepository.
func (s *Store) DeleteTemplate(ctx context.Context, ownerID, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.templates[id]
	if !ok || t.UserID != ownerID {
		return false, nil
	}
	delete(s.templates, id)
	return true, nil
}

func cloneWorkout(w domain.Workout) domain.Workout {
	w.Exercises = append([]domain.Exercise{}, w.Exercises...)
	return w
}

func cloneTemplate(t domain.Template) domain.Template {
	t.Exercises = append([]domain.Exercise{}, t.Exercises...)
	return t
}
