package api

import (
	"strings"
	"time"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

type signupRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,password"`
	Name     string `json:"name" validate:"required,min=1,max=50"`
}

func (r *signupRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
	r.Name = strings.TrimSpace(r.Name)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

func (r *loginRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type forgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

func (r *forgotPasswordRequest) normalize() {
	r.Email = strings.TrimSpace(r.Email)
}

type resetPasswordRequest struct {
	Token    string `json:"token" validate:"required,max=256"`
	Password string `json:"password" validate:"required,password"`
}

func (r *resetPasswordRequest) normalize() {
	r.Token = strings.TrimSpace(r.Token)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,password"`
}

func (r *changePasswordRequest) normalize() {}

type preferencesRequest struct {
	ColorScheme       string `json:"colorScheme" validate:"omitempty,oneof=light dark system"`
	MeasurementSystem string `json:"measurementSystem" validate:"omitempty,oneof=metric imperial"`
}

func (r *preferencesRequest) normalize() {
	r.ColorScheme = strings.TrimSpace(r.ColorScheme)
	r.MeasurementSystem = strings.TrimSpace(r.MeasurementSystem)
}

// overlay applies the supplied fields on top of current.
func (r preferencesRequest) overlay(current domain.Preferences) domain.Preferences {
	if r.ColorScheme != "" {
		current.ColorScheme = domain.ColorScheme(r.ColorScheme)
	}
	if r.MeasurementSystem != "" {
		current.MeasurementSystem = domain.MeasurementSystem(r.MeasurementSystem)
	}
	return current
}

type exerciseRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Sets         *int     `json:"sets" validate:"omitempty,gte=0,lte=100"`
	Reps         *int     `json:"reps" validate:"omitempty,gte=0,lte=1000"`
	Weight       *float64 `json:"weight" validate:"omitempty,gte=0,lte=2000"`
	Duration     *float64 `json:"duration" validate:"omitempty,gte=0,lte=1440"`
	Speed        *float64 `json:"speed" validate:"omitempty,gte=0,lte=100"`
	Distance     *float64 `json:"distance" validate:"omitempty,gte=0,lte=1000"`
	Notes        string   `json:"notes" validate:"max=500"`
	MuscleGroup  string   `json:"muscleGroup" validate:"max=50"`
	WeightType   string   `json:"weightType" validate:"max=30"`
	ExerciseType string   `json:"exerciseType" validate:"required,oneof=Strength Cardio"`
	Completed    bool     `json:"completed"`
}

func (r *exerciseRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = strings.TrimSpace(r.Notes)
	r.MuscleGroup = strings.TrimSpace(r.MuscleGroup)
	r.WeightType = strings.TrimSpace(r.WeightType)
}

func (r exerciseRequest) toDomain() domain.Exercise {
	return domain.Exercise{
		Name:         r.Name,
		Sets:         r.Sets,
		Reps:         r.Reps,
		Weight:       r.Weight,
		Duration:     r.Duration,
		Speed:        r.Speed,
		Distance:     r.Distance,
		Notes:        r.Notes,
		MuscleGroup:  r.MuscleGroup,
		WeightType:   r.WeightType,
		ExerciseType: domain.ExerciseType(r.ExerciseType),
		Completed:    r.Completed,
	}
}

func normalizeExercises(in []exerciseRequest) {
	for i := range in {
		in[i].normalize()
	}
}

func exercisesToDomain(in []exerciseRequest) []domain.Exercise {
	out := make([]domain.Exercise, 0, len(in))
	for _, e := range in {
		out = append(out, e.toDomain())
	}
	return out
}

const maxWorkoutMinutes = 1440

type workoutRequest struct {
	Name      string            `json:"name" validate:"required,min=1,max=100"`
	StartTime *time.Time        `json:"startTime" validate:"required"`
	EndTime   *time.Time        `json:"endTime" validate:"omitempty,gtefield=StartTime"`
	Duration  int               `json:"duration" validate:"gte=0,lte=1440"`
	Notes     string            `json:"notes" validate:"max=1000"`
	Exercises []exerciseRequest `json:"exercises" validate:"max=50,dive"`
}

func (r *workoutRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = strings.TrimSpace(r.Notes)
	normalizeExercises(r.Exercises)
}

// toDraft converts a validated request. A missing duration is derived from the start and end
// times when both are present.
func (r workoutRequest) toDraft() domain.WorkoutDraft {
	duration := r.Duration
	if duration == 0 && r.EndTime != nil {
		duration = int(r.EndTime.Sub(*r.StartTime) / time.Minute)
		if duration > maxWorkoutMinutes {
			duration = maxWorkoutMinutes
		}
	}
	return domain.WorkoutDraft{
		Name:      r.Name,
		StartTime: *r.StartTime,
		EndTime:   r.EndTime,
		Duration:  duration,
		Notes:     r.Notes,
		Exercises: exercisesToDomain(r.Exercises),
	}
}

type templateRequest struct {
	Name      string            `json:"name" validate:"required,min=1,max=100"`
	Duration  int               `json:"duration" validate:"gte=0,lte=1440"`
	Notes     string            `json:"notes" validate:"max=1000"`
	Exercises []exerciseRequest `json:"exercises" validate:"max=50,dive"`
}

func (r *templateRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Notes = strings.TrimSpace(r.Notes)
	normalizeExercises(r.Exercises)
}

func (r templateRequest) toDraft() domain.TemplateDraft {
	return domain.TemplateDraft{
		Name:      r.Name,
		Duration:  r.Duration,
		Notes:     r.Notes,
		Exercises: exercisesToDomain(r.Exercises),
	}
}
