// Package events defines the payloads published when owner-scoped records change.
package events

import "time"

// Event types emitted by the API.
const (
	WorkoutLogged   = "workout.logged"
	WorkoutUpdated  = "workout.updated"
	WorkoutDeleted  = "workout.deleted"
	TemplateSaved   = "template.saved"
	TemplateUpdated = "template.updated"
	TemplateDeleted = "template.deleted"
)

// WorkoutChanged is emitted when a workout is created, replaced or deleted. Deletion events
// carry only the ids.
type WorkoutChanged struct {
	WorkoutID     string     `json:"workout_id"`
	UserID        string     `json:"user_id"`
	Name          string     `json:"name,omitempty"`
	StartTime     *time.Time `json:"start_time,omitempty"`
	DurationMin   int        `json:"duration_min,omitempty"`
	ExerciseCount int        `json:"exercise_count"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// TemplateChanged is emitted when a template is created, replaced or deleted.
type TemplateChanged struct {
	TemplateID    string    `json:"template_id"`
	UserID        string    `json:"user_id"`
	Name          string    `json:"name,omitempty"`
	ExerciseCount int       `json:"exercise_count"`
	OccurredAt    time.Time `json:"occurred_at"`
}
