package domain

import (
	"time"

	"github.com/google/uuid"
)

// ExerciseType distinguishes strength work from cardio.
type ExerciseType string

const (
	ExerciseStrength ExerciseType = "Strength"
	ExerciseCardio   ExerciseType = "Cardio"
)

// Exercise is embedded in exactly one Workout or Template and has no identity of its own.
type Exercise struct {
	Name         string       `json:"name" bson:"name"`
	Sets         *int         `json:"sets,omitempty" bson:"sets,omitempty"`
	Reps         *int         `json:"reps,omitempty" bson:"reps,omitempty"`
	Weight       *float64     `json:"weight,omitempty" bson:"weight,omitempty"`
	Duration     *float64     `json:"duration,omitempty" bson:"duration,omitempty"`
	Speed        *float64     `json:"speed,omitempty" bson:"speed,omitempty"`
	Distance     *float64     `json:"distance,omitempty" bson:"distance,omitempty"`
	Notes        string       `json:"notes,omitempty" bson:"notes,omitempty"`
	MuscleGroup  string       `json:"muscleGroup,omitempty" bson:"muscleGroup,omitempty"`
	WeightType   string       `json:"weightType,omitempty" bson:"weightType,omitempty"`
	ExerciseType ExerciseType `json:"exerciseType" bson:"exerciseType"`
	Completed    bool         `json:"completed" bson:"completed"`
}

// Workout is a logged training session owned by a single user.
type Workout struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    string     `json:"userId" bson:"userId"`
	Name      string     `json:"name" bson:"name"`
	StartTime time.Time  `json:"startTime" bson:"startTime"`
	EndTime   *time.Time `json:"endTime,omitempty" bson:"endTime,omitempty"`
	Duration  int        `json:"duration" bson:"duration"`
	Notes     string     `json:"notes" bson:"notes"`
	Exercises []Exercise `json:"exercises" bson:"exercises"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Template is a named, reusable blueprint of exercises.
type Template struct {
	ID        string     `json:"id" bson:"_id"`
	UserID    string     `json:"userId" bson:"userId"`
	Name      string     `json:"name" bson:"name"`
	Duration  int        `json:"duration" bson:"duration"`
	Notes     string     `json:"notes" bson:"notes"`
	Exercises []Exercise `json:"exercises" bson:"exercises"`
	CreatedAt time.Time  `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt" bson:"updatedAt"`
}

// Owned is implemented by every owner-scoped record.
type Owned interface {
	OwnerID() string
}

// OwnerID implements Owned.
func (w Workout) OwnerID() string { return w.UserID }

// OwnerID implements Owned.
func (t Template) OwnerID() string { return t.UserID }

// BelongsTo is the single authorization predicate for owner-scoped records.
func BelongsTo(resource Owned, userID string) bool {
	if resource == nil || userID == "" {
		return false
	}
	return resource.OwnerID() == userID
}

// ValidID reports whether id is a well-formed record identifier.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}
