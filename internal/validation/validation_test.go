package validation

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type sampleItem struct {
	Name string `json:"name" validate:"required,max=5"`
}

type samplePayload struct {
	Email    string       `json:"email" validate:"required,email"`
	Password string       `json:"password" validate:"password"`
	Scheme   string       `json:"colorScheme" validate:"required,oneof=light dark system"`
	Start    time.Time    `json:"startTime" validate:"required"`
	End      *time.Time   `json:"endTime" validate:"omitempty,gtefield=Start"`
	Items    []sampleItem `json:"items" validate:"max=2,dive"`
}

func TestStructAcceptsValidPayload(t *testing.T) {
	start := time.Now()
	end := start.Add(time.Hour)
	err := Struct(samplePayload{
		Email:    "a@x.com",
		Password: "Abcdefg1!",
		Scheme:   "dark",
		Start:    start,
		End:      &end,
		Items:    []sampleItem{{Name: "squat"}},
	})
	require.NoError(t, err)
}

func TestStructReportsEveryViolation(t *testing.T) {
	start := time.Now()
	end := start.Add(-time.Minute)
	err := Struct(samplePayload{
		Email:    "nope",
		Password: "short",
		Scheme:   "green",
		Start:    start,
		End:      &end,
		Items:    []sampleItem{{Name: "deadlift"}},
	})

	var verr *Error
	require.True(t, errors.As(err, &verr))

	byField := map[string]string{}
	for _, f := range verr.Fields {
		byField[f.Field] = f.Message
	}
	require.Equal(t, "must be a valid email address", byField["email"])
	require.Contains(t, byField, "password")
	require.Equal(t, "must be one of: light, dark, system", byField["colorScheme"])
	require.Equal(t, "must not be before start", byField["endTime"])
	require.Equal(t, "must be at most 5 characters", byField["items[0].name"])
}

func TestStrongPasswordRules(t *testing.T) {
	type payload struct {
		Password string `json:"password" validate:"password"`
	}
	require.NoError(t, Struct(payload{Password: "Abcdefg1!"}))
	for _, weak := range []string{"abcdefg1!", "ABCDEFG1!", "Abcdefgh!", "Abcdefg12", "Ab1!"} {
		require.Error(t, Struct(payload{Password: weak}), weak)
	}
}
