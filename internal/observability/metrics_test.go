package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func TestRecordWorkoutPersisted(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	RecordWorkoutPersisted(ts)

	var m dto.Metric
	require.NoError(t, workoutPersistGauge.Write(&m))
	require.Equal(t, float64(ts.Unix()), m.GetGauge().GetValue())

	RecordWorkoutPersisted(time.Time{})
	require.NoError(t, workoutPersistGauge.Write(&m))
	require.Equal(t, float64(ts.Unix()), m.GetGauge().GetValue())
}

func TestRecordAuthSplitsOutcomes(t *testing.T) {
	ok := authCounter.WithLabelValues("login", "ok")
	failed := authCounter.WithLabelValues("login", "error")
	okBefore, failedBefore := counterValue(t, ok), counterValue(t, failed)

	RecordAuth("login", nil)
	RecordAuth("login", errors.New("invalid credentials"))
	RecordAuth("login", errors.New("invalid credentials"))

	require.Equal(t, okBefore+1, counterValue(t, ok))
	require.Equal(t, failedBefore+2, counterValue(t, failed))
}

func TestRecordRequest(t *testing.T) {
	c := httpRequests.WithLabelValues("GET", "/api/workouts", "200")
	before := counterValue(t, c)

	RecordRequest("GET", "/api/workouts", 200, 15*time.Millisecond)

	require.Equal(t, before+1, counterValue(t, c))
}
