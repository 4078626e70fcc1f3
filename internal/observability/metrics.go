package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "workout_tracker"

var (
	workoutPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "last_workout_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent workout written to the store.",
	})

	connectCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "persistence",
		Name:      "connect_attempts_total",
		Help:      "Store connection attempts, labeled by backend and outcome.",
	}, []string{"backend", "outcome"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Time spent serving HTTP requests.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	}, []string{"method", "route"})

	authCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "attempts_total",
		Help:      "Authentication operations, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})

	eventsCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Change events handed to Kafka, labeled by event type and outcome.",
	}, []string{"event_type", "outcome"})

	mailCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "sent_total",
		Help:      "Password reset emails, labeled by outcome.",
	}, []string{"outcome"})
)

func init() {
	prometheus.MustRegister(workoutPersistGauge, connectCounter, httpRequests, httpDuration, authCounter, eventsCounter, mailCounter)
}

// RecordWorkoutPersisted updates the persistence watermark gauge.
func RecordWorkoutPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	workoutPersistGauge.Set(float64(ts.Unix()))
}

// RecordConnect counts a store connection attempt.
func RecordConnect(backend string, err error) {
	connectCounter.WithLabelValues(backend, outcome(err)).Inc()
}

// RecordRequest records a served HTTP request. route should be the matched pattern, not the raw path.
func RecordRequest(method, route string, status int, elapsed time.Duration) {
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// RecordAuth counts an authentication operation such as "login" or "signup".
func RecordAuth(operation string, err error) {
	authCounter.WithLabelValues(operation, outcome(err)).Inc()
}

// RecordPublish counts an event publish attempt.
func RecordPublish(eventType string, err error) {
	eventsCounter.WithLabelValues(eventType, outcome(err)).Inc()
}

// RecordMail counts a password reset delivery attempt.
func RecordMail(err error) {
	mailCounter.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
