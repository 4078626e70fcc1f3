// Package config centralises configuration parsing for the workout tracker.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config captures runtime configuration values for the API process.
type Config struct {
	HTTPAddress string
	Environment string

	DatabaseURL      string
	MongoDatabase    string
	DBConnectTimeout time.Duration

	JWTSecret  string
	JWTIssuer  string
	SessionTTL time.Duration
	ResetTTL   time.Duration
	BcryptCost int

	EmailAPIKey string
	EmailAPIURL string
	EmailFrom   string
	BaseURL     string

	KafkaBrokers []string
	EventsTopic  string

	CORSOrigin string
	LogLevel   string
	LogFormat  string

	OTLPEndpoint string
	OTLPInsecure bool
}

// Production reports whether the process runs with production settings (secure cookies,
// mandatory email credentials).
func (c Config) Production() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Load reads .env (when present) and environment variables into Config. Missing required values
// are reported together.
func Load() (Config, error) {
	// A missing .env is the normal case outside local development.
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddress:      getEnv("HTTP_ADDRESS", ":8080"),
		Environment:      getEnv("APP_ENV", "development"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MongoDatabase:    getEnv("MONGO_DATABASE", "workout_tracker"),
		DBConnectTimeout: getDurationEnv("DB_CONNECT_TIMEOUT", 10*time.Second),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "workout-tracker"),
		SessionTTL:       getDurationEnv("SESSION_TTL", time.Hour),
		ResetTTL:         getDurationEnv("RESET_TOKEN_TTL", time.Hour),
		BcryptCost:       getIntEnv("BCRYPT_COST", 10),
		EmailAPIKey:      getEnv("EMAIL_API_KEY", ""),
		EmailAPIURL:      getEnv("EMAIL_API_URL", "https://api.resend.com/emails"),
		EmailFrom:        getEnv("EMAIL_FROM", "Workout Tracker <no-reply@workout-tracker.local>"),
		BaseURL:          strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		KafkaBrokers:     splitAndTrim(getEnv("KAFKA_BROKERS", "")),
		EventsTopic:      getEnv("EVENTS_TOPIC", "workout_events"),
		CORSOrigin:       getEnv("CORS_ORIGIN", "http://localhost:3000"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		OTLPEndpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		OTLPInsecure:     getBoolEnv("OTEL_EXPORTER_OTLP_INSECURE", false),
	}
	return cfg, cfg.Validate()
}

// Validate reports every missing required setting.
func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.Production() && c.EmailAPIKey == "" {
		errs = append(errs, errors.New("EMAIL_API_KEY is required in production"))
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func splitAndTrim(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
