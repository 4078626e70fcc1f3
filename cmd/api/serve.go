package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/api"
	authn "github.com/johnnywrightiv/workout-tracker-sub000/internal/auth"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/config"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/events"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/logging"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/mail"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/persistence/backend"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/telemetry"
	httptransport "github.com/johnnywrightiv/workout-tracker-sub000/internal/transport/http"
	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

const serviceName = "workout-tracker"

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTPAddress = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides HTTP_ADDRESS)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: serviceName}, os.Stdout)

	shutdownTracing := telemetry.Setup(ctx, telemetry.Config{
		ServiceName: serviceName,
		Endpoint:    cfg.OTLPEndpoint,
		Insecure:    cfg.OTLPInsecure,
	}, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("tracer shutdown failed")
		}
	}()

	store, kind, err := backend.Open(cfg.DatabaseURL, backend.Options{
		MongoDatabase:  cfg.MongoDatabase,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Warn().Err(err).Msg("store close failed")
		}
	}()
	logger.Info().Str("backend", kind).Msg("store configured")

	tokens, err := sessionauth.NewTokenService(sessionauth.Config{
		Secret: cfg.JWTSecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return err
	}

	publisher, closePublisher := newPublisher(cfg, logger)
	defer closePublisher()

	accounts := domain.NewAccountService(store, authn.NewHasher(cfg.BcryptCost), tokens, newMailer(cfg, logger),
		domain.AccountConfig{BaseURL: cfg.BaseURL, ResetTTL: cfg.ResetTTL}, logger)

	handler := api.NewHandler(api.Dependencies{
		Accounts:   accounts,
		Workouts:   domain.NewWorkoutService(store, publisher, logger),
		Templates:  domain.NewTemplateService(store, publisher, logger),
		Verifier:   tokens,
		Cookies:    authn.CookieWriter{Secure: cfg.Production(), MaxAge: tokens.TTL()},
		Ready:      store.Ping,
		CORSOrigin: cfg.CORSOrigin,
		Logger:     logger,
	})

	server := httptransport.NewServer(httptransport.DefaultServerConfig(cfg.HTTPAddress),
		otelhttp.NewHandler(handler.Routes(), serviceName), logger)
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info().Msg("shutdown complete")
	return nil
}

func newMailer(cfg config.Config, logger zerolog.Logger) domain.Mailer {
	if cfg.EmailAPIKey == "" {
		logger.Warn().Msg("EMAIL_API_KEY not set, password reset links will only be logged")
		return mail.NewLogMailer(logger)
	}
	return mail.NewHTTPMailer(cfg.EmailAPIURL, cfg.EmailAPIKey, cfg.EmailFrom, 10*time.Second)
}

func newPublisher(cfg config.Config, logger zerolog.Logger) (domain.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return domain.NoopPublisher{}, func() {}
	}
	publisher := events.NewPublisher(events.NewKafkaProducer(cfg.KafkaBrokers), cfg.EventsTopic)
	logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.EventsTopic).Msg("event publishing enabled")
	return publisher, func() {
		if err := publisher.Close(); err != nil {
			logger.Warn().Err(err).Msg("event producer close failed")
		}
	}
}
