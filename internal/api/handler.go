// Package api exposes the HTTP surface of the workout tracker.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	authn "github.com/johnnywrightiv/workout-tracker-sub000/internal/auth"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/validation"
	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

const maxBodyBytes = 1 << 20

// Dependencies are the collaborators a Handler needs.
type Dependencies struct {
	Accounts   *domain.AccountService
	Workouts   *domain.WorkoutService
	Templates  *domain.TemplateService
	Verifier   sessionauth.Verifier
	Cookies    authn.CookieWriter
	Ready      func(ctx context.Context) error
	CORSOrigin string
	Logger     zerolog.Logger
}

// Handler coordinates HTTP requests with the domain services.
type Handler struct {
	accounts   *domain.AccountService
	workouts   *domain.WorkoutService
	templates  *domain.TemplateService
	verifier   sessionauth.Verifier
	cookies    authn.CookieWriter
	ready      func(ctx context.Context) error
	corsOrigin string
	logger     zerolog.Logger
}

// NewHandler builds a Handler.
func NewHandler(deps Dependencies) *Handler {
	return &Handler{
		accounts:   deps.Accounts,
		workouts:   deps.Workouts,
		templates:  deps.Templates,
		verifier:   deps.Verifier,
		cookies:    deps.Cookies,
		ready:      deps.Ready,
		corsOrigin: deps.CORSOrigin,
		logger:     deps.Logger,
	}
}

// Routes assembles the router: request ids, logging, panic recovery, CORS, the route guard and
// session resolution run in that order before any handler.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(h.logRequests)
	r.Use(chimw.Recoverer)
	r.Use(h.cors)
	r.Use(authn.NewGuard(authn.GuardConfig{}).Wrap)
	r.Use(sessionauth.NewMiddleware(h.verifier).Wrap)

	r.Get("/healthz", healthz)
	r.Get("/readyz", h.readyz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/signup", h.signup)
			r.Post("/login", h.login)
			r.Post("/logout", h.logout)
			r.Get("/check", h.check)
			r.Post("/forgot-password", h.forgotPassword)
			r.Post("/reset-password", h.resetPassword)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/preferences", h.getPreferences)
			r.Put("/preferences", h.updatePreferences)
			r.Put("/password", h.changePassword)
		})

		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", h.listWorkouts)
			r.Post("/", h.createWorkout)
			r.Get("/{id}", h.getWorkout)
			r.Put("/{id}", h.replaceWorkout)
			r.Delete("/{id}", h.deleteWorkout)
		})

		r.Route("/templates", func(r chi.Router) {
			r.Get("/", h.listTemplates)
			r.Post("/", h.createTemplate)
			r.Get("/{id}", h.getTemplate)
			r.Put("/{id}", h.replaceTemplate)
			r.Delete("/{id}", h.deleteTemplate)
		})

		r.Get("/progress", h.progress)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})
	return r
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// readyz reports whether the backing store is reachable, connecting if needed.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if h.ready != nil {
		if err := h.ready(r.Context()); err != nil {
			h.logger.Warn().Err(err).Msg("readiness check failed")
			writeError(w, http.StatusServiceUnavailable, "unavailable", "store unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// identity returns the verified session identity, writing a 401 when there is none.
func (h *Handler) identity(w http.ResponseWriter, r *http.Request) (sessionauth.Identity, bool) {
	identity, ok := sessionauth.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return sessionauth.Identity{}, false
	}
	return identity, true
}

// decode reads a JSON body into dst and validates it, writing the 400 response on failure.
// Keys outside the request schema are rejected.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{ normalize() }) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid_request", "request body is required")
			return false
		}
		if field, ok := unknownField(err); ok {
			writeValidationError(w, &validation.Error{Fields: []validation.FieldError{{Field: field, Message: "is not an accepted field"}}})
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return false
	}
	dst.normalize()

	if err := validation.Struct(dst); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeValidationError(w, verr)
			return false
		}
		h.serverError(w, r, err)
		return false
	}
	return true
}

// unknownField extracts the offending key from the decoder's unknown-field error.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

// serverError logs err with the request id and answers with a generic 500.
func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error().
		Err(err).
		Str("request_id", chimw.GetReqID(r.Context())).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeError(w, http.StatusInternalServerError, "server_error", "An unexpected error occurred")
}

type errorResponse struct {
	Type   string                  `json:"type"`
	Detail string                  `json:"detail"`
	Errors []validation.FieldError `json:"errors,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Type: code, Detail: detail})
}

func writeValidationError(w http.ResponseWriter, err *validation.Error) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Type:   "validation_failed",
		Detail: "Request validation failed",
		Errors: err.Fields,
	})
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
