package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	workouts, err := h.workouts.List(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *Handler) createWorkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req workoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	workout, err := h.workouts.Create(r.Context(), identity.UserID, req.toDraft())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	workout, err := h.workouts.Get(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.recordError(w, r, err, "workout")
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) replaceWorkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		h.recordError(w, r, domain.ErrInvalidID, "workout")
		return
	}

	var req workoutRequest
	if !h.decode(w, r, &req) {
		return
	}

	workout, err := h.workouts.Replace(r.Context(), identity.UserID, id, req.toDraft())
	if err != nil {
		h.recordError(w, r, err, "workout")
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.workouts.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		h.recordError(w, r, err, "workout")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Workout deleted"})
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	summary, err := h.workouts.Progress(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// recordError maps owner-scoped lookup failures. A record owned by someone else is reported
// exactly like a missing one.
func (h *Handler) recordError(w http.ResponseWriter, r *http.Request, err error, kind string) {
	switch {
	case errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid_id", "invalid "+kind+" id")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", kind+" not found")
	default:
		h.serverError(w, r, err)
	}
}
