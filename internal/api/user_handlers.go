package api

import (
	"errors"
	"net/http"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

func (h *Handler) getPreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	prefs, err := h.accounts.Preferences(r.Context(), identity.UserID)
	if err != nil {
		h.accountError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req preferencesRequest
	if !h.decode(w, r, &req) {
		return
	}

	current, err := h.accounts.Preferences(r.Context(), identity.UserID)
	if err != nil {
		h.accountError(w, r, err)
		return
	}

	prefs, err := h.accounts.UpdatePreferences(r.Context(), identity.UserID, req.overlay(current))
	if err != nil {
		h.accountError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.accounts.ChangePassword(r.Context(), identity.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		h.accountError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password updated"})
}

func (h *Handler) accountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case errors.Is(err, domain.ErrInvalidPreferences):
		writeError(w, http.StatusBadRequest, "validation_failed", "Invalid preference values")
	case errors.Is(err, domain.ErrIncorrectPassword):
		writeError(w, http.StatusBadRequest, "incorrect_password", "Current password is incorrect")
	default:
		h.serverError(w, r, err)
	}
}
