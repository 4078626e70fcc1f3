package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
)

func (h *Handler) listTemplates(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	templates, err := h.templates.List(r.Context(), identity.UserID)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

func (h *Handler) createTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req templateRequest
	if !h.decode(w, r, &req) {
		return
	}

	template, err := h.templates.Create(r.Context(), identity.UserID, req.toDraft())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, template)
}

func (h *Handler) getTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	template, err := h.templates.Get(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		h.recordError(w, r, err, "template")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *Handler) replaceTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if !domain.ValidID(id) {
		h.recordError(w, r, domain.ErrInvalidID, "template")
		return
	}

	var req templateRequest
	if !h.decode(w, r, &req) {
		return
	}

	template, err := h.templates.Replace(r.Context(), identity.UserID, id, req.toDraft())
	if err != nil {
		h.recordError(w, r, err, "template")
		return
	}
	writeJSON(w, http.StatusOK, template)
}

func (h *Handler) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	if err := h.templates.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		h.recordError(w, r, err, "template")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Template deleted"})
}
