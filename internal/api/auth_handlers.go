package api

import (
	"errors"
	"net/http"

	"github.com/johnnywrightiv/workout-tracker-sub000/internal/domain"
	"github.com/johnnywrightiv/workout-tracker-sub000/internal/observability"
	sessionauth "github.com/johnnywrightiv/workout-tracker-sub000/pkg/auth"
)

const (
	invalidCredentialsDetail = "Invalid credentials"
	forgotPasswordMessage    = "If an account exists for that email, a password reset link has been sent."
)

// UserView is the public summary of an account.
type UserView struct {
	ID          string             `json:"id"`
	Email       string             `json:"email"`
	Name        string             `json:"name"`
	Preferences domain.Preferences `json:"preferences"`
}

func toUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Email: u.Email, Name: u.Name, Preferences: u.Preferences.Merged()}
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	User UserView `json:"user"`
}

// CheckResponse reports the session state of the caller.
type CheckResponse struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *UserView `json:"user,omitempty"`
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, session, err := h.accounts.Signup(r.Context(), domain.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	observability.RecordAuth("signup", err)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "conflict", "An account with this email already exists")
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.cookies.Set(w, session.Token)
	writeJSON(w, http.StatusCreated, AuthResponse{User: toUserView(*user)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, session, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	observability.RecordAuth("login", err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "unauthorized", invalidCredentialsDetail)
			return
		}
		h.serverError(w, r, err)
		return
	}

	h.cookies.Set(w, session.Token)
	writeJSON(w, http.StatusOK, AuthResponse{User: toUserView(*user)})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	identity, ok := sessionauth.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, CheckResponse{IsAuthenticated: false})
		return
	}

	user, err := h.accounts.CurrentUser(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			writeJSON(w, http.StatusUnauthorized, CheckResponse{IsAuthenticated: false})
			return
		}
		h.serverError(w, r, err)
		return
	}

	view := toUserView(*user)
	writeJSON(w, http.StatusOK, CheckResponse{IsAuthenticated: true, User: &view})
}

func (h *Handler) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.accounts.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: forgotPasswordMessage})
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	err := h.accounts.ResetPassword(r.Context(), req.Token, req.Password)
	observability.RecordAuth("reset", err)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidResetToken) {
			writeError(w, http.StatusBadRequest, "invalid_token", "Invalid or expired reset token")
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Password has been reset"})
}
