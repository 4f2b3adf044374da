package handler

import (
	"log/slog"
	"net/http"

	"github.com/Rohitkumar43/coditor/internal/auth"
	"github.com/Rohitkumar43/coditor/internal/service"
)

// UserHandler serves profile lookups.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, logger: logger}
}

// HandleMe returns the authenticated caller's profile.
//
// HTTP: GET /api/me (RequireAuth)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		// Unreachable behind RequireAuth, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "valid authentication required",
		})
		return
	}

	user, err := h.users.GetUser(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleGetByID returns a public profile by subject.
//
// HTTP: GET /api/users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
