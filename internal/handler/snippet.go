package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rohitkumar43/coditor/internal/auth"
	"github.com/Rohitkumar43/coditor/internal/service"
)

// SnippetHandler manages saved snippets, stars, and comments.
type SnippetHandler struct {
	snippets *service.SnippetService
	logger   *slog.Logger
}

// NewSnippetHandler creates a SnippetHandler.
func NewSnippetHandler(snippets *service.SnippetService, logger *slog.Logger) *SnippetHandler {
	return &SnippetHandler{snippets: snippets, logger: logger}
}

type createSnippetRequest struct {
	Title    string `json:"title"`
	Language string `json:"language"`
	Code     string `json:"code"`
}

// HandleCreate saves a new snippet for the caller.
//
// HTTP: POST /api/snippets (RequireAuth)
func (h *SnippetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	var req createSnippetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid snippet JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	snippet, err := h.snippets.Create(r.Context(), caller, req.Title, req.Language, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, snippet)
}

// HandleList returns the snippet feed, newest first.
//
// HTTP: GET /api/snippets?limit=20&offset=0
func (h *SnippetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	snippets, err := h.snippets.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

// HandleGetByID returns a single snippet.
//
// HTTP: GET /api/snippets/{id}
func (h *SnippetHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	snippet, err := h.snippets.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippet)
}

// HandleDelete removes a snippet. Owner only.
//
// HTTP: DELETE /api/snippets/{id} (RequireAuth)
func (h *SnippetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	if err := h.snippets.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleToggleStar stars or unstars a snippet for the caller.
//
// HTTP: POST /api/snippets/{id}/star (RequireAuth)
// Responds {"starred": true|false} with the resulting state.
func (h *SnippetHandler) HandleToggleStar(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	starred, err := h.snippets.ToggleStar(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"starred": starred})
}

// HandleStarInfo returns a snippet's star count and whether the caller has
// starred it.
//
// HTTP: GET /api/snippets/{id}/star (OptionalAuth)
func (h *SnippetHandler) HandleStarInfo(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	count, starred, err := h.snippets.StarInfo(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"count":   count,
		"starred": starred,
	})
}

// HandleStarred returns the caller's starred snippets.
//
// HTTP: GET /api/starred (RequireAuth)
func (h *SnippetHandler) HandleStarred(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	snippets, err := h.snippets.StarredSnippets(r.Context(), caller)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, snippets)
}

type addCommentRequest struct {
	Content string `json:"content"`
}

// HandleAddComment attaches a comment to a snippet.
//
// HTTP: POST /api/snippets/{id}/comments (RequireAuth)
func (h *SnippetHandler) HandleAddComment(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	comment, err := h.snippets.AddComment(r.Context(), caller, r.PathValue("id"), req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, comment)
}

// HandleListComments lists a snippet's comments, newest first.
//
// HTTP: GET /api/snippets/{id}/comments
func (h *SnippetHandler) HandleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.snippets.Comments(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, comments)
}

// HandleDeleteComment removes a comment. Author only.
//
// HTTP: DELETE /api/comments/{id} (RequireAuth)
func (h *SnippetHandler) HandleDeleteComment(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	if err := h.snippets.DeleteComment(r.Context(), caller, r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
