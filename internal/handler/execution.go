package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Rohitkumar43/coditor/internal/auth"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/service"
)

// ExecutionHandler serves the execution-history surfaces: recording a run,
// paging through a user's history, and the statistics summary.
type ExecutionHandler struct {
	executions *service.ExecutionService
	logger     *slog.Logger
}

// NewExecutionHandler creates an ExecutionHandler.
func NewExecutionHandler(executions *service.ExecutionService, logger *slog.Logger) *ExecutionHandler {
	return &ExecutionHandler{executions: executions, logger: logger}
}

// saveExecutionRequest mirrors the frontend's save payload. output and error
// are mutually exclusive in practice; error wins when both are set, matching
// how the editor reports a failed run.
type saveExecutionRequest struct {
	Language string `json:"language"`
	Code     string `json:"code"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
}

// HandleSave records one execution attempt for the authenticated caller.
//
// HTTP: POST /api/executions (RequireAuth)
// Responds 204: the save is fire-and-forget from the caller's perspective.
func (h *ExecutionHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	caller, _ := auth.SubjectFromContext(r.Context())

	var req saveExecutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution payload", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result := model.SuccessResult(req.Output)
	if req.Error != "" {
		result = model.FailureResult(req.Error)
	}

	if err := h.executions.SaveExecution(r.Context(), caller, req.Language, req.Code, result); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleListByUser returns one page of a user's executions.
//
// HTTP: GET /api/users/{id}/executions?cursor=...&limit=20
// Public: execution history backs public profile pages, like the snippets
// feed. The page shape is {items, continuationCursor?}.
func (h *ExecutionHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, ErrorResponse{
				Error:   "validation_error",
				Message: "limit must be an integer",
			})
			return
		}
		limit = parsed
	}

	page, err := h.executions.ListUserExecutions(r.Context(), userID, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, page)
}

// HandleStats returns the derived usage summary for a user.
//
// HTTP: GET /api/users/{id}/stats
func (h *ExecutionHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.executions.UserStats(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
