package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Rohitkumar43/coditor/internal/auth"
	"github.com/Rohitkumar43/coditor/internal/executor"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/service"
)

// ExecuteHandler proxies code runs to the remote execution service and, for
// authenticated callers, records the attempt in the execution log.
type ExecuteHandler struct {
	exec       executor.Executor
	executions *service.ExecutionService
	logger     *slog.Logger
}

// NewExecuteHandler creates an ExecuteHandler.
func NewExecuteHandler(exec executor.Executor, executions *service.ExecutionService, logger *slog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		exec:       exec,
		executions: executions,
		logger:     logger,
	}
}

// HandleExecute runs code remotely and returns the result.
//
// HTTP: POST /api/execute (OptionalAuth)
//
// Anonymous callers can run code; only authenticated callers get the run
// recorded in their history. A recording failure (for example the tier
// check) is returned as the response error because the frontend treats
// save-and-run as one action; the remote run itself is never retried.
func (h *ExecuteHandler) HandleExecute(w http.ResponseWriter, r *http.Request) {
	var req executor.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid execution request body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return
	}

	if len(req.Files) == 0 || req.Files[0].Content == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "code cannot be empty",
		})
		return
	}

	caller, authenticated := auth.SubjectFromContext(r.Context())

	result, err := h.exec.Execute(r.Context(), req)
	if err != nil {
		h.logger.Error("remote execution failed", slog.String("error", err.Error()))
		// Raw transport errors are mapped to a displayable string here and
		// never propagated as-is.
		writeJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "execution_failed",
			Message: "code execution service is unavailable",
		})
		return
	}

	if authenticated {
		runResult := model.SuccessResult(result.Run.Output)
		if result.Failed() {
			runResult = model.FailureResult(result.ErrorText())
		}
		if err := h.executions.SaveExecution(r.Context(), caller, req.Language, req.Files[0].Content, runResult); err != nil {
			writeError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, result)
}
