// Package piston implements executor.Executor against the Piston public
// execution API (https://emkc.org/api/v2/piston).
package piston

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Rohitkumar43/coditor/internal/executor"
)

// DefaultBaseURL is the hosted Piston instance.
const DefaultBaseURL = "https://emkc.org/api/v2/piston"

// Client calls the Piston execute endpoint. It is safe for concurrent use.
//
// No retry policy: a failed run is surfaced to the caller as an error string
// and the user decides whether to run again. The only local protection is
// the request timeout, since the hosted instance occasionally queues under
// load.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// New creates a Client. baseURL may be "" to use the hosted instance.
func New(baseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		logger:  logger,
	}
}

var _ executor.Executor = (*Client)(nil)

// Execute posts the run request to Piston and decodes the result.
//
// Transport and protocol failures are wrapped with context so the handler
// can map them to a displayable message; they are never retried here.
func (c *Client) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("piston: encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/execute", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("piston: building request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("piston: calling execute API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Piston reports problems (unknown runtime, rate limit) as JSON
		// with a "message" field. Surface it when present.
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.NewDecoder(resp.Body).Decode(&apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("piston: execute API: %s (status %d)", apiErr.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("piston: execute API returned status %d", resp.StatusCode)
	}

	var result executor.Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("piston: decoding response: %w", err)
	}

	c.logger.Debug("remote execution completed",
		slog.String("language", req.Language),
		slog.Int("exitCode", result.Run.Code),
		slog.Duration("duration", time.Since(start)),
	)

	return &result, nil
}
