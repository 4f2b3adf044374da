package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohitkumar43/coditor/internal/executor"
	"github.com/Rohitkumar43/coditor/internal/model"
)

const (
	testAuthSecret    = "test-secret-at-least-16-chars"
	testWebhookSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"
)

type fakeExecutor struct{}

func (fakeExecutor) Execute(ctx context.Context, req executor.Request) (*executor.Result, error) {
	return &executor.Result{Run: executor.Stage{Code: 0, Output: "ok\n"}}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(Config{
		Port:          0,
		DBPath:        ":memory:",
		AuthSecret:    testAuthSecret,
		WebhookSecret: testWebhookSecret,
	}, logger, fakeExecutor{})
	require.NoError(t, err)
	t.Cleanup(func() { s.db.Close() })
	return s
}

func bearerToken(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   subject,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte(testAuthSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func do(s *Server, method, target, body, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestRouting_PublicReads(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/snippets", "", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/users/sub-1/executions", "", "").Code)
	assert.Equal(t, http.StatusOK, do(s, http.MethodGet, "/api/users/sub-1/stats", "", "").Code)
	assert.Equal(t, http.StatusNotFound, do(s, http.MethodGet, "/api/snippets/missing", "", "").Code)
}

func TestRouting_WritesRequireAuth(t *testing.T) {
	s := newTestServer(t)

	protected := []struct {
		method, target string
	}{
		{http.MethodGet, "/api/me"},
		{http.MethodPost, "/api/executions"},
		{http.MethodPost, "/api/snippets"},
		{http.MethodGet, "/api/starred"},
	}
	for _, p := range protected {
		rec := do(s, p.method, p.target, "{}", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s %s", p.method, p.target)
	}
}

// Walks the recording flow end to end through the real router: save a run
// with a signed token, page it back, then check the stats reflect it.
func TestRouting_RecordAndReport(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, "sub-1")

	body := `{"language": "javascript", "code": "console.log(1)", "output": "1\n"}`
	rec := do(s, http.MethodPost, "/api/executions", body, token)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(s, http.MethodGet, "/api/users/sub-1/executions", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var page struct {
		Items []model.Execution `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "javascript", page.Items[0].Language)

	rec = do(s, http.MethodGet, "/api/users/sub-1/stats", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var stats model.UserStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalExecutions)
	assert.Equal(t, "javascript", stats.FavoriteLanguage)
}

func TestRouting_SnippetPathParams(t *testing.T) {
	s := newTestServer(t)
	token := bearerToken(t, "sub-1")

	rec := do(s, http.MethodPost, "/api/snippets",
		`{"title": "routed", "language": "go", "code": "package main"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	var snippet model.Snippet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snippet))

	rec = do(s, http.MethodGet, "/api/snippets/"+snippet.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodPost, "/api/snippets/"+snippet.ID+"/star", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(s, http.MethodGet, "/api/snippets/"+snippet.ID+"/star", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var info struct {
		Count   int  `json:"count"`
		Starred bool `json:"starred"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 1, info.Count)
	assert.True(t, info.Starred)
}
