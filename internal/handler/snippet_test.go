package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository/sqlite"
	"github.com/Rohitkumar43/coditor/internal/service"
)

func newSnippetTestEnv(t *testing.T) (*SnippetHandler, *sqlite.DB) {
	t.Helper()
	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := service.NewSnippetService(db, db, db, db, testLogger())
	return NewSnippetHandler(svc, testLogger()), db
}

func createSnippetViaAPI(t *testing.T, h *SnippetHandler, subject, title string) model.Snippet {
	t.Helper()
	body := `{"title": "` + title + `", "language": "python", "code": "print(1)"}`
	rec := httptest.NewRecorder()
	h.HandleCreate(rec, authedRequest(t, http.MethodPost, "/api/snippets", body, subject))
	require.Equal(t, http.StatusCreated, rec.Code)

	var snippet model.Snippet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snippet))
	return snippet
}

func TestSnippetLifecycle(t *testing.T) {
	h, _ := newSnippetTestEnv(t)

	snippet := createSnippetViaAPI(t, h, "sub-1", "Fizzbuzz")
	assert.NotEmpty(t, snippet.ID)
	assert.Equal(t, "sub-1", snippet.UserID)

	// Public fetch.
	req := httptest.NewRequest(http.MethodGet, "/api/snippets/"+snippet.ID, nil)
	req.SetPathValue("id", snippet.ID)
	rec := httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Deletion by someone else is forbidden.
	req = authedRequest(t, http.MethodDelete, "/api/snippets/"+snippet.ID, "", "sub-2")
	req.SetPathValue("id", snippet.ID)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// Owner deletes.
	req = authedRequest(t, http.MethodDelete, "/api/snippets/"+snippet.ID, "", "sub-1")
	req.SetPathValue("id", snippet.ID)
	rec = httptest.NewRecorder()
	h.HandleDelete(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/snippets/"+snippet.ID, nil)
	req.SetPathValue("id", snippet.ID)
	rec = httptest.NewRecorder()
	h.HandleGetByID(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStarEndpoints(t *testing.T) {
	h, _ := newSnippetTestEnv(t)
	snippet := createSnippetViaAPI(t, h, "owner", "Starrable")

	// Toggle on.
	req := authedRequest(t, http.MethodPost, "/api/snippets/"+snippet.ID+"/star", "", "sub-1")
	req.SetPathValue("id", snippet.ID)
	rec := httptest.NewRecorder()
	h.HandleToggleStar(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var toggle map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &toggle))
	assert.True(t, toggle["starred"])

	// Star info for an anonymous caller.
	req = httptest.NewRequest(http.MethodGet, "/api/snippets/"+snippet.ID+"/star", nil)
	req.SetPathValue("id", snippet.ID)
	rec = httptest.NewRecorder()
	h.HandleStarInfo(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var info struct {
		Count   int  `json:"count"`
		Starred bool `json:"starred"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 1, info.Count)
	assert.False(t, info.Starred)

	// The starrer's list includes the snippet.
	rec = httptest.NewRecorder()
	h.HandleStarred(rec, authedRequest(t, http.MethodGet, "/api/starred", "", "sub-1"))
	require.Equal(t, http.StatusOK, rec.Code)

	var starred []model.Snippet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &starred))
	require.Len(t, starred, 1)
	assert.Equal(t, snippet.ID, starred[0].ID)
}

func TestCommentEndpoints(t *testing.T) {
	h, _ := newSnippetTestEnv(t)
	snippet := createSnippetViaAPI(t, h, "owner", "Discussed")

	req := authedRequest(t, http.MethodPost, "/api/snippets/"+snippet.ID+"/comments",
		`{"content": "clever"}`, "sub-1")
	req.SetPathValue("id", snippet.ID)
	rec := httptest.NewRecorder()
	h.HandleAddComment(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var comment model.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comment))
	assert.Equal(t, "clever", comment.Content)

	// Public listing.
	req = httptest.NewRequest(http.MethodGet, "/api/snippets/"+snippet.ID+"/comments", nil)
	req.SetPathValue("id", snippet.ID)
	rec = httptest.NewRecorder()
	h.HandleListComments(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []model.Comment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	assert.Len(t, comments, 1)

	// Only the author may delete.
	req = authedRequest(t, http.MethodDelete, "/api/comments/"+comment.ID, "", "sub-2")
	req.SetPathValue("id", comment.ID)
	rec = httptest.NewRecorder()
	h.HandleDeleteComment(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = authedRequest(t, http.MethodDelete, "/api/comments/"+comment.ID, "", "sub-1")
	req.SetPathValue("id", comment.ID)
	rec = httptest.NewRecorder()
	h.HandleDeleteComment(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandleList_Feed(t *testing.T) {
	h, _ := newSnippetTestEnv(t)
	createSnippetViaAPI(t, h, "sub-1", "first")
	createSnippetViaAPI(t, h, "sub-1", "second")

	rec := httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest(http.MethodGet, "/api/snippets?limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var snippets []model.Snippet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snippets))
	require.Len(t, snippets, 2)
	assert.Equal(t, "second", snippets[0].Title)
}
