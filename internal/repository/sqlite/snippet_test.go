package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

func createTestSnippet(t *testing.T, db *DB, userID, title, language string) *model.Snippet {
	t.Helper()
	snippet := &model.Snippet{
		UserID:   userID,
		Title:    title,
		Language: language,
		Code:     "print('hi')",
		UserName: "Test User",
	}
	if err := db.CreateSnippet(context.Background(), snippet); err != nil {
		t.Fatalf("failed to create test snippet: %v", err)
	}
	return snippet
}

func TestCreateSnippet(t *testing.T) {
	db := newTestDB(t)

	snippet := createTestSnippet(t, db, "user-a", "Hello World", "python")

	if snippet.ID == "" {
		t.Error("CreateSnippet() did not set snippet.ID")
	}
	if snippet.CreatedAt.IsZero() {
		t.Error("CreateSnippet() did not set snippet.CreatedAt")
	}

	found, err := db.GetSnippetByID(context.Background(), snippet.ID)
	if err != nil {
		t.Fatalf("GetSnippetByID() error = %v", err)
	}
	if found.Title != "Hello World" || found.Language != "python" || found.UserName != "Test User" {
		t.Errorf("stored snippet = %+v", found)
	}
}

func TestGetSnippetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetSnippetByID(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestListSnippets_Pagination(t *testing.T) {
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		createTestSnippet(t, db, "user-a", "snippet", "javascript")
	}

	page1, err := db.ListSnippets(context.Background(), repository.ListOptions{Limit: 2, Offset: 0})
	if err != nil {
		t.Fatalf("ListSnippets() page 1 error = %v", err)
	}
	if len(page1) != 2 {
		t.Errorf("page 1: got %d items, want 2", len(page1))
	}

	page3, err := db.ListSnippets(context.Background(), repository.ListOptions{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListSnippets() page 3 error = %v", err)
	}
	if len(page3) != 1 {
		t.Errorf("page 3: got %d items, want 1", len(page3))
	}
}

func TestDeleteSnippet(t *testing.T) {
	db := newTestDB(t)
	snippet := createTestSnippet(t, db, "user-a", "to delete", "go")

	if err := db.DeleteSnippet(context.Background(), snippet.ID); err != nil {
		t.Fatalf("DeleteSnippet() error = %v", err)
	}

	_, err := db.GetSnippetByID(context.Background(), snippet.ID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("after delete: error = %v, want ErrNotFound", err)
	}
}

func TestDeleteSnippet_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.DeleteSnippet(context.Background(), "nonexistent-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}
