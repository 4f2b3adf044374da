package model

import "time"

// Snippet represents a saved, shareable piece of code, distinct from a
// transient execution.
//
// UserName is denormalized from the owner's user record so snippet lists can
// render an author without a join. It is frozen at creation time, matching
// the original product behaviour.
type Snippet struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"` // owner's subject
	Title     string    `json:"title"     db:"title"`
	Language  string    `json:"language"  db:"language"`
	Code      string    `json:"code"      db:"code"`
	UserName  string    `json:"userName"  db:"user_name"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Star marks a snippet as a favorite of one user. The (UserID, SnippetID)
// pair is unique at the storage layer.
type Star struct {
	ID        string    `json:"id"        db:"id"`
	UserID    string    `json:"userId"    db:"user_id"`
	SnippetID string    `json:"snippetId" db:"snippet_id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Comment is one discussion entry on a snippet. Content is sanitized rich
// text produced by the editor UI; the backend stores it verbatim.
type Comment struct {
	ID        string    `json:"id"        db:"id"`
	SnippetID string    `json:"snippetId" db:"snippet_id"`
	UserID    string    `json:"userId"    db:"user_id"`
	UserName  string    `json:"userName"  db:"user_name"`
	Content   string    `json:"content"   db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
