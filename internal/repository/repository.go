// Package repository declares the storage interfaces the rest of the
// application depends on. Callers program against these interfaces; the
// concrete engine lives in the sqlite subpackage and is chosen in one place
// (the server's composition root).
//
// Method names are unique across interfaces because a single *sqlite.DB
// implements all of them.
package repository

import (
	"context"

	"github.com/Rohitkumar43/coditor/internal/model"
)

// ListOptions is limit/offset pagination for snippet listings.
type ListOptions struct {
	Limit  int
	Offset int
}

// PageOptions is cursor-based pagination for a user's execution history.
// Cursor is opaque to callers: "" means start from the newest record.
type PageOptions struct {
	Cursor string
	Limit  int
}

// ExecutionPage is one page of a user's executions, newest first.
// NextCursor is "" when there are no further records.
type ExecutionPage struct {
	Items      []model.Execution `json:"items"`
	NextCursor string            `json:"continuationCursor,omitempty"`
}

type UserRepository interface {
	// SyncUser inserts the user if no record with the same subject exists.
	// It is idempotent: replaying the webhook never creates a duplicate or
	// overwrites an existing record.
	SyncUser(ctx context.Context, user *model.User) error
	GetUserBySubject(ctx context.Context, subject string) (*model.User, error)
	// SetProStatus flips the pro-tier fields for the given subject.
	SetProStatus(ctx context.Context, subject string, customerID, orderID string) error
}

type ExecutionRepository interface {
	// CreateExecution appends one immutable execution record. CreatedAt is
	// assigned by the store when zero.
	CreateExecution(ctx context.Context, exec *model.Execution) error
	// PageExecutionsByUser returns one page of the user's executions ordered
	// newest first. The owner filter applies to every page regardless of
	// cursor.
	PageExecutionsByUser(ctx context.Context, userID string, opts PageOptions) (*ExecutionPage, error)
	// ListExecutionsByUser returns all of the user's executions. Unbounded
	// on purpose: the statistics aggregator needs the full history.
	ListExecutionsByUser(ctx context.Context, userID string) ([]model.Execution, error)
}

type SnippetRepository interface {
	CreateSnippet(ctx context.Context, snippet *model.Snippet) error
	GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error)
	ListSnippets(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	DeleteSnippet(ctx context.Context, id string) error
}

type StarRepository interface {
	// ToggleStar stars the snippet for the user, or removes the star if it
	// is already present. Returns true when the snippet ends up starred.
	ToggleStar(ctx context.Context, userID, snippetID string) (bool, error)
	IsStarred(ctx context.Context, userID, snippetID string) (bool, error)
	CountSnippetStars(ctx context.Context, snippetID string) (int, error)
	ListStarsByUser(ctx context.Context, userID string) ([]model.Star, error)
}

type CommentRepository interface {
	CreateComment(ctx context.Context, comment *model.Comment) error
	GetCommentByID(ctx context.Context, id string) (*model.Comment, error)
	ListSnippetComments(ctx context.Context, snippetID string) ([]model.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}
