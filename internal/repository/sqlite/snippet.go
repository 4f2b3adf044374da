package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// compile-time check that *DB implements repository.SnippetRepository
var _ repository.SnippetRepository = (*DB)(nil)

// CreateSnippet inserts a new snippet. The ID (xid: 20 chars, URL-safe, sortable by
// creation time) and timestamps are generated here and written back to the
// caller's struct through the pointer.
func (db *DB) CreateSnippet(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()

	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippets (id, user_id, title, language, code, user_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snippet.ID,
		snippet.UserID,
		snippet.Title,
		snippet.Language,
		snippet.Code,
		snippet.UserName,
		snippet.CreatedAt,
		snippet.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}

	return nil
}

// GetSnippetByID retrieves a single snippet. sql.ErrNoRows is translated to the
// domain NotFound error so handlers can map it to 404.
func (db *DB) GetSnippetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var snippet model.Snippet

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, user_id, title, language, code, user_name, created_at, updated_at
		 FROM snippets
		 WHERE id = ?`,
		id,
	).Scan(
		&snippet.ID,
		&snippet.UserID,
		&snippet.Title,
		&snippet.Language,
		&snippet.Code,
		&snippet.UserName,
		&snippet.CreatedAt,
		&snippet.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}

	return &snippet, nil
}

// ListSnippets retrieves snippets newest first with limit/offset pagination.
// The snippet feed is small and append-mostly, so OFFSET is fine here; the
// execution history is the surface that needs keyset cursors.
func (db *DB) ListSnippets(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, title, language, code, user_name, created_at, updated_at
		 FROM snippets
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		limit,
		offset,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	defer rows.Close()

	snippets := make([]model.Snippet, 0, limit)
	for rows.Next() {
		var s model.Snippet
		if err := rows.Scan(
			&s.ID, &s.UserID, &s.Title, &s.Language, &s.Code, &s.UserName,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning snippet row: %w", err)
		}
		snippets = append(snippets, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating snippets: %w", err)
	}

	return snippets, nil
}

// DeleteSnippet removes a snippet by its ID. Stars pointing at it are left in
// place; the stats aggregator skips stars whose target is gone.
func (db *DB) DeleteSnippet(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippets WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}

	return nil
}
