package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
)

// CreateComment inserts a new comment on a snippet.
func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO snippet_comments (id, snippet_id, user_id, user_name, content, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.ID,
		comment.SnippetID,
		comment.UserID,
		comment.UserName,
		comment.Content,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating comment: %w", err)
	}

	return nil
}

func (db *DB) GetCommentByID(ctx context.Context, id string) (*model.Comment, error) {
	var c model.Comment

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, snippet_id, user_id, user_name, content, created_at
		 FROM snippet_comments WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.SnippetID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", id)
		}
		return nil, fmt.Errorf("sqlite: getting comment %s: %w", id, err)
	}

	return &c, nil
}

func (db *DB) ListSnippetComments(ctx context.Context, snippetID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, snippet_id, user_id, user_name, content, created_at
		 FROM snippet_comments
		 WHERE snippet_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		snippetID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for snippet %s: %w", snippetID, err)
	}
	defer rows.Close()

	var comments []model.Comment
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.SnippetID, &c.UserID, &c.UserName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}

	return comments, nil
}

func (db *DB) DeleteComment(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM snippet_comments WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("comment", id)
	}

	return nil
}
