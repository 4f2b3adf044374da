package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// compile-time checks that *DB implements the star and comment repositories
var (
	_ repository.StarRepository    = (*DB)(nil)
	_ repository.CommentRepository = (*DB)(nil)
)

// ToggleStar stars the snippet for the user, or removes an existing star.
// Returns true when the snippet ends up starred.
//
// Delete first, insert if nothing was removed. At most one star per
// (user, snippet) pair is guaranteed by the UNIQUE constraint: if two
// concurrent toggles both miss the delete, only one insert succeeds.
func (db *DB) ToggleStar(ctx context.Context, userID, snippetID string) (bool, error) {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM stars WHERE user_id = ? AND snippet_id = ?`,
		userID, snippetID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: unstarring snippet %s: %w", snippetID, err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if removed > 0 {
		return false, nil
	}

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO stars (id, user_id, snippet_id, created_at) VALUES (?, ?, ?, ?)`,
		xid.New().String(), userID, snippetID, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: starring snippet %s: %w", snippetID, err)
	}

	return true, nil
}

// IsStarred reports whether the user has starred the snippet.
func (db *DB) IsStarred(ctx context.Context, userID, snippetID string) (bool, error) {
	var exists int
	err := db.conn.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM stars WHERE user_id = ? AND snippet_id = ?)`,
		userID, snippetID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlite: checking star for snippet %s: %w", snippetID, err)
	}
	return exists == 1, nil
}

// CountSnippetStars returns how many users have starred the snippet.
func (db *DB) CountSnippetStars(ctx context.Context, snippetID string) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM stars WHERE snippet_id = ?`,
		snippetID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting stars for snippet %s: %w", snippetID, err)
	}
	return count, nil
}

// ListStarsByUser returns all stars placed by the user, newest first. Stars whose
// snippet has since been deleted are still returned; resolution is the
// caller's concern.
func (db *DB) ListStarsByUser(ctx context.Context, userID string) ([]model.Star, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, snippet_id, created_at
		 FROM stars
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing stars for %s: %w", userID, err)
	}
	defer rows.Close()

	var stars []model.Star
	for rows.Next() {
		var s model.Star
		if err := rows.Scan(&s.ID, &s.UserID, &s.SnippetID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning star row: %w", err)
		}
		stars = append(stars, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating stars: %w", err)
	}

	return stars, nil
}
