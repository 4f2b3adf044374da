package sqlite

import (
	"context"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/Rohitkumar43/coditor/internal/apperror"
	"github.com/Rohitkumar43/coditor/internal/model"
	"github.com/Rohitkumar43/coditor/internal/repository"
)

// compile-time check that *DB implements repository.ExecutionRepository
var _ repository.ExecutionRepository = (*DB)(nil)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// CreateExecution appends one execution record. The record is immutable after this
// call: no update or delete path exists for the executions table.
//
// CreatedAt is server-assigned when zero; tests pre-set it to build histories
// at known timestamps.
func (db *DB) CreateExecution(ctx context.Context, exec *model.Execution) error {
	exec.ID = xid.New().String()
	if exec.CreatedAt.IsZero() {
		exec.CreatedAt = time.Now()
	}

	succeeded := 0
	if exec.Result.Succeeded() {
		succeeded = 1
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO executions (id, user_id, language, code, succeeded, output, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.UserID,
		exec.Language,
		exec.Code,
		succeeded,
		exec.Result.Output,
		exec.Result.Error,
		exec.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating execution (user=%s): %w", exec.UserID, err)
	}

	return nil
}

// PageExecutionsByUser returns one page of the user's executions, newest first.
//
// KEYSET PAGINATION:
// The cursor encodes the (created_at, rowid) position of the last record on
// the previous page. Each page selects rows strictly before that position,
// ordered by created_at DESC with rowid DESC breaking timestamp ties in
// insertion order. Unlike OFFSET, a keyset cursor stays correct while new
// records are appended, and it cannot be used to skip the owner filter:
// user_id = ? is part of every page's WHERE clause.
//
// A cursor past the end yields an empty page with no continuation, not an
// error.
func (db *DB) PageExecutionsByUser(ctx context.Context, userID string, opts repository.PageOptions) (*repository.ExecutionPage, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	query := `SELECT id, user_id, language, code, succeeded, output, error, created_at, rowid
	          FROM executions WHERE user_id = ?`
	args := []any{userID}

	if opts.Cursor != "" {
		createdNanos, rowid, err := decodeCursor(opts.Cursor)
		if err != nil {
			return nil, apperror.ValidationFailed("cursor", "malformed pagination cursor")
		}
		query += ` AND (created_at < ? OR (created_at = ? AND rowid < ?))`
		args = append(args, createdNanos, createdNanos, rowid)
	}

	// Fetch one extra row to learn whether another page exists without a
	// second COUNT query.
	query += ` ORDER BY created_at DESC, rowid DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: paging executions for %s: %w", userID, err)
	}
	defer rows.Close()

	items := make([]model.Execution, 0, limit)
	var lastNanos, lastRowid int64

	for rows.Next() {
		var (
			e         model.Execution
			succeeded int
			output    string
			errText   string
			nanos     int64
			rowid     int64
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Language, &e.Code,
			&succeeded, &output, &errText, &nanos, &rowid,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}

		if succeeded == 1 {
			e.Result = model.SuccessResult(output)
		} else {
			e.Result = model.FailureResult(errText)
		}
		e.CreatedAt = time.Unix(0, nanos)

		if len(items) < limit {
			items = append(items, e)
			lastNanos, lastRowid = nanos, rowid
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	page := &repository.ExecutionPage{Items: items}
	// The extra row was fetched but not appended, so rows beyond this page
	// exist exactly when we saw limit+1 results.
	if len(items) == limit {
		var more int
		err := db.conn.QueryRowContext(ctx,
			`SELECT EXISTS (
				SELECT 1 FROM executions
				WHERE user_id = ? AND (created_at < ? OR (created_at = ? AND rowid < ?))
			)`,
			userID, lastNanos, lastNanos, lastRowid,
		).Scan(&more)
		if err != nil {
			return nil, fmt.Errorf("sqlite: checking continuation: %w", err)
		}
		if more == 1 {
			page.NextCursor = encodeCursor(lastNanos, lastRowid)
		}
	}

	return page, nil
}

// ListExecutionsByUser returns every execution for the user, newest first.
func (db *DB) ListExecutionsByUser(ctx context.Context, userID string) ([]model.Execution, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, language, code, succeeded, output, error, created_at
		 FROM executions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, rowid DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing executions for %s: %w", userID, err)
	}
	defer rows.Close()

	var execs []model.Execution
	for rows.Next() {
		var (
			e         model.Execution
			succeeded int
			output    string
			errText   string
			nanos     int64
		)
		if err := rows.Scan(
			&e.ID, &e.UserID, &e.Language, &e.Code,
			&succeeded, &output, &errText, &nanos,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}
		if succeeded == 1 {
			e.Result = model.SuccessResult(output)
		} else {
			e.Result = model.FailureResult(errText)
		}
		e.CreatedAt = time.Unix(0, nanos)
		execs = append(execs, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	return execs, nil
}

// encodeCursor packs a (created_at, rowid) position into an opaque,
// URL-safe string. The cursor is stateless: nothing is held server-side
// between pages.
func encodeCursor(createdNanos, rowid int64) string {
	raw := strconv.FormatInt(createdNanos, 10) + ":" + strconv.FormatInt(rowid, 10)
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (createdNanos, rowid int64, err error) {
	raw, err := base64.RawURLEncoding.DecodeString(cursor)
	if err != nil {
		return 0, 0, fmt.Errorf("decoding cursor: %w", err)
	}
	parts := strings.SplitN(string(raw), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("cursor has %d parts, want 2", len(parts))
	}
	createdNanos, err = strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing cursor timestamp: %w", err)
	}
	rowid, err = strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing cursor rowid: %w", err)
	}
	return createdNanos, rowid, nil
}
