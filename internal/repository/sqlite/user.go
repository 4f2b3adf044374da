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

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// SyncUser inserts the user if no record with the same subject exists.
//
// The identity provider may deliver the same webhook more than once, so this
// must be idempotent. INSERT OR IGNORE leans on the UNIQUE(subject)
// constraint: a replay simply affects zero rows and the existing record,
// including any pro-tier state it has accrued, is left untouched.
func (db *DB) SyncUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO users (id, subject, email, name, is_pro, created_at, updated_at)
		 VALUES (?, ?, ?, ?, 0, ?, ?)`,
		user.ID,
		user.Subject,
		user.Email,
		user.Name,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: syncing user (subject=%s): %w", user.Subject, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		// Replayed webhook: load the canonical record so the caller sees
		// the real internal ID and flags, not the ones we just generated.
		existing, err := db.GetUserBySubject(ctx, user.Subject)
		if err != nil {
			return err
		}
		*user = *existing
	}

	return nil
}

// GetUserBySubject retrieves a user by the identity provider's subject.
// Returns apperror.ErrNotFound if no such user has been synced yet.
func (db *DB) GetUserBySubject(ctx context.Context, subject string) (*model.User, error) {
	var u model.User
	var proSince sql.NullTime

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, subject, email, name, is_pro, pro_since,
		        billing_customer_id, billing_order_id, created_at, updated_at
		 FROM users WHERE subject = ?`,
		subject,
	).Scan(
		&u.ID,
		&u.Subject,
		&u.Email,
		&u.Name,
		&u.IsPro,
		&proSince,
		&u.BillingCustomerID,
		&u.BillingOrderID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("user", subject)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", subject, err)
	}

	if proSince.Valid {
		u.ProSince = &proSince.Time
	}

	return &u, nil
}

// SetProStatus marks the user as pro and records the billing references.
// Called from the billing collaborator's webhook, outside the reporting core.
func (db *DB) SetProStatus(ctx context.Context, subject, customerID, orderID string) error {
	now := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE users
		 SET is_pro = 1, pro_since = ?, billing_customer_id = ?, billing_order_id = ?, updated_at = ?
		 WHERE subject = ?`,
		now, customerID, orderID, now, subject,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upgrading user %s: %w", subject, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("user", subject)
	}

	return nil
}
