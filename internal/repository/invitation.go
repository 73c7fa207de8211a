// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"imagegate/internal/models"
)

// CreateInvitationCode stores a new, unredeemed invitation code.
func (r *Repository) CreateInvitationCode(ctx context.Context, code string, createdBy int64, expiresAt *time.Time) (*models.InvitationCode, error) {
	inv := &models.InvitationCode{
		ID:        uuid.NewString(),
		Code:      code,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}
	if expiresAt != nil {
		inv.ExpiresAt.Time = *expiresAt
		inv.ExpiresAt.Valid = true
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitation_codes (id, code, created_by, created_at, expires_at) VALUES (?, ?, ?, ?, ?)`,
		inv.ID, inv.Code, inv.CreatedBy, inv.CreatedAt, inv.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// GetInvitationCode retrieves an invitation by its code.
func (r *Repository) GetInvitationCode(ctx context.Context, code string) (*models.InvitationCode, error) {
	var inv models.InvitationCode
	err := r.db.GetContext(ctx, &inv, `SELECT * FROM invitation_codes WHERE code = ?`, code)
	if err != nil {
		return nil, wrapError(err)
	}
	return &inv, nil
}

// RedeemInvitationCode marks the code as redeemed by the given user, but
// only if it is still unredeemed and unexpired. The conditional UPDATE is
// what makes redemption at-most-once under concurrent attempts: the row
// transition happens inside the database, never as a check-then-act in the
// application. Winning the redemption grants the user authorization in the
// same transaction; a code can never be consumed without its grant.
// Returns true when this caller won the redemption.
func (r *Repository) RedeemInvitationCode(ctx context.Context, code string, userID int64) (bool, error) {
	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx,
		`UPDATE invitation_codes
		 SET redeemed_by = ?, redeemed_at = ?
		 WHERE code = ? AND redeemed_by IS NULL AND (expires_at IS NULL OR expires_at > ?)`,
		userID, now, code, now)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE users SET authorized = 1, updated_at = ? WHERE id = ?`,
		now, userID); err != nil {
		return false, err
	}

	return true, tx.Commit()
}

// ListInvitationCodes returns codes created by the given admin, newest first.
func (r *Repository) ListInvitationCodes(ctx context.Context, createdBy int64) ([]models.InvitationCode, error) {
	var codes []models.InvitationCode
	err := r.db.SelectContext(ctx, &codes,
		`SELECT * FROM invitation_codes WHERE created_by = ? ORDER BY created_at DESC`, createdBy)
	if err != nil {
		return nil, err
	}
	return codes, nil
}
