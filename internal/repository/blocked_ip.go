// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"imagegate/internal/models"
)

// GetBlockedIP returns the block record for the given address, or
// ErrNotFound when the address is not blocked.
func (r *Repository) GetBlockedIP(ctx context.Context, ip string) (*models.BlockedIP, error) {
	var blocked models.BlockedIP
	err := r.db.GetContext(ctx, &blocked, `SELECT * FROM blocked_ips WHERE ip = ?`, ip)
	if err != nil {
		return nil, wrapError(err)
	}
	return &blocked, nil
}

// BlockIP records a blocked address. Blocking an already-blocked address
// updates the reason rather than failing.
func (r *Repository) BlockIP(ctx context.Context, ip, reason string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO blocked_ips (ip, reason, created_at) VALUES (?, NULLIF(?, ''), ?)
		 ON CONFLICT(ip) DO UPDATE SET reason = NULLIF(excluded.reason, '')`,
		ip, reason, time.Now().UTC())
	return err
}

// UnblockIP removes the block for the given address.
func (r *Repository) UnblockIP(ctx context.Context, ip string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM blocked_ips WHERE ip = ?`, ip)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListBlockedIPs returns all blocked addresses, newest first.
func (r *Repository) ListBlockedIPs(ctx context.Context) ([]models.BlockedIP, error) {
	var blocked []models.BlockedIP
	err := r.db.SelectContext(ctx, &blocked, `SELECT * FROM blocked_ips ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return blocked, nil
}
