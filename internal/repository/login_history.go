// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"imagegate/internal/models"
)

// RecordLogin appends an authentication event for auditing.
func (r *Repository) RecordLogin(ctx context.Context, userID int64, ip, userAgent string, success bool) error {
	val := int64(0)
	if success {
		val = 1
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO login_history (user_id, ip, user_agent, success, created_at)
		 VALUES (?, ?, NULLIF(?, ''), ?, ?)`,
		userID, ip, userAgent, val, time.Now().UTC())
	return err
}

// GetLoginHistory returns a page of the user's authentication events, newest
// first, along with the total event count. Page starts at 1; pageSize is
// clamped to [1,100].
func (r *Repository) GetLoginHistory(ctx context.Context, userID int64, page, pageSize int) ([]models.LoginHistoryEntry, int64, error) {
	page, pageSize = clampPageSize(page, pageSize)

	var total int64
	if err := r.db.GetContext(ctx, &total,
		`SELECT count(*) FROM login_history WHERE user_id = ?`, userID); err != nil {
		return nil, 0, err
	}

	var entries []models.LoginHistoryEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM login_history WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
