// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"time"

	"imagegate/internal/models"
)

// UpsertUserAPIKey stores or replaces the user's encrypted API key. There is
// at most one row per user.
func (r *Repository) UpsertUserAPIKey(ctx context.Context, userID int64, encryptedKey, iv, hint string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_api_keys (user_id, encrypted_key, iv, hint, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   encrypted_key = excluded.encrypted_key,
		   iv = excluded.iv,
		   hint = excluded.hint,
		   updated_at = excluded.updated_at`,
		userID, encryptedKey, iv, hint, time.Now().UTC())
	return err
}

// GetUserAPIKey retrieves the user's stored key record.
func (r *Repository) GetUserAPIKey(ctx context.Context, userID int64) (*models.UserAPIKey, error) {
	var key models.UserAPIKey
	err := r.db.GetContext(ctx, &key, `SELECT * FROM user_api_keys WHERE user_id = ?`, userID)
	if err != nil {
		return nil, wrapError(err)
	}
	return &key, nil
}

// DeleteUserAPIKey removes the user's stored key.
func (r *Repository) DeleteUserAPIKey(ctx context.Context, userID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM user_api_keys WHERE user_id = ?`, userID)
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
