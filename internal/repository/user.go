// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"imagegate/internal/models"
)

// CreateUser creates a new user. Emails are stored lowercased.
func (r *Repository) CreateUser(ctx context.Context, email string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, authorized, created_at, updated_at) VALUES (?, 0, ?, ?)`,
		email, now, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Email: email, CreatedAt: now, UpdatedAt: now}, nil
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = ?`, id); err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email (case-insensitive).
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT * FROM users WHERE email = ?`, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, wrapError(err)
	}
	return &user, nil
}

// IsUserAuthorized reports whether the user holds an authorization grant.
func (r *Repository) IsUserAuthorized(ctx context.Context, userID int64) (bool, error) {
	var authorized int64
	err := r.db.GetContext(ctx, &authorized,
		`SELECT authorized FROM users WHERE id = ?`, userID)
	if err != nil {
		return false, wrapError(err)
	}
	return authorized != 0, nil
}

// SetUserAuthorized grants or revokes a user's authorization. The update is
// idempotent: granting an already-granted user changes nothing.
func (r *Repository) SetUserAuthorized(ctx context.Context, userID int64, authorized bool) error {
	val := int64(0)
	if authorized {
		val = 1
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET authorized = ?, updated_at = ? WHERE id = ?`,
		val, time.Now().UTC(), userID)
	return err
}
