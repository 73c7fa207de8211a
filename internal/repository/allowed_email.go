// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"strings"
	"time"

	"imagegate/internal/models"
)

// CreateAllowedEmail adds an email to the allowlist. The email is stored
// lowercased; a duplicate insert surfaces the driver's unique-constraint
// error unchanged so callers can classify it.
func (r *Repository) CreateAllowedEmail(ctx context.Context, email string, addedBy int64, note string) (*models.AllowedEmail, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO allowed_emails (email, added_by, note, created_at) VALUES (?, ?, NULLIF(?, ''), ?)`,
		email, addedBy, note, now)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	entry := &models.AllowedEmail{ID: id, Email: email, AddedBy: addedBy, CreatedAt: now}
	if note != "" {
		entry.Note.String = note
		entry.Note.Valid = true
	}
	return entry, nil
}

// DeleteAllowedEmail removes an allowlist entry by ID.
func (r *Repository) DeleteAllowedEmail(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM allowed_emails WHERE id = ?`, id)
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

// IsEmailAllowed reports whether the email is on the allowlist.
func (r *Repository) IsEmailAllowed(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.GetContext(ctx, &count,
		`SELECT count(*) FROM allowed_emails WHERE email = ?`,
		strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListAllowedEmails returns all allowlist entries, newest first.
func (r *Repository) ListAllowedEmails(ctx context.Context) ([]models.AllowedEmail, error) {
	var entries []models.AllowedEmail
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM allowed_emails ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SearchAllowedEmails returns allowlist entries whose email contains the
// given fragment. Wildcards in the fragment are treated literally.
func (r *Repository) SearchAllowedEmails(ctx context.Context, fragment string) ([]models.AllowedEmail, error) {
	pattern := "%" + EscapeLikePattern(strings.ToLower(strings.TrimSpace(fragment))) + "%"

	var entries []models.AllowedEmail
	err := r.db.SelectContext(ctx, &entries,
		`SELECT * FROM allowed_emails WHERE email LIKE ? ESCAPE '\' ORDER BY email`, pattern)
	if err != nil {
		return nil, err
	}
	return entries, nil
}
