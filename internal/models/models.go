// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package models defines the persisted records of the access-control core.
package models

import (
	"database/sql"
	"time"
)

// User is the minimal identity record the access evaluator operates on.
// The upstream identity provider owns profile data; this core only needs
// the email and whether the user has been granted access.
type User struct {
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
	Email      string    `db:"email" json:"email"`
	ID         int64     `db:"id" json:"id"`
	Authorized int64     `db:"authorized" json:"authorized"`
}

// AllowedEmail is an admin-maintained allowlist entry. Entries are created
// and deleted, never mutated.
type AllowedEmail struct {
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	Email     string         `db:"email" json:"email"`
	Note      sql.NullString `db:"note" json:"note,omitempty"`
	ID        int64          `db:"id" json:"id"`
	AddedBy   int64          `db:"added_by" json:"added_by"`
}

// InvitationCode is a single-use access token. It is created unredeemed and
// transitions to redeemed exactly once; RedeemedBy/RedeemedAt are set together.
type InvitationCode struct {
	CreatedAt  time.Time     `db:"created_at" json:"created_at"`
	ExpiresAt  sql.NullTime  `db:"expires_at" json:"expires_at,omitempty"`
	RedeemedAt sql.NullTime  `db:"redeemed_at" json:"redeemed_at,omitempty"`
	ID         string        `db:"id" json:"id"`
	Code       string        `db:"code" json:"code"`
	RedeemedBy sql.NullInt64 `db:"redeemed_by" json:"redeemed_by,omitempty"`
	CreatedBy  int64         `db:"created_by" json:"created_by"`
}

// Redeemed reports whether the code has already been used.
func (c *InvitationCode) Redeemed() bool {
	return c.RedeemedBy.Valid
}

// Expired reports whether the code has an expiry in the past.
func (c *InvitationCode) Expired(now time.Time) bool {
	return c.ExpiresAt.Valid && c.ExpiresAt.Time.Before(now)
}

// BlockedIP is a denied source address, created by an admin or an automated
// abuse policy.
type BlockedIP struct {
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	IP        string         `db:"ip" json:"ip"`
	Reason    sql.NullString `db:"reason" json:"reason,omitempty"`
}

// UserAPIKey stores a user's encrypted Google API key. EncryptedKey and IV
// are only ever produced by the keycipher service; Hint reveals at most the
// last four characters of the plaintext key.
type UserAPIKey struct {
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
	EncryptedKey string    `db:"encrypted_key" json:"-"`
	IV           string    `db:"iv" json:"-"`
	Hint         string    `db:"hint" json:"hint"`
	UserID       int64     `db:"user_id" json:"user_id"`
}

// LoginHistoryEntry is an authentication event used for admin auditing.
type LoginHistoryEntry struct {
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	IP        string         `db:"ip" json:"ip"`
	UserAgent sql.NullString `db:"user_agent" json:"user_agent,omitempty"`
	ID        int64          `db:"id" json:"id"`
	UserID    int64          `db:"user_id" json:"user_id"`
	Success   int64          `db:"success" json:"success"`
}
