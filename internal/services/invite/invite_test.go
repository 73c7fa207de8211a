// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package invite_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"imagegate/internal/apierr"
	"imagegate/internal/repository"
	"imagegate/internal/services/invite"
	"imagegate/internal/testutil"
)

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abcd-efgh", "ABCDEFGH"},
		{" ab cd ef gh ", "ABCDEFGH"},
		{"ABCDEFGH", "ABCDEFGH"},
		{"a-b-c-d-e-f-g-h", "ABCDEFGH"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, invite.NormalizeCode(tt.input))
	}
}

func TestIsValidCode(t *testing.T) {
	assert.True(t, invite.IsValidCode("ABCDEFGH"))
	assert.True(t, invite.IsValidCode("Z9X8W7V2"))

	invalid := []string{
		"",
		"SHORT",
		"TOOLONGCODE",
		"ABCDEFG1", // 1 is excluded
		"ABCDEFG0", // 0 is excluded
		"ABCDEFGI", // I is excluded
		"ABCDEFGO", // O is excluded
		"abcdefgh", // lowercase must be normalized first
		"ABC DEFG",
	}
	for _, code := range invalid {
		assert.False(t, invite.IsValidCode(code), "code %q", code)
	}
}

func TestGenerateCode(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		code, err := invite.GenerateCode()
		require.NoError(t, err)
		assert.True(t, invite.IsValidCode(code), "generated %q", code)
		seen[code] = struct{}{}
	}
	// 100 draws from 32^8 should never collide.
	assert.Len(t, seen, 100)
}

type fakeMailer struct {
	sent []string
}

func (m *fakeMailer) SendInvitation(ctx context.Context, toEmail, code string) error {
	m.sent = append(m.sent, toEmail+":"+code)
	return nil
}

func TestCreate(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	mailer := &fakeMailer{}
	svc := invite.NewService(repo, mailer, nil)
	ctx := context.Background()

	admin := testutil.NewTestUser(t, repo, "admin@example.com")

	inv, err := svc.Create(ctx, admin.ID, 0, "friend@example.com")

	require.NoError(t, err)
	assert.True(t, invite.IsValidCode(inv.Code))
	assert.False(t, inv.ExpiresAt.Valid)
	require.Len(t, mailer.sent, 1)
	assert.True(t, strings.HasPrefix(mailer.sent[0], "friend@example.com:"))
}

func TestCreate_WithExpiry(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)
	ctx := context.Background()

	admin := testutil.NewTestUser(t, repo, "admin@example.com")

	inv, err := svc.Create(ctx, admin.ID, 24*time.Hour, "")

	require.NoError(t, err)
	require.True(t, inv.ExpiresAt.Valid)
	assert.True(t, inv.ExpiresAt.Time.After(time.Now().UTC()))
}

func TestRedeem(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)
	ctx := context.Background()

	admin := testutil.NewTestUser(t, repo, "admin@example.com")
	user := testutil.NewTestUser(t, repo, "user@example.com")
	testutil.NewTestInvitation(t, repo, "ABCDEFGH", admin.ID)

	// Dashes and case are tolerated on input.
	err := svc.Redeem(ctx, user.ID, "abcd-efgh")
	require.NoError(t, err)

	// Redemption carries the authorization grant with it.
	authorized, err := repo.IsUserAuthorized(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestRedeem_BadFormatRejectedBeforeLookup(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)

	err := svc.Redeem(context.Background(), 1, "not a code!")

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
}

func TestRedeem_Unknown(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)

	err := svc.Redeem(context.Background(), 1, "ABCDEFGH")

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)
}

func TestRedeem_AlreadyUsed(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)
	ctx := context.Background()

	admin := testutil.NewTestUser(t, repo, "admin@example.com")
	first := testutil.NewTestUser(t, repo, "first@example.com")
	second := testutil.NewTestUser(t, repo, "second@example.com")
	testutil.NewTestInvitation(t, repo, "ABCDEFGH", admin.ID)

	require.NoError(t, svc.Redeem(ctx, first.ID, "ABCDEFGH"))

	err := svc.Redeem(ctx, second.ID, "ABCDEFGH")
	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 409, apiErr.StatusCode)

	// The loser gains no grant.
	authorized, err := repo.IsUserAuthorized(ctx, second.ID)
	require.NoError(t, err)
	assert.False(t, authorized)
}

func TestRedeem_GrantFailureRollsBackRedemption(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.New(sqlx.NewDb(db, "sqlmock"))
	svc := invite.NewService(repo, nil, nil)

	// The code is consumed, then the grant fails; the whole transaction
	// must roll back so the code stays redeemable.
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE invitation_codes").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE users").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err = svc.Redeem(context.Background(), 7, "ABCDEFGH")

	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedeem_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc := invite.NewService(repo, nil, nil)
	ctx := context.Background()

	admin := testutil.NewTestUser(t, repo, "admin@example.com")
	user := testutil.NewTestUser(t, repo, "user@example.com")

	past := time.Now().UTC().Add(-time.Hour)
	_, err := repo.CreateInvitationCode(ctx, "EXPRD222", admin.ID, &past)
	require.NoError(t, err)

	err = svc.Redeem(ctx, user.ID, "EXPRD222")

	var apiErr *apierr.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 410, apiErr.StatusCode)
}
