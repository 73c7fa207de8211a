// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagegate/internal/repository"
	"imagegate/internal/testutil"
)

func TestUpsertUserAPIKey_CreatesAndReplaces(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "user@example.com")

	err := repo.UpsertUserAPIKey(ctx, user.ID, "cipher-1", "iv-1", "****abcd")
	require.NoError(t, err)

	key, err := repo.GetUserAPIKey(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "cipher-1", key.EncryptedKey)
	assert.Equal(t, "****abcd", key.Hint)

	// Saving again replaces the existing row, it never creates a second one.
	err = repo.UpsertUserAPIKey(ctx, user.ID, "cipher-2", "iv-2", "****efgh")
	require.NoError(t, err)

	key, err = repo.GetUserAPIKey(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "cipher-2", key.EncryptedKey)
	assert.Equal(t, "iv-2", key.IV)
	assert.Equal(t, "****efgh", key.Hint)
}

func TestGetUserAPIKey_Missing(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	_, err := repo.GetUserAPIKey(context.Background(), 4711)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUserAPIKey(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser(t, repo, "user@example.com")
	require.NoError(t, repo.UpsertUserAPIKey(ctx, user.ID, "cipher", "iv", "****abcd"))

	require.NoError(t, repo.DeleteUserAPIKey(ctx, user.ID))

	_, err := repo.GetUserAPIKey(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDeleteUserAPIKey_Missing(t *testing.T) {
	_, repo := testutil.NewTestDB(t)

	err := repo.DeleteUserAPIKey(context.Background(), 4711)

	assert.ErrorIs(t, err, repository.ErrNotFound)
}
