// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers_test

import (
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagegate/internal/services/session"
	"imagegate/internal/testutil"
)

func TestAddAllowlistEntry(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")

	body := strings.NewReader(`{"email":"Friend@Example.com","note":"beta"}`)
	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/admin/allowlist", body)
	c.Set(sessionKey, &session.Session{UserID: admin.ID, Email: admin.Email, IsAdmin: true})

	require.NoError(t, f.h.AddAllowlistEntry(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	allowed, err := f.repo.IsEmailAllowed(c.Request().Context(), "friend@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAddAllowlistEntry_Duplicate(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")
	_, err := f.repo.CreateAllowedEmail(t.Context(), "friend@example.com", admin.ID, "")
	require.NoError(t, err)

	body := strings.NewReader(`{"email":"friend@example.com"}`)
	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/admin/allowlist", body)
	c.Set(sessionKey, &session.Session{UserID: admin.ID, Email: admin.Email, IsAdmin: true})

	require.NoError(t, f.h.AddAllowlistEntry(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already on the allowlist")
}

func TestAddAllowlistEntry_InvalidEmail(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")

	body := strings.NewReader(`{"email":"nope"}`)
	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/admin/allowlist", body)
	c.Set(sessionKey, &session.Session{UserID: admin.ID, Email: admin.Email, IsAdmin: true})

	require.NoError(t, f.h.AddAllowlistEntry(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRemoveAllowlistEntry(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")
	entry, err := f.repo.CreateAllowedEmail(t.Context(), "friend@example.com", admin.ID, "")
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(f.e, http.MethodDelete, "/api/admin/allowlist/1", nil)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(entry.ID, 10))

	require.NoError(t, f.h.RemoveAllowlistEntry(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	allowed, err := f.repo.IsEmailAllowed(t.Context(), "friend@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestRemoveAllowlistEntry_BadID(t *testing.T) {
	f := newFixture(t, nil)

	c, rec := testutil.NewEchoContext(f.e, http.MethodDelete, "/api/admin/allowlist/abc", nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, f.h.RemoveAllowlistEntry(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListAllowlist(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")
	_, err := f.repo.CreateAllowedEmail(t.Context(), "a@example.com", admin.ID, "")
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/api/admin/allowlist", nil)

	require.NoError(t, f.h.ListAllowlist(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "a@example.com")
}

func TestListAllowlist_Filtered(t *testing.T) {
	f := newFixture(t, nil)
	admin := testutil.NewTestUser(t, f.repo, "admin@example.com")
	_, err := f.repo.CreateAllowedEmail(t.Context(), "alice@example.com", admin.ID, "")
	require.NoError(t, err)
	_, err = f.repo.CreateAllowedEmail(t.Context(), "bob@example.com", admin.ID, "")
	require.NoError(t, err)

	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/api/admin/allowlist?q=ali", nil)

	require.NoError(t, f.h.ListAllowlist(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec.Body.String())
	assert.Len(t, out["emails"], 1)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
}

func TestLoginHistoryEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	user := testutil.NewTestUser(t, f.repo, "user@example.com")
	for i := 0; i < 5; i++ {
		require.NoError(t, f.repo.RecordLogin(t.Context(), user.ID, "203.0.113.7", "", true))
	}

	c, rec := testutil.NewEchoContext(f.e, http.MethodGet, "/api/admin/login-history/1?page=1&page_size=2", nil)
	c.SetParamNames("userID")
	c.SetParamValues("1")

	require.NoError(t, f.h.LoginHistory(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	out := decode(t, rec.Body.String())
	meta := out["pagination"].(map[string]any)
	assert.Equal(t, float64(5), meta["total"])
	assert.Equal(t, float64(3), meta["total_pages"])
}

func TestBlockIP_Validation(t *testing.T) {
	f := newFixture(t, nil)

	body := strings.NewReader(`{"ip":"not-an-ip"}`)
	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/admin/blocked-ips", body)

	require.NoError(t, f.h.BlockIP(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBlockAndUnblockIP(t *testing.T) {
	f := newFixture(t, nil)

	body := strings.NewReader(`{"ip":"203.0.113.7","reason":"abuse"}`)
	c, rec := testutil.NewEchoContext(f.e, http.MethodPost, "/api/admin/blocked-ips", body)
	require.NoError(t, f.h.BlockIP(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	c, rec = testutil.NewEchoContext(f.e, http.MethodGet, "/api/admin/blocked-ips", nil)
	require.NoError(t, f.h.ListBlockedIPs(c))
	assert.Contains(t, rec.Body.String(), "203.0.113.7")

	c, rec = testutil.NewEchoContext(f.e, http.MethodDelete, "/api/admin/blocked-ips/203.0.113.7", nil)
	c.SetParamNames("ip")
	c.SetParamValues("203.0.113.7")
	require.NoError(t, f.h.UnblockIP(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUnblockIP_NotBlocked(t *testing.T) {
	f := newFixture(t, nil)

	c, rec := testutil.NewEchoContext(f.e, http.MethodDelete, "/api/admin/blocked-ips/198.51.100.1", nil)
	c.SetParamNames("ip")
	c.SetParamValues("198.51.100.1")

	require.NoError(t, f.h.UnblockIP(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
