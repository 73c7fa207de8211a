// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package session_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imagegate/internal/config"
	"imagegate/internal/services/session"
)

func newManager() *session.Manager {
	cfg := &config.AuthConfig{
		SessionSecret: strings.Repeat("ab", 32), // 32 bytes hex
		CookieName:    "_session",
		SessionMaxAge: 3600,
	}
	return session.NewManager(cfg, nil)
}

func TestWriteRead_RoundTrip(t *testing.T) {
	m := newManager()
	e := echo.New()

	// Write the session on one response...
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := m.Write(c, &session.Session{UserID: 42, Email: "user@example.com", IsAdmin: true})
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	// ...and read it back on the next request.
	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(cookies[0])
	c2 := e.NewContext(req2, httptest.NewRecorder())

	sess, err := m.Read(c2)
	require.NoError(t, err)
	assert.Equal(t, int64(42), sess.UserID)
	assert.Equal(t, "user@example.com", sess.Email)
	assert.True(t, sess.IsAdmin)
}

func TestRead_NoCookie(t *testing.T) {
	m := newManager()
	e := echo.New()

	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())

	_, err := m.Read(c)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRead_TamperedCookie(t *testing.T) {
	m := newManager()
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "_session", Value: "tampered-value"})
	c := e.NewContext(req, httptest.NewRecorder())

	_, err := m.Read(c)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestRead_DifferentSecretRejected(t *testing.T) {
	m := newManager()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)
	require.NoError(t, m.Write(c, &session.Session{UserID: 7}))

	other := session.NewManager(&config.AuthConfig{
		SessionSecret: strings.Repeat("cd", 32),
		CookieName:    "_session",
		SessionMaxAge: 3600,
	}, nil)

	req2 := httptest.NewRequest(http.MethodGet, "/", nil)
	req2.AddCookie(rec.Result().Cookies()[0])
	c2 := e.NewContext(req2, httptest.NewRecorder())

	_, err := other.Read(c2)
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestClear(t *testing.T) {
	m := newManager()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/", nil), rec)

	m.Clear(c)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}
