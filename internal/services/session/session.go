// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package session implements signed cookie sessions.
package session

import (
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/labstack/echo/v4"

	"imagegate/internal/config"
)

// ErrNoSession is returned when the request carries no valid session cookie.
var ErrNoSession = errors.New("session: no valid session")

// Session is the authenticated state carried in the cookie.
type Session struct {
	Email   string
	UserID  int64
	IsAdmin bool
}

// Manager signs and verifies session cookies.
type Manager struct {
	sc         *securecookie.SecureCookie
	cookieName string
	maxAge     int
	secure     bool
}

// NewManager creates a session manager from configuration. The session
// secret is a 32-byte hex string; when absent, a random key is generated,
// which invalidates sessions across restarts and is only acceptable in
// development.
func NewManager(cfg *config.AuthConfig, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	hashKey, err := hex.DecodeString(cfg.SessionSecret)
	if err != nil || len(hashKey) != 32 {
		logger.Warn("session secret missing or malformed, generating ephemeral key")
		hashKey = securecookie.GenerateRandomKey(32)
	}

	// Signing only; the session carries no secrets worth encrypting and a
	// stable block key would need its own config knob.
	sc := securecookie.New(hashKey, nil)
	sc.MaxAge(cfg.SessionMaxAge)

	return &Manager{
		sc:         sc,
		cookieName: cfg.CookieName,
		maxAge:     cfg.SessionMaxAge,
		secure:     cfg.CookieSecure,
	}
}

// Write stores the session in a signed cookie on the response.
func (m *Manager) Write(c echo.Context, sess *Session) error {
	encoded, err := m.sc.Encode(m.cookieName, sess)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   m.maxAge,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Read decodes the session cookie from the request. Any tampering or expiry
// yields ErrNoSession.
func (m *Manager) Read(c echo.Context) (*Session, error) {
	cookie, err := c.Cookie(m.cookieName)
	if err != nil {
		return nil, ErrNoSession
	}

	var sess Session
	if err := m.sc.Decode(m.cookieName, cookie.Value, &sess); err != nil {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// Clear expires the session cookie.
func (m *Manager) Clear(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     m.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
