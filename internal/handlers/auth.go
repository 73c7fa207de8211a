// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"

	"imagegate/internal/middleware"
	"imagegate/internal/repository"
	"imagegate/internal/services/session"
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// LoginRequest is the request body for the site-password login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates with the shared site password. On success the user is
// created on first sight, the login is recorded for auditing, an allowlist
// grant is applied if one is pending, and a session cookie is issued.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	// No configured password means login is disabled, not open.
	if h.cfg.SitePassword == "" {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Login is not configured"})
	}
	if !emailRegexp.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email address"})
	}

	ctx := c.Request().Context()

	user, err := h.repo.GetUserByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return h.fail(c, err, "auth.login")
	}

	// A wrong password must not mint user rows for arbitrary emails, so
	// failed attempts are only audited for users that already exist.
	if req.Password != h.cfg.SitePassword {
		if user != nil {
			if err := h.repo.RecordLogin(ctx, user.ID, c.RealIP(), c.Request().UserAgent(), false); err != nil {
				h.logger.Error("recording failed login", "error", err)
			}
		}
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if user == nil {
		user, err = h.repo.CreateUser(ctx, req.Email)
		if err != nil {
			return h.fail(c, err, "auth.login")
		}
	}

	if err := h.repo.RecordLogin(ctx, user.ID, c.RealIP(), c.Request().UserAgent(), true); err != nil {
		h.logger.Error("recording login", "error", err)
	}

	// Apply a pending allowlist grant, if any. Failure here only means the
	// user stays unauthorized until an invitation is redeemed.
	if _, err := h.access.AuthorizeViaAllowlist(ctx, user.ID); err != nil {
		h.logger.Error("allowlist authorization", "user_id", user.ID, "error", err)
	}

	authorized, err := h.access.IsUserAuthorized(ctx, user.ID)
	if err != nil {
		return h.fail(c, err, "auth.login")
	}

	sess := &session.Session{
		UserID:  user.ID,
		Email:   user.Email,
		IsAdmin: h.access.IsAdminEmail(user.Email),
	}
	if err := h.sessions.Write(c, sess); err != nil {
		return h.fail(c, err, "auth.login")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"success":    true,
		"authorized": authorized,
		"admin":      sess.IsAdmin,
	})
}

// Logout clears the session cookie.
func (h *Handlers) Logout(c echo.Context) error {
	h.sessions.Clear(c)
	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// Me returns the authenticated user's access state.
func (h *Handlers) Me(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	authorized, err := h.access.IsUserAuthorized(c.Request().Context(), sess.UserID)
	if err != nil {
		return h.fail(c, err, "auth.me")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"user_id":    sess.UserID,
		"email":      sess.Email,
		"authorized": authorized,
		"admin":      h.access.IsAdminEmail(sess.Email),
	})
}
