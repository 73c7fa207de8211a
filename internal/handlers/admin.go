// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"imagegate/internal/middleware"
	"imagegate/internal/models"
)

// ListAllowlist returns allowlist entries, filtered by the q query
// parameter when present.
func (h *Handlers) ListAllowlist(c echo.Context) error {
	ctx := c.Request().Context()

	var entries []models.AllowedEmail
	var err error
	if q := c.QueryParam("q"); q != "" {
		entries, err = h.access.SearchAllowedEmails(ctx, q)
	} else {
		entries, err = h.access.ListAllowedEmails(ctx)
	}
	if err != nil {
		return h.fail(c, err, "admin.allowlist.list")
	}
	return c.JSON(http.StatusOK, map[string]any{"emails": entries})
}

// AddAllowlistRequest is the request body for allowlist additions.
type AddAllowlistRequest struct {
	Email string `json:"email"`
	Note  string `json:"note,omitempty"`
}

// AddAllowlistEntry adds an email to the allowlist. Admin only.
func (h *Handlers) AddAllowlistEntry(c echo.Context) error {
	var req AddAllowlistRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	sess := middleware.CurrentSession(c)

	entry, err := h.access.AddAllowedEmail(c.Request().Context(), req.Email, sess.UserID, req.Note)
	if err != nil {
		return h.fail(c, err, "admin.allowlist.add")
	}

	return c.JSON(http.StatusCreated, map[string]any{"success": true, "entry": entry})
}

// RemoveAllowlistEntry deletes an allowlist entry by ID. Admin only.
func (h *Handlers) RemoveAllowlistEntry(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid allowlist entry ID"})
	}

	if err := h.access.RemoveAllowedEmail(c.Request().Context(), id); err != nil {
		return h.fail(c, err, "admin.allowlist.remove")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}

// LoginHistory returns a page of a user's authentication events. Admin only.
func (h *Handlers) LoginHistory(c echo.Context) error {
	userID, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid user ID"})
	}

	page, pageSize := pagination(c)

	entries, total, err := h.access.LoginHistory(c.Request().Context(), userID, page, pageSize)
	if err != nil {
		return h.fail(c, err, "admin.login_history")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"entries":    entries,
		"pagination": newPaginationMeta(page, pageSize, total),
	})
}

// ListBlockedIPs returns every blocked address. Admin only.
func (h *Handlers) ListBlockedIPs(c echo.Context) error {
	blocked, err := h.access.ListBlockedIPs(c.Request().Context())
	if err != nil {
		return h.fail(c, err, "admin.blocked_ips.list")
	}
	return c.JSON(http.StatusOK, map[string]any{"blocked_ips": blocked})
}

// BlockIPRequest is the request body for blocking an address.
type BlockIPRequest struct {
	IP     string `json:"ip"`
	Reason string `json:"reason,omitempty"`
}

// BlockIP adds an address to the block list. Admin only.
func (h *Handlers) BlockIP(c echo.Context) error {
	var req BlockIPRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if net.ParseIP(req.IP) == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid IP address"})
	}

	if err := h.access.BlockIP(c.Request().Context(), req.IP, req.Reason); err != nil {
		return h.fail(c, err, "admin.blocked_ips.block")
	}

	return c.JSON(http.StatusCreated, map[string]any{"success": true})
}

// UnblockIP removes an address from the block list. Admin only.
func (h *Handlers) UnblockIP(c echo.Context) error {
	ip := c.Param("ip")
	if net.ParseIP(ip) == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid IP address"})
	}

	if err := h.access.UnblockIP(c.Request().Context(), ip); err != nil {
		return h.fail(c, err, "admin.blocked_ips.unblock")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
