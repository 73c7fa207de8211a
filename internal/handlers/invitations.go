// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"imagegate/internal/middleware"
)

// CreateInvitationRequest is the request body for issuing a code.
type CreateInvitationRequest struct {
	Email          string `json:"email,omitempty"`
	ExpiresInHours int    `json:"expires_in_hours,omitempty"`
}

// CreateInvitation issues a new invitation code. Admin only. When an email
// is given the code is also mailed to it.
func (h *Handlers) CreateInvitation(c echo.Context) error {
	var req CreateInvitationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if req.Email != "" && !emailRegexp.MatchString(req.Email) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid email address"})
	}
	if req.ExpiresInHours < 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Expiry must not be negative"})
	}

	sess := middleware.CurrentSession(c)
	expiresIn := time.Duration(req.ExpiresInHours) * time.Hour

	inv, err := h.invites.Create(c.Request().Context(), sess.UserID, expiresIn, req.Email)
	if err != nil {
		return h.fail(c, err, "invitations.create")
	}

	return c.JSON(http.StatusCreated, map[string]any{
		"success":    true,
		"code":       inv.Code,
		"expires_at": inv.ExpiresAt,
	})
}

// ListInvitations returns the codes issued by the requesting admin.
func (h *Handlers) ListInvitations(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	codes, err := h.invites.List(c.Request().Context(), sess.UserID)
	if err != nil {
		return h.fail(c, err, "invitations.list")
	}

	return c.JSON(http.StatusOK, map[string]any{"invitations": codes})
}

// RedeemInvitationRequest is the request body for redeeming a code.
type RedeemInvitationRequest struct {
	Code string `json:"code"`
}

// RedeemInvitation redeems a code for the authenticated user.
func (h *Handlers) RedeemInvitation(c echo.Context) error {
	var req RedeemInvitationRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	sess := middleware.CurrentSession(c)

	if err := h.invites.Redeem(c.Request().Context(), sess.UserID, req.Code); err != nil {
		return h.fail(c, err, "invitations.redeem")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
