// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"imagegate/internal/services/access"
)

// BlockDeniedIPs rejects requests from blocked addresses with 403. The
// underlying check fails open, so an unreachable store never locks the site.
// The client address comes from echo's RealIP, which trusts X-Forwarded-For
// and X-Real-IP; behind anything but a trusted proxy those headers are
// client-controlled.
func BlockDeniedIPs(svc *access.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			blocked, reason := svc.IsIPBlocked(c.Request().Context(), c.RealIP())
			if blocked {
				msg := "Access denied"
				if reason != "" {
					msg = "Access denied: " + reason
				}
				return c.JSON(http.StatusForbidden, map[string]string{"error": msg})
			}
			return next(c)
		}
	}
}
