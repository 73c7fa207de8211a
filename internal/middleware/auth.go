// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package middleware provides the echo middleware chain of the service.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"imagegate/internal/services/access"
	"imagegate/internal/services/session"
)

// sessionKey is the echo context key holding the decoded session.
const sessionKey = "imagegate.session"

// CurrentSession returns the authenticated session from the echo context,
// or nil when the request is anonymous.
func CurrentSession(c echo.Context) *session.Session {
	if sess, ok := c.Get(sessionKey).(*session.Session); ok {
		return sess
	}
	return nil
}

// RequireAuth rejects requests without a valid session cookie with 401 and
// stores the decoded session in the context for handlers downstream.
func RequireAuth(sm *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess, err := sm.Read(c)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authentication required"})
			}
			c.Set(sessionKey, sess)
			return next(c)
		}
	}
}

// RequireAdmin allows only sessions whose email is a configured
// administrator. The check fails closed: no session, no admin list, or an
// unlisted email all yield 403.
func RequireAdmin(svc *access.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sess := CurrentSession(c)
			if sess == nil || !svc.IsAdminEmail(sess.Email) {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "Admin access required"})
			}
			return next(c)
		}
	}
}
