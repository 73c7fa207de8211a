// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package main

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"imagegate/internal/handlers"
	"imagegate/internal/middleware"
	"imagegate/internal/services/access"
	"imagegate/internal/services/session"
)

func setupRoutes(e *echo.Echo, h *handlers.Handlers, accessSvc *access.Service, sessions *session.Manager, logger *slog.Logger) {
	e.Use(middleware.RequestLogger(logger))

	// Public
	e.GET("/health", h.Health)

	// Authentication
	auth := e.Group("/auth", middleware.BlockDeniedIPs(accessSvc))
	auth.POST("/site-password", h.Login)
	auth.POST("/logout", h.Logout)

	// Authenticated API
	api := e.Group("/api", middleware.BlockDeniedIPs(accessSvc), middleware.RequireAuth(sessions))
	api.GET("/me", h.Me)
	api.POST("/invitations/redeem", h.RedeemInvitation)

	api.PUT("/keys", h.SaveKey)
	api.GET("/keys", h.GetKey)
	api.POST("/keys/verify", h.VerifyKey)
	api.DELETE("/keys", h.DeleteKey)

	// Admin
	admin := api.Group("/admin", middleware.RequireAdmin(accessSvc))
	admin.GET("/allowlist", h.ListAllowlist)
	admin.POST("/allowlist", h.AddAllowlistEntry)
	admin.DELETE("/allowlist/:id", h.RemoveAllowlistEntry)
	admin.GET("/login-history/:userID", h.LoginHistory)
	admin.GET("/blocked-ips", h.ListBlockedIPs)
	admin.POST("/blocked-ips", h.BlockIP)
	admin.DELETE("/blocked-ips/:ip", h.UnblockIP)
	admin.POST("/invitations", h.CreateInvitation)
	admin.GET("/invitations", h.ListInvitations)
}
