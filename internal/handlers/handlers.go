// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package handlers contains all HTTP handlers.
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"imagegate/internal/apierr"
	"imagegate/internal/config"
	"imagegate/internal/repository"
	"imagegate/internal/services/access"
	"imagegate/internal/services/invite"
	"imagegate/internal/services/keycipher"
	"imagegate/internal/services/session"
)

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	repo     *repository.Repository
	access   *access.Service
	invites  *invite.Service
	cipher   *keycipher.Cipher
	sessions *session.Manager
	cfg      *config.AuthConfig
	logger   *slog.Logger
}

// New creates a new Handlers instance.
func New(repo *repository.Repository, accessSvc *access.Service, invites *invite.Service,
	cipher *keycipher.Cipher, sessions *session.Manager, cfg *config.AuthConfig, logger *slog.Logger,
) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{
		repo:     repo,
		access:   accessSvc,
		invites:  invites,
		cipher:   cipher,
		sessions: sessions,
		cfg:      cfg,
		logger:   logger,
	}
}

// Health returns the health status.
func (h *Handlers) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// fail translates any error into the shared {error: string} contract.
func (h *Handlers) fail(c echo.Context, err error, context string) error {
	status, body := apierr.Handle(h.logger, err, context)
	return c.JSON(status, body)
}

// pagination reads page and page_size query parameters, falling back to
// page 1 with 20 entries. The repository clamps the upper bound.
func pagination(c echo.Context) (page, pageSize int) {
	page = 1
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil && v >= 1 {
		page = v
	}
	pageSize = 20
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil && v >= 1 {
		pageSize = v
	}
	return page, pageSize
}

// paginationMeta is the pagination block of paginated list responses.
type paginationMeta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

func newPaginationMeta(page, pageSize int, total int64) paginationMeta {
	var totalPages int64
	if pageSize > 0 {
		totalPages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return paginationMeta{Page: page, PageSize: pageSize, Total: total, TotalPages: totalPages}
}
