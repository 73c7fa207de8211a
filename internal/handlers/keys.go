// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"imagegate/internal/middleware"
	"imagegate/internal/repository"
	"imagegate/internal/services/keycipher"
)

// SaveKeyRequest is the request body for storing a Google API key.
type SaveKeyRequest struct {
	APIKey string `json:"api_key"`
}

// SaveKey validates, encrypts and stores the user's Google API key. Saving
// again replaces the previous key.
func (h *Handlers) SaveKey(c echo.Context) error {
	var req SaveKeyRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if !keycipher.IsValidGoogleAPIKey(req.APIKey) {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid API key format"})
	}

	encrypted, iv, err := h.cipher.Encrypt(req.APIKey)
	if err != nil {
		if errors.Is(err, keycipher.ErrCipherDisabled) {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Key storage is not configured"})
		}
		return h.fail(c, err, "keys.save")
	}

	sess := middleware.CurrentSession(c)
	hint := keycipher.KeyHint(req.APIKey)

	if err := h.repo.UpsertUserAPIKey(c.Request().Context(), sess.UserID, encrypted, iv, hint); err != nil {
		return h.fail(c, err, "keys.save")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true, "hint": hint})
}

// GetKey returns the stored key's redacted hint, never the key itself.
func (h *Handlers) GetKey(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	key, err := h.repo.GetUserAPIKey(c.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No API key stored"})
		}
		return h.fail(c, err, "keys.get")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"hint":       key.Hint,
		"updated_at": key.UpdatedAt,
	})
}

// VerifyKey checks that the stored key still decrypts. It reports validity
// only; no key material leaves the server.
func (h *Handlers) VerifyKey(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	key, err := h.repo.GetUserAPIKey(c.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No API key stored"})
		}
		return h.fail(c, err, "keys.verify")
	}

	_, err = h.cipher.Decrypt(key.EncryptedKey, key.IV)
	return c.JSON(http.StatusOK, map[string]any{"valid": err == nil})
}

// DeleteKey removes the stored key.
func (h *Handlers) DeleteKey(c echo.Context) error {
	sess := middleware.CurrentSession(c)

	err := h.repo.DeleteUserAPIKey(c.Request().Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No API key stored"})
		}
		return h.fail(c, err, "keys.delete")
	}

	return c.JSON(http.StatusOK, map[string]any{"success": true})
}
