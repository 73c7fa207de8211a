// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"imagegate/internal/apierr"
)

// ErrorHandler renders every error that escapes a handler, including echo's
// own routing errors, in the shared {error: string} contract.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var status int
		var body apierr.ErrorBody

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			// Routing errors (404, 405) carry their own status and message
			// and are not failures worth an error log.
			status = httpErr.Code
			body = apierr.ErrorBody{Error: fmt.Sprint(httpErr.Message)}
		} else {
			status, body = apierr.Handle(logger, err, c.Request().Method+" "+c.Request().URL.Path)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, body)
		}
		if writeErr != nil {
			logger.Error("writing error response", "error", writeErr)
		}
	}
}
