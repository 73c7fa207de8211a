// Copyright 2025 The imagegate authors
// Licensed under the EUPL-1.2

// Package apierr maps errors to the HTTP status/body contract shared by all
// route handlers. Errors produced inside this codebase carry an explicit
// status via *Error; errors from drivers and the network fall back to
// substring classification.
package apierr

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"syscall"
)

// Error is a throwable error carrying an explicit HTTP status. UserMessage is
// what the client sees; InternalMessage stays in the logs.
type Error struct {
	UserMessage     string
	InternalMessage string
	StatusCode      int
}

func (e *Error) Error() string {
	if e.InternalMessage != "" {
		return e.InternalMessage
	}
	return e.UserMessage
}

// New constructs an Error with an explicit status code. An optional internal
// message can be passed for logging; it is never sent to the client.
func New(statusCode int, userMessage string, internalMessage ...string) *Error {
	e := &Error{StatusCode: statusCode, UserMessage: userMessage}
	if len(internalMessage) > 0 {
		e.InternalMessage = internalMessage[0]
	}
	return e
}

// ErrorBody is the JSON failure body shared by every endpoint.
type ErrorBody struct {
	Error string `json:"error"`
}

// Handle classifies err into an HTTP status and response body, and logs the
// error once with the given context. Logging is part of the contract, not
// optional instrumentation.
func Handle(logger *slog.Logger, err error, context string) (int, ErrorBody) {
	status, userMessage := classify(err)

	if logger == nil {
		logger = slog.Default()
	}
	logger.Error("[API Error] "+context,
		"message", errMessage(err),
		"type", fmt.Sprintf("%T", err),
		"status", status,
	)

	return status, ErrorBody{Error: userMessage}
}

// classify resolves err to a status and user-facing message. The explicit
// *Error variant wins; everything else is matched in priority order, first
// match wins.
func classify(err error) (int, string) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, apiErr.UserMessage
	}

	msg := strings.ToLower(errMessage(err))

	switch {
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ETIMEDOUT),
		strings.Contains(msg, "econnrefused"), strings.Contains(msg, "etimedout"),
		strings.Contains(msg, "connection refused"):
		return 503, "Service temporarily unavailable"
	case strings.Contains(msg, "unique constraint"), strings.Contains(msg, "duplicate key"):
		return 409, "Resource already exists"
	case strings.Contains(msg, "foreign key"):
		return 409, "Resource is referenced by other data"
	case strings.Contains(msg, "quota"):
		return 507, "Storage quota exceeded"
	case isTimeout(err), strings.Contains(msg, "timeout"), strings.Contains(msg, "deadline exceeded"):
		return 504, "Request timed out"
	case isNetwork(err), strings.Contains(msg, "network"), strings.Contains(msg, "fetch failed"):
		return 502, "Upstream request failed"
	default:
		return 500, "Internal server error"
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func isNetwork(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr)
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
