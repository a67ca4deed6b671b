// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package httpapi

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/authvault/authvault/internal/auth"
	"github.com/authvault/authvault/pkg/errutil"
)

// errorBody is the wire envelope for all error responses.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// writeError translates a domain error into an HTTP response. Token and
// credential failures collapse to one generic unauthenticated answer;
// internals are logged, never returned.
func writeError(c *gin.Context, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidUsername):
		writeErrorResponse(c, http.StatusBadRequest, "validation_error",
			"username must start with a letter and contain only letters, numbers, and underscores")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorResponse(c, http.StatusUnauthorized, "auth_error", "invalid username or password")
	case errors.Is(err, auth.ErrTokenExpired), errors.Is(err, auth.ErrTokenInvalid):
		// Expired vs tampered is for logs and metrics only.
		writeErrorResponse(c, http.StatusUnauthorized, "auth_error", "not authenticated")
	case errors.Is(err, auth.ErrUsernameTaken):
		writeErrorResponse(c, http.StatusConflict, "conflict", "username already taken")
	case errors.Is(err, auth.ErrNotFound):
		writeErrorResponse(c, http.StatusNotFound, "not_found", "user not found")
	default:
		errutil.LogError(logger, "request failed", err)
		writeErrorResponse(c, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeErrorResponse(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, errorBody{Error: errorDetail{Type: errType, Message: message}})
}

// writeValidationError reports a request-shape failure (missing fields,
// out-of-range lengths) from the binding layer.
func writeValidationError(c *gin.Context, err error) {
	writeErrorResponse(c, http.StatusBadRequest, "validation_error", err.Error())
}

// errorStatus classifies a domain error for metrics labels.
func errorStatus(err error) string {
	switch {
	case errors.Is(err, auth.ErrUsernameTaken):
		return "conflict"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "invalid"
	default:
		return "error"
	}
}
