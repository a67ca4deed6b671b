// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package httpapi

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/authvault/authvault/internal/auth"
)

// identityKey is the gin context key holding the authenticated identity.
// Unexported so downstream code goes through IdentityFromContext.
const identityKey = "authvault.identity"

// IdentityFromContext returns the authenticated identity attached by
// RequireAuth. ok is false on routes not behind the gate.
func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := v.(auth.Identity)
	return identity, ok
}

// RequireAuth is the session gate. It extracts the session cookie, validates
// the token, and attaches the derived identity to the request context; any
// failure rejects the request with the same unauthenticated response. The
// gate performs no database access: a token stays valid until expiry even if
// the account changed mid-lifetime, trading bounded staleness for
// statelessness.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			h.countTokenValidation("missing")
			writeErrorResponse(c, 401, "auth_error", "authentication required")
			return
		}

		claims, err := h.codec.Validate(token)
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				h.countTokenValidation("expired")
				h.logger.Debug("session token expired", "path", c.FullPath())
			} else {
				h.countTokenValidation("invalid")
				h.logger.Debug("session token invalid", "path", c.FullPath())
			}
			writeErrorResponse(c, 401, "auth_error", "not authenticated")
			return
		}

		userID, err := claims.UserID()
		if err != nil {
			h.countTokenValidation("invalid")
			writeErrorResponse(c, 401, "auth_error", "not authenticated")
			return
		}

		h.countTokenValidation("ok")
		c.Set(identityKey, auth.Identity{UserID: userID, Username: claims.Username})
		c.Next()
	}
}

// requestMetrics counts completed requests by method, route, and status.
func requestMetrics(h *Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if h.metrics == nil {
			return
		}
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		h.metrics.HTTPRequests.
			WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).
			Inc()
	}
}
