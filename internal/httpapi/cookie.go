// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session token.
const SessionCookieName = "token"

// CookieConfig holds the transport-side cookie settings. MaxAge tracks the
// token TTL so cookie and token expire together.
type CookieConfig struct {
	Domain string
	Secure bool
	MaxAge time.Duration
}

// setSessionCookie attaches the session token as an HttpOnly, SameSite=Lax
// cookie. HttpOnly keeps it away from scripts; Lax still sends it on
// top-level navigation, which is all the frontend needs.
func setSessionCookie(c *gin.Context, cfg CookieConfig, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, token, int(cfg.MaxAge.Seconds()), "/", cfg.Domain, cfg.Secure, true)
}

// clearSessionCookie expires the session cookie client-side. The token itself
// stays valid until its natural expiry; logout is stateless by design.
func clearSessionCookie(c *gin.Context, cfg CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(SessionCookieName, "", -1, "/", cfg.Domain, cfg.Secure, true)
}
