// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/httpapi"
)

func TestRequireAuth_ExpiredToken(t *testing.T) {
	s := newTestServer(t)
	s.register(t, "alice", "secret123")

	// Mint an already-expired token with the server's own secret so only
	// the expiry check fails.
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":      ulid.Make().String(),
		"username": "alice",
		"iat":      now.Add(-2 * time.Hour).Unix(),
		"exp":      now.Add(-time.Hour).Unix(),
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte("handler-test-secret"))
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/auth/me", nil,
		&http.Cookie{Name: httpapi.SessionCookieName, Value: expired})

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	_, message := decodeError(t, rec)
	// Expired and tampered tokens are indistinguishable on the wire.
	assert.Equal(t, "not authenticated", message)
}

func TestRequireAuth_EmptyCookieValue(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/auth/me", nil,
		&http.Cookie{Name: httpapi.SessionCookieName, Value: ""})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestIdentityFromContext_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := httpapi.IdentityFromContext(c)
	assert.False(t, ok)
}
