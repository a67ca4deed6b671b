// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/oops"

	"github.com/authvault/authvault/internal/auth"
	"github.com/authvault/authvault/internal/observability"
)

// Handler bundles the credential service, the token codec, and transport
// settings. The handler boundary is the only place where the credential
// service and the token codec meet: the service never mints tokens, the
// codec never touches the store.
type Handler struct {
	svc     *auth.Service
	codec   *auth.TokenCodec
	cookies CookieConfig
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil (tests); logger falls
// back to slog.Default.
func NewHandler(svc *auth.Service, codec *auth.TokenCodec, cookies CookieConfig, metrics *observability.Metrics, logger *slog.Logger) (*Handler, error) {
	if svc == nil {
		return nil, oops.Code("HTTP_CONFIG_INVALID").Errorf("credential service is required")
	}
	if codec == nil {
		return nil, oops.Code("HTTP_CONFIG_INVALID").Errorf("token codec is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cookies.MaxAge <= 0 {
		cookies.MaxAge = codec.TTL()
	}
	return &Handler{
		svc:     svc,
		codec:   codec,
		cookies: cookies,
		metrics: metrics,
		logger:  logger,
	}, nil
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required,min=5,max=128"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// userResponse is the public view of a user. The password hash is never
// part of any response.
type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type authResponse struct {
	User    userResponse `json:"user"`
	Message string       `json:"message"`
}

func toUserResponse(u *auth.User) userResponse {
	return userResponse{
		ID:        u.ID.String(),
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, err)
		return
	}

	h.logger.Info("registration attempt", "username", req.Username)

	user, err := h.svc.Register(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.countRegister(registerStatus(err))
		writeError(c, h.logger, err)
		return
	}

	if !h.issueSession(c, user) {
		h.countRegister("error")
		return
	}

	h.countRegister("ok")
	h.logger.Info("user registered", "username", user.Username, "user_id", user.ID.String())
	c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Message: "Registration successful"})
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeValidationError(c, err)
		return
	}

	h.logger.Info("login attempt", "username", req.Username)

	user, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.countLogin(loginStatus(err))
		writeError(c, h.logger, err)
		return
	}

	if !h.issueSession(c, user) {
		h.countLogin("error")
		return
	}

	h.countLogin("ok")
	h.logger.Info("user authenticated", "username", user.Username, "user_id", user.ID.String())
	c.JSON(http.StatusOK, authResponse{User: toUserResponse(user), Message: "Login successful"})
}

// Logout handles POST /api/auth/logout. It only clears the client-side
// cookie; the token remains valid until expiry (stateless sessions, no
// server-side revocation).
func (h *Handler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.cookies)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me handles GET /api/auth/me. Runs behind RequireAuth and re-reads the
// store so a rename or deletion since issuance is visible here.
func (h *Handler) Me(c *gin.Context) {
	identity, ok := IdentityFromContext(c)
	if !ok {
		writeErrorResponse(c, http.StatusUnauthorized, "auth_error", "authentication required")
		return
	}

	user, err := h.svc.GetUser(c.Request.Context(), identity.UserID)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Health handles GET /api/health.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// issueSession mints a token for user and sets the session cookie. Reports
// false after writing an error response when signing fails.
func (h *Handler) issueSession(c *gin.Context, user *auth.User) bool {
	token, err := h.codec.Issue(user.ID, user.Username)
	if err != nil {
		writeError(c, h.logger, err)
		return false
	}
	setSessionCookie(c, h.cookies, token)
	return true
}

func registerStatus(err error) string {
	if status := errorStatus(err); status == "conflict" {
		return status
	}
	return "error"
}

func loginStatus(err error) string {
	if status := errorStatus(err); status == "invalid" {
		return status
	}
	return "error"
}

func (h *Handler) countRegister(status string) {
	if h.metrics != nil {
		h.metrics.RegisterAttempts.WithLabelValues(status).Inc()
	}
}

func (h *Handler) countLogin(status string) {
	if h.metrics != nil {
		h.metrics.LoginAttempts.WithLabelValues(status).Inc()
	}
}

func (h *Handler) countTokenValidation(result string) {
	if h.metrics != nil {
		h.metrics.TokenValidations.WithLabelValues(result).Inc()
	}
}
