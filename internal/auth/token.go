// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// DefaultTokenTTL is the session token lifetime used when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// tokenSigningMethod is the only algorithm the codec signs with and the only
// one the verifier accepts. Pinning it verifier-side guards against
// algorithm-confusion and none-algorithm forgeries: the token's self-declared
// alg header is never trusted.
var tokenSigningMethod = jwt.SigningMethodHS256

// Claims is the payload of a session token. The username is embedded for
// display convenience only; it is not a source of truth after issuance.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
}

// UserID parses the token subject as a ULID.
func (c *Claims) UserID() (ulid.ULID, error) {
	id, err := ulid.Parse(c.Subject)
	if err != nil {
		return ulid.ULID{}, oops.Code("TOKEN_INVALID").
			With("operation", "parse token subject").
			Wrap(ErrTokenInvalid)
	}
	return id, nil
}

// TokenCodec issues and validates signed session tokens. The secret is a
// process-wide symmetric key configured once at startup; tokens are
// self-contained, so the server holds no session state.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a TokenCodec. The secret is required; ttl falls back
// to DefaultTokenTTL when non-positive.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, oops.Code("TOKEN_CONFIG_INVALID").Errorf("signing secret is required")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenCodec{secret: secret, ttl: ttl}, nil
}

// TTL returns the configured token lifetime. The transport layer uses it for
// the cookie max-age so cookie and token expire together.
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue mints a signed token for the user with iat = now and exp = now + ttl.
func (c *TokenCodec) Issue(userID ulid.ULID, username string) (string, error) {
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Username: username,
	}

	token, err := jwt.NewWithClaims(tokenSigningMethod, claims).SignedString(c.secret)
	if err != nil {
		return "", oops.Code("TOKEN_ISSUE_FAILED").
			With("operation", "sign token").
			Wrap(err)
	}
	return token, nil
}

// Validate verifies the signature and expiry of tokenString and returns its
// claims. It fails with ErrTokenExpired for a correctly signed token past its
// expiry, and ErrTokenInvalid for everything else: bad signature, wrong or
// missing algorithm, malformed structure, or an unparseable subject. Callers
// may distinguish the two for logging, but both must collapse to the same
// unauthenticated response at the transport boundary.
func (c *TokenCodec) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{tokenSigningMethod.Alg()}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, oops.Code("TOKEN_EXPIRED").Wrap(ErrTokenExpired)
		}
		return nil, oops.Code("TOKEN_INVALID").
			With("operation", "parse token").
			Wrap(ErrTokenInvalid)
	}
	if !token.Valid {
		return nil, oops.Code("TOKEN_INVALID").Wrap(ErrTokenInvalid)
	}

	// Required claim fields beyond what the parser enforces.
	if _, err := claims.UserID(); err != nil {
		return nil, err
	}
	if claims.IssuedAt == nil {
		return nil, oops.Code("TOKEN_INVALID").
			With("operation", "check issued-at claim").
			Wrap(ErrTokenInvalid)
	}

	return claims, nil
}
