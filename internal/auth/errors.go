// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package auth

import "errors"

// Sentinel errors shared across layers. Callers check kinds with errors.Is;
// the oops codes wrapped around them carry the structured context.
var (
	// ErrNotFound is returned when a requested user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredentials is returned for a failed login. The message is
	// deliberately the same for unknown username and wrong password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidUsername is returned when a username fails the domain rules
	// (length or character set).
	ErrInvalidUsername = errors.New("invalid username")

	// ErrUsernameTaken is returned when registration collides with an
	// existing username, whether caught by the pre-check or by the store's
	// unique constraint.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("token expired")

	// ErrTokenInvalid is returned for a token that is malformed, carries the
	// wrong signature, or was signed with an unexpected algorithm.
	ErrTokenInvalid = errors.New("invalid token")
)
