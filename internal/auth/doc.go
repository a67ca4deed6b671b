// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

// Package auth provides the credential and session-token core of AuthVault.
//
// # Components
//
//   - Argon2idHasher - salted, memory-hard password hashing and
//     constant-time verification
//   - TokenCodec - issues and validates HS256-signed session tokens
//   - Service - register/login/get-user over a UserRepository
//
// Sessions are stateless: the signed token is the entire session record and
// the server keeps no per-session state. Transport concerns (cookies, HTTP
// status mapping) live in internal/httpapi; persistence lives in
// internal/auth/postgres.
package auth
