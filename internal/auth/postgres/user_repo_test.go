// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 AuthVault Contributors

package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authvault/authvault/internal/auth"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(mock.Close)
	return mock, NewUserRepository(mock)
}

func testUser() *auth.User {
	return &auth.User{
		ID:           ulid.Make(),
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestUserRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("inserts user", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.PasswordHash, user.CreatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := repo.Create(ctx, user)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("unique violation maps to username taken", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.PasswordHash, user.CreatedAt).
			WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation})

		err := repo.Create(ctx, user)
		assert.ErrorIs(t, err, auth.ErrUsernameTaken)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("other database error surfaces", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := testUser()

		mock.ExpectExec(`INSERT INTO users`).
			WithArgs(user.ID.String(), user.Username, user.PasswordHash, user.CreatedAt).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, user)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrUsernameTaken)
		assert.Contains(t, err.Error(), "connection refused")
	})
}

func TestUserRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := testUser()

		rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(user.ID.String(), user.Username, user.PasswordHash, user.CreatedAt)
		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs(user.ID.String()).
			WillReturnRows(rows)

		got, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
		assert.Equal(t, user.Username, got.Username)
		assert.Equal(t, user.PasswordHash, got.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("missing user returns not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := ulid.Make()

		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs(id.String()).
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByID(ctx, id)
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})

	t.Run("corrupt id in row returns error", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		id := ulid.Make()

		rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow("not-a-ulid", "alice", "hash", time.Now())
		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs(id.String()).
			WillReturnRows(rows)

		_, err := repo.GetByID(ctx, id)
		require.Error(t, err)
		assert.NotErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_GetByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("returns user", func(t *testing.T) {
		mock, repo := newMockRepo(t)
		user := testUser()

		rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at"}).
			AddRow(user.ID.String(), user.Username, user.PasswordHash, user.CreatedAt)
		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs("alice").
			WillReturnRows(rows)

		got, err := repo.GetByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("missing user returns not found", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`SELECT id, username, password_hash, created_at`).
			WithArgs("nobody").
			WillReturnError(pgx.ErrNoRows)

		_, err := repo.GetByUsername(ctx, "nobody")
		assert.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestUserRepository_ExistsByUsername(t *testing.T) {
	ctx := context.Background()

	t.Run("reports existing username", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("alice").
			WillReturnRows(rows)

		exists, err := repo.ExistsByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("reports missing username", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		rows := pgxmock.NewRows([]string{"exists"}).AddRow(false)
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("nobody").
			WillReturnRows(rows)

		exists, err := repo.ExistsByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("database error surfaces", func(t *testing.T) {
		mock, repo := newMockRepo(t)

		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs("alice").
			WillReturnError(errors.New("connection refused"))

		_, err := repo.ExistsByUsername(ctx, "alice")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")
	})
}
