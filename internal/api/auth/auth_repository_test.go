package auth

import (
	"context"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snetlabs/social-network/internal/api"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresAuthRepo) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockPool.Close)
	return mockPool, NewPostgresAuthRepo(mockPool, slog.Default())
}

func userRow(id uuid.UUID, username, email, hash string, now time.Time) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "username", "email", "password_hash",
		"first_name", "last_name", "birth_date", "phone",
		"created_at", "updated_at",
	}).AddRow(id, username, email, hash, (*string)(nil), (*string)(nil), (*time.Time)(nil), (*string)(nil), now, now)
}

func TestPostgresAuthRepo_Insert(t *testing.T) {
	ctx := context.Background()
	insertPattern := regexp.QuoteMeta(`INSERT INTO users (username, email, password_hash)`)

	t.Run("Success", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		id := uuid.New()
		now := time.Now()
		mockPool.ExpectQuery(insertPattern).
			WithArgs("alice", "a@x.com", "hashed-pw").
			WillReturnRows(userRow(id, "alice", "a@x.com", "hashed-pw", now))

		user, err := repo.Insert(ctx, "alice", "a@x.com", "hashed-pw")
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateUsernameConstraint", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		mockPool.ExpectQuery(insertPattern).
			WithArgs("alice", "b@x.com", "hashed-pw").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"})

		_, err := repo.Insert(ctx, "alice", "b@x.com", "hashed-pw")
		assert.ErrorIs(t, err, api.ErrUsernameTaken)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("DuplicateEmailConstraint", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		mockPool.ExpectQuery(insertPattern).
			WithArgs("bob", "a@x.com", "hashed-pw").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

		_, err := repo.Insert(ctx, "bob", "a@x.com", "hashed-pw")
		assert.ErrorIs(t, err, api.ErrEmailTaken)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresAuthRepo_FindByUsernameOrEmail(t *testing.T) {
	ctx := context.Background()
	queryPattern := regexp.QuoteMeta(`FROM users WHERE username = $1 OR email = $1`)

	t.Run("FoundByUsername", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		id := uuid.New()
		mockPool.ExpectQuery(queryPattern).
			WithArgs("alice").
			WillReturnRows(userRow(id, "alice", "a@x.com", "hashed-pw", time.Now()))

		user, err := repo.FindByUsernameOrEmail(ctx, "alice")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "a@x.com", user.Email)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NotFoundIsNilNil", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		mockPool.ExpectQuery(queryPattern).
			WithArgs("ghost").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		user, err := repo.FindByUsernameOrEmail(ctx, "ghost")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}

func TestPostgresAuthRepo_FindConflict(t *testing.T) {
	ctx := context.Background()
	queryPattern := regexp.QuoteMeta(`FROM users WHERE username = $1 OR email = $2 LIMIT 1`)

	t.Run("Conflict", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		id := uuid.New()
		mockPool.ExpectQuery(queryPattern).
			WithArgs("alice", "other@x.com").
			WillReturnRows(userRow(id, "alice", "a@x.com", "hashed-pw", time.Now()))

		user, err := repo.FindConflict(ctx, "alice", "other@x.com")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "alice", user.Username)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})

	t.Run("NoConflict", func(t *testing.T) {
		mockPool, repo := newMockRepo(t)

		mockPool.ExpectQuery(queryPattern).
			WithArgs("newuser", "new@x.com").
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		user, err := repo.FindConflict(ctx, "newuser", "new@x.com")
		assert.NoError(t, err)
		assert.Nil(t, user)
		assert.NoError(t, mockPool.ExpectationsWereMet())
	})
}
