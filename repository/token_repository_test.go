// file: repository/token_repository_test.go

package repository

import (
	"database/sql"
	"nutritrack-api/model"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRepository_Rotate(t *testing.T) {
	t.Run("deletes the old row and inserts the replacement atomically", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		replacement := &model.RefreshToken{
			Token:     "new-token",
			UserID:    7,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM refresh_tokens WHERE token = \\$1").
			WithArgs("old-token").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO refresh_tokens").
			WithArgs("new-token", 7, replacement.ExpiresAt).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectCommit()

		repo := NewTokenRepository(db)
		err = repo.Rotate("old-token", replacement)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the old row is already gone", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM refresh_tokens WHERE token = \\$1").
			WithArgs("redeemed-token").
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		repo := NewTokenRepository(db)
		err = repo.Rotate("redeemed-token", &model.RefreshToken{Token: "new", UserID: 7})

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestTokenRepository_GetByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	expiry := time.Now().Add(time.Hour)
	mock.ExpectQuery("SELECT token, user_id, expires_at, created_at FROM refresh_tokens").
		WithArgs("some-token").
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at"}).
			AddRow("some-token", 3, expiry, time.Now()))

	repo := NewTokenRepository(db)
	token, err := repo.GetByToken("some-token")

	require.NoError(t, err)
	assert.Equal(t, 3, token.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTokenRepository_SweepExpired(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectExec("DELETE FROM refresh_tokens WHERE expires_at < \\$1").
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 4))

	repo := NewTokenRepository(db)
	count, err := repo.SweepExpired(now)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
