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

func TestRecipeRepository_TransitionStatus(t *testing.T) {
	t.Run("matches only the expected current status", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		now := time.Now()
		mock.ExpectExec("UPDATE recipes").
			WithArgs(model.StatusPublished, "", &now, 1, model.StatusPendingReview).
			WillReturnResult(sqlmock.NewResult(0, 1))

		repo := NewRecipeRepository(db)
		err = repo.TransitionStatus(1, model.StatusPendingReview, model.StatusPublished, "", &now)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("zero matched rows reports a lost race", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec("UPDATE recipes").
			WithArgs(model.StatusRejected, "note", (*time.Time)(nil), 1, model.StatusPendingReview).
			WillReturnResult(sqlmock.NewResult(0, 0))

		repo := NewRecipeRepository(db)
		err = repo.TransitionStatus(1, model.StatusPendingReview, model.StatusRejected, "note", nil)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRateLimitRepository_CountSince(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	since := time.Now().Add(-time.Hour)
	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM rate_limit_attempts").
		WithArgs("user:1", "recipe_import", since).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	repo := NewRateLimitRepository(db)
	count, err := repo.CountSince(t.Context(), "user:1", "recipe_import", since)

	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
