// file: repository/token_repository.go

package repository

import (
	"database/sql"
	"nutritrack-api/logger"
	"nutritrack-api/model"
	"time"

	"github.com/sirupsen/logrus"
)

// ITokenRepository defines the contract for refresh token database operations.
// A refresh token row is keyed by the token value itself; one row is one
// outstanding, not-yet-redeemed credential.
type ITokenRepository interface {
	Create(token *model.RefreshToken) error
	GetByToken(tokenValue string) (*model.RefreshToken, error)
	DeleteByToken(tokenValue string) error
	Rotate(oldTokenValue string, replacement *model.RefreshToken) error
	DeleteByUserID(userID int) error
	SweepExpired(now time.Time) (int64, error)
}

// TokenRepository implements ITokenRepository.
type TokenRepository struct {
	DB *sql.DB
}

func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{DB: db}
}

// Create inserts a new refresh token record into the database.
func (r *TokenRepository) Create(token *model.RefreshToken) error {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id":    token.UserID,
		"expires_at": token.ExpiresAt,
	})
	log.Info("Executing query to create a new refresh token")

	query := `INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at`
	err := r.DB.QueryRow(query, token.Token, token.UserID, token.ExpiresAt).Scan(&token.CreatedAt)
	if err != nil {
		log.WithError(err).Error("Failed to execute create refresh token query")
		return err
	}
	return nil
}

// GetByToken retrieves a refresh token row by its exact token value.
// Returns sql.ErrNoRows when absent; the caller treats already-used, forged
// and revoked values identically.
func (r *TokenRepository) GetByToken(tokenValue string) (*model.RefreshToken, error) {
	token := &model.RefreshToken{}
	query := `SELECT token, user_id, expires_at, created_at FROM refresh_tokens WHERE token = $1`
	err := r.DB.QueryRow(query, tokenValue).Scan(&token.Token, &token.UserID, &token.ExpiresAt, &token.CreatedAt)
	if err != nil {
		if err != sql.ErrNoRows {
			logger.Log.WithError(err).Error("Failed to execute get refresh token query")
		}
		return nil, err
	}
	return token, nil
}

// DeleteByToken removes a single refresh token row. Deleting an absent row is
// not an error, which makes logout idempotent.
func (r *TokenRepository) DeleteByToken(tokenValue string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`
	_, err := r.DB.Exec(query, tokenValue)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to execute delete refresh token query")
		return err
	}
	return nil
}

// Rotate atomically redeems oldTokenValue and installs its replacement: the
// old row is deleted and the new row inserted inside a single transaction.
// If the old row is already gone (redeemed by a concurrent request, revoked,
// or swept) the transaction rolls back and sql.ErrNoRows is returned, so
// exactly one of two racing redeems of the same value can ever succeed.
func (r *TokenRepository) Rotate(oldTokenValue string, replacement *model.RefreshToken) error {
	log := logger.Log.WithField("user_id", replacement.UserID)
	log.Info("Executing refresh token rotation")

	tx, err := r.DB.Begin()
	if err != nil {
		log.WithError(err).Error("Failed to begin rotation transaction")
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM refresh_tokens WHERE token = $1`, oldTokenValue)
	if err != nil {
		log.WithError(err).Error("Failed to delete redeemed refresh token")
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	query := `INSERT INTO refresh_tokens (token, user_id, expires_at) VALUES ($1, $2, $3) RETURNING created_at`
	if err := tx.QueryRow(query, replacement.Token, replacement.UserID, replacement.ExpiresAt).Scan(&replacement.CreatedAt); err != nil {
		log.WithError(err).Error("Failed to insert replacement refresh token")
		return err
	}

	return tx.Commit()
}

// DeleteByUserID deletes all refresh tokens for a specific user.
// This is used for logging out from all sessions.
func (r *TokenRepository) DeleteByUserID(userID int) error {
	log := logger.Log.WithField("user_id", userID)
	log.Info("Executing query to delete all refresh tokens for a user")

	query := `DELETE FROM refresh_tokens WHERE user_id = $1`
	_, err := r.DB.Exec(query, userID)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete refresh tokens query")
		return err
	}
	return nil
}

// SweepExpired deletes every refresh token row past its expiry. Maintenance
// only; the redeem path checks expiry itself.
func (r *TokenRepository) SweepExpired(now time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM refresh_tokens WHERE expires_at < $1`, now)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to sweep expired refresh tokens")
		return 0, err
	}
	return res.RowsAffected()
}
