// file: repository/ratelimit_repository.go

package repository

import (
	"context"
	"database/sql"
	"nutritrack-api/logger"
	"time"
)

// IRateLimitRepository defines the contract for rate limit attempt storage.
type IRateLimitRepository interface {
	CountSince(ctx context.Context, identifier, action string, since time.Time) (int, error)
	Record(ctx context.Context, identifier, action string) error
	SweepBefore(ctx context.Context, horizon time.Time) (int64, error)
}

// RateLimitRepository implements IRateLimitRepository over the append-only
// rate_limit_attempts table.
type RateLimitRepository struct {
	DB *sql.DB
}

func NewRateLimitRepository(db *sql.DB) *RateLimitRepository {
	return &RateLimitRepository{DB: db}
}

// CountSince counts attempts for (identifier, action) in the trailing window
// starting at since.
func (r *RateLimitRepository) CountSince(ctx context.Context, identifier, action string, since time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM rate_limit_attempts WHERE identifier = $1 AND action = $2 AND created_at >= $3`
	err := r.DB.QueryRowContext(ctx, query, identifier, action, since).Scan(&count)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to count rate limit attempts")
		return 0, err
	}
	return count, nil
}

// Record appends one attempt row for (identifier, action).
func (r *RateLimitRepository) Record(ctx context.Context, identifier, action string) error {
	query := `INSERT INTO rate_limit_attempts (identifier, action) VALUES ($1, $2)`
	if _, err := r.DB.ExecContext(ctx, query, identifier, action); err != nil {
		logger.Log.WithError(err).Error("Failed to record rate limit attempt")
		return err
	}
	return nil
}

// SweepBefore deletes attempt rows older than the horizon. Storage hygiene
// only; CountSince already filters by window.
func (r *RateLimitRepository) SweepBefore(ctx context.Context, horizon time.Time) (int64, error) {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM rate_limit_attempts WHERE created_at < $1`, horizon)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to sweep rate limit attempts")
		return 0, err
	}
	return res.RowsAffected()
}
