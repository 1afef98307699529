package repository

import (
	"context"
	"time"

	"github.com/manorfm/scholarship-auth/internal/infrastructure/database"
	"go.uber.org/zap"
)

// RateLimitRepository keeps fixed-window counters in Postgres so every
// instance shares one quota.
type RateLimitRepository struct {
	logger *zap.Logger
	db     *database.Postgres
}

func NewRateLimitRepository(db *database.Postgres, logger *zap.Logger) *RateLimitRepository {
	return &RateLimitRepository{db: db, logger: logger}
}

// Increment counts one attempt, starting a fresh window when the stored one has ended.
func (r *RateLimitRepository) Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error) {
	var (
		count     int
		expiresAt time.Time
	)
	err := r.db.QueryRow(ctx, `
		INSERT INTO rate_limits (key, attempt_count, window_start, expires_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			attempt_count = CASE WHEN rate_limits.expires_at <= $2 THEN 1 ELSE rate_limits.attempt_count + 1 END,
			window_start  = CASE WHEN rate_limits.expires_at <= $2 THEN $2 ELSE rate_limits.window_start END,
			expires_at    = CASE WHEN rate_limits.expires_at <= $2 THEN $3 ELSE rate_limits.expires_at END
		RETURNING attempt_count, expires_at
	`, key, now, now.Add(window)).Scan(&count, &expiresAt)
	if err != nil {
		r.logger.Error("Failed to increment rate limit counter", zap.String("key", key), zap.Error(err))
		return 0, time.Time{}, err
	}
	return count, expiresAt, nil
}

func (r *RateLimitRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.ExecRaw(ctx, `DELETE FROM rate_limits WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
