package application

import (
	"context"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// RateLimitCleanup removes counters whose window has closed.
type RateLimitCleanup struct {
	repo   domain.RateLimitRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimitCleanup(repo domain.RateLimitRepository, logger *zap.Logger) *RateLimitCleanup {
	return &RateLimitCleanup{repo: repo, logger: logger, now: time.Now}
}

// Run deletes expired counters once. It is meant to be scheduled.
func (c *RateLimitCleanup) Run(ctx context.Context) {
	deleted, err := c.repo.DeleteExpired(ctx, c.now())
	if err != nil {
		c.logger.Error("Failed to delete expired rate limit counters", zap.Error(err))
		return
	}
	c.logger.Info("Expired rate limit counters deleted", zap.Int64("count", deleted))
}
