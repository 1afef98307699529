package application

import (
	"context"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// RateLimiterService enforces per-scope fixed-window quotas backed by shared storage.
type RateLimiterService struct {
	repo   domain.RateLimitRepository
	rules  map[domain.RateLimitScope]domain.RateLimitRule
	logger *zap.Logger
	now    func() time.Time
}

func NewRateLimiterService(repo domain.RateLimitRepository, rules map[domain.RateLimitScope]domain.RateLimitRule, logger *zap.Logger) *RateLimiterService {
	return &RateLimiterService{
		repo:   repo,
		rules:  rules,
		logger: logger,
		now:    time.Now,
	}
}

// Allow counts one request for identity under scope. Scopes without a rule
// are unlimited. Storage failures fail open.
func (s *RateLimiterService) Allow(ctx context.Context, scope domain.RateLimitScope, identity string) *domain.RateLimitDecision {
	rule, ok := s.rules[scope]
	if !ok || rule.Limit <= 0 {
		return &domain.RateLimitDecision{Allowed: true, Remaining: -1}
	}

	now := s.now()
	count, resetAt, err := s.repo.Increment(ctx, domain.RateLimitKey(scope, identity), rule.Window, now)
	if err != nil {
		s.logger.Error("Rate limit check failed, allowing request",
			zap.String("scope", string(scope)),
			zap.Error(err))
		return &domain.RateLimitDecision{Allowed: true, Remaining: -1}
	}

	if count > rule.Limit {
		s.logger.Warn("Rate limit exceeded",
			zap.String("scope", string(scope)),
			zap.String("identity", identity),
			zap.Int("count", count))
		return &domain.RateLimitDecision{Allowed: false, RetryAfter: resetAt.Sub(now)}
	}
	return &domain.RateLimitDecision{Allowed: true, Remaining: rule.Limit - count}
}

// Rule returns the configured rule for scope.
func (s *RateLimiterService) Rule(scope domain.RateLimitScope) (domain.RateLimitRule, bool) {
	rule, ok := s.rules[scope]
	return rule, ok
}
