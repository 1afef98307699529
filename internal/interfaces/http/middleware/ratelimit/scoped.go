package ratelimit

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// maxPeekBytes bounds how much of a request body is buffered to find the email.
const maxPeekBytes = 64 << 10

// Limiter decides whether a request for identity under scope may proceed.
type Limiter interface {
	Allow(ctx context.Context, scope domain.RateLimitScope, identity string) *domain.RateLimitDecision
}

// ScopedLimiter applies the persisted per-scope quotas to HTTP routes.
type ScopedLimiter struct {
	limiter Limiter
	logger  *zap.Logger
}

func NewScopedLimiter(limiter Limiter, logger *zap.Logger) *ScopedLimiter {
	return &ScopedLimiter{limiter: limiter, logger: logger}
}

// Limit returns middleware counting requests against scope. For the
// email_verification scope the identity includes the email domain found in
// the JSON body, which is restored for the next handler.
func (s *ScopedLimiter) Limit(scope domain.RateLimitScope) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, ok := ClientIP(r)
			if !ok {
				errors.RespondWithError(w, domain.ErrInternal)
				return
			}

			email := ""
			if scope == domain.ScopeEmailVerification {
				email = peekEmail(r)
			}

			decision := s.limiter.Allow(r.Context(), scope, domain.ClientIdentity(scope, ip, email))
			if !decision.Allowed {
				s.logger.Debug("Request rate limited",
					zap.String("scope", string(scope)),
					zap.String("path", r.URL.Path))
				retry := int(math.Ceil(decision.RetryAfter.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				errors.RespondWithError(w, domain.ErrTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// peekEmail reads the "email" field from a JSON body and puts the body back.
// Only the first maxPeekBytes are inspected; the rest stays unread for the
// handler, whose own size limit applies to the whole body.
func peekEmail(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPeekBytes))
	r.Body = replayBody{
		Reader: io.MultiReader(bytes.NewReader(body), r.Body),
		Closer: r.Body,
	}
	if err != nil || len(body) == maxPeekBytes {
		return ""
	}

	var payload struct {
		Email string `json:"email"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Email
}

type replayBody struct {
	io.Reader
	io.Closer
}
