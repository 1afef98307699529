package domain

import (
	"context"
	"time"
)

// RateLimitScope groups endpoints that share a quota.
type RateLimitScope string

const (
	ScopeLogin             RateLimitScope = "login"
	ScopeRegistration      RateLimitScope = "registration"
	ScopeEmailVerification RateLimitScope = "email_verification"
)

// RateLimitRule allows Limit requests per fixed Window.
type RateLimitRule struct {
	Limit  int
	Window time.Duration
}

// RateLimitDecision is the outcome of a rate limit check.
type RateLimitDecision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// ClientIdentity derives the client part of a rate limit key.
// Verification issuance is keyed by IP plus the email's domain so many users
// behind one address can each request codes; every other scope uses the IP alone.
func ClientIdentity(scope RateLimitScope, ip, email string) string {
	if scope != ScopeEmailVerification {
		return ip
	}
	if d := EmailDomain(email); d != "" {
		return ip + "|" + d
	}
	return ip
}

// RateLimitKey is the storage key for scope and identity.
func RateLimitKey(scope RateLimitScope, identity string) string {
	return string(scope) + ":" + identity
}

// RateLimitRepository stores fixed-window counters.
type RateLimitRepository interface {
	// Increment bumps the counter for key, starting a new window when the
	// previous one ended before now. It returns the count and the window end.
	Increment(ctx context.Context, key string, window time.Duration, now time.Time) (int, time.Time, error)

	// DeleteExpired removes counters whose window ended before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
