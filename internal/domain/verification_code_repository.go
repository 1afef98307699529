package domain

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// VerificationCodeRepository persists verification codes.
type VerificationCodeRepository interface {
	// LockKey serialises writers for (email, purpose) until the surrounding transaction ends.
	LockKey(ctx context.Context, email string, purpose Purpose) error

	// InvalidateActive marks every unused code for (email, purpose) as used.
	InvalidateActive(ctx context.Context, email string, purpose Purpose) (int64, error)

	// Create stores a new verification code
	Create(ctx context.Context, code *VerificationCode) error

	// FindActive returns the newest unused, unverified code matching email, code and purpose.
	// Ties on created_at are broken by the highest id.
	FindActive(ctx context.Context, email, code string, purpose Purpose) (*VerificationCode, error)

	// FindLatestActive returns the newest unused, unverified code for email and purpose.
	FindLatestActive(ctx context.Context, email string, purpose Purpose) (*VerificationCode, error)

	// Consume sets used and verified on an unconsumed code.
	// It returns ErrCodeAlreadyConsumed when the code was consumed or superseded concurrently.
	Consume(ctx context.Context, id ulid.ULID) error

	// MarkSent records a delivery attempt.
	MarkSent(ctx context.Context, id ulid.ULID, at time.Time) error
}

// Transactor runs fn atomically. Repositories called with the ctx passed to fn join the transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
