package memory

import (
	"context"
	"sync"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/oklog/ulid/v2"
)

type VerificationCodeRepository struct {
	mu    sync.RWMutex
	codes []*domain.VerificationCode
}

func NewVerificationCodeRepository() *VerificationCodeRepository {
	return &VerificationCodeRepository{}
}

// LockKey is a no-op. Transactor already serialises every transaction.
func (r *VerificationCodeRepository) LockKey(ctx context.Context, email string, purpose domain.Purpose) error {
	return nil
}

func (r *VerificationCodeRepository) InvalidateActive(ctx context.Context, email string, purpose domain.Purpose) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, c := range r.codes {
		if c.Email == email && c.Purpose == purpose && !c.Used {
			c.Used = true
			n++
		}
	}
	return n, nil
}

func (r *VerificationCodeRepository) Create(ctx context.Context, code *domain.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *code
	r.codes = append(r.codes, &c)
	return nil
}

func (r *VerificationCodeRepository) FindActive(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	return r.latest(func(c *domain.VerificationCode) bool {
		return c.Email == email && c.Code == code && c.Purpose == purpose && !c.Used && !c.Verified
	})
}

func (r *VerificationCodeRepository) FindLatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	return r.latest(func(c *domain.VerificationCode) bool {
		return c.Email == email && c.Purpose == purpose && !c.Used && !c.Verified
	})
}

func (r *VerificationCodeRepository) Consume(ctx context.Context, id ulid.ULID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.codes {
		if c.ID != id {
			continue
		}
		if c.Used || c.Verified {
			return domain.ErrCodeAlreadyConsumed
		}
		c.Used = true
		c.Verified = true
		return nil
	}
	return domain.ErrCodeAlreadyConsumed
}

func (r *VerificationCodeRepository) MarkSent(ctx context.Context, id ulid.ULID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range r.codes {
		if c.ID == id {
			c.LastSentAt = at
			return nil
		}
	}
	return domain.ErrVerificationCodeNotFound
}

// All returns copies of every stored code for email and purpose, oldest first.
func (r *VerificationCodeRepository) All(email string, purpose domain.Purpose) []domain.VerificationCode {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.VerificationCode
	for _, c := range r.codes {
		if c.Email == email && c.Purpose == purpose {
			out = append(out, *c)
		}
	}
	return out
}

func (r *VerificationCodeRepository) latest(match func(*domain.VerificationCode) bool) (*domain.VerificationCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best *domain.VerificationCode
	for _, c := range r.codes {
		if !match(c) {
			continue
		}
		if best == nil || c.CreatedAt.After(best.CreatedAt) ||
			(c.CreatedAt.Equal(best.CreatedAt) && c.ID.Compare(best.ID) > 0) {
			best = c
		}
	}
	if best == nil {
		return nil, domain.ErrVerificationCodeNotFound
	}
	out := *best
	return &out, nil
}
