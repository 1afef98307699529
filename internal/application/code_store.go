package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// CodeStore owns verification code state. Issuing and consuming are
// serialised per (email, purpose) so at most one code is ever active.
type CodeStore struct {
	repo     domain.VerificationCodeRepository
	tx       domain.Transactor
	settings domain.OTPSettings
	logger   *zap.Logger
	now      func() time.Time
	generate func(length int) (string, error)
}

func NewCodeStore(repo domain.VerificationCodeRepository, tx domain.Transactor, settings domain.OTPSettings, logger *zap.Logger) *CodeStore {
	return &CodeStore{
		repo:     repo,
		tx:       tx,
		settings: settings,
		logger:   logger,
		now:      time.Now,
		generate: domain.GenerateNumericCode,
	}
}

// Issue supersedes every unused code for (email, purpose) and stores a fresh one.
func (s *CodeStore) Issue(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	issued, _, err := s.IssueAfter(ctx, email, purpose, 0)
	return issued, err
}

// IssueAfter is Issue guarded by a cooldown. While the newest valid code is
// younger than cooldown nothing is stored and the seconds left are returned.
// The check runs under the per-key lock, so concurrent callers cannot both pass it.
func (s *CodeStore) IssueAfter(ctx context.Context, email string, purpose domain.Purpose, cooldown time.Duration) (*domain.VerificationCode, int, error) {
	if !purpose.IsValid() {
		return nil, 0, fmt.Errorf("unknown purpose %q", purpose)
	}
	email = domain.NormalizeEmail(email)

	var (
		issued *domain.VerificationCode
		wait   int
	)
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockKey(ctx, email, purpose); err != nil {
			return err
		}
		if cooldown > 0 {
			latest, err := s.repo.FindLatestActive(ctx, email, purpose)
			switch {
			case errors.Is(err, domain.ErrVerificationCodeNotFound):
			case err != nil:
				return err
			case s.IsValid(latest):
				if wait = remaining(cooldown, s.now().Sub(latest.CreatedAt)); wait > 0 {
					return nil
				}
			}
		}
		code, err := s.generate(s.settings.Length)
		if err != nil {
			return err
		}
		superseded, err := s.repo.InvalidateActive(ctx, email, purpose)
		if err != nil {
			return err
		}
		issued = domain.NewVerificationCode(email, code, purpose, s.now())
		if err := s.repo.Create(ctx, issued); err != nil {
			return err
		}
		if superseded > 0 {
			s.logger.Debug("Superseded verification codes",
				zap.String("email", email),
				zap.String("purpose", string(purpose)),
				zap.Int64("count", superseded))
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to issue verification code",
			zap.String("email", email),
			zap.String("purpose", string(purpose)),
			zap.Error(err))
		return nil, 0, err
	}
	return issued, wait, nil
}

// FindActive returns the matching code only while it is valid.
func (s *CodeStore) FindActive(ctx context.Context, email, code string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	record, err := s.repo.FindActive(ctx, domain.NormalizeEmail(email), code, purpose)
	if err != nil {
		return nil, err
	}
	if !s.IsValid(record) {
		return nil, domain.ErrVerificationCodeNotFound
	}
	return record, nil
}

// LatestActive returns the newest valid code for (email, purpose).
func (s *CodeStore) LatestActive(ctx context.Context, email string, purpose domain.Purpose) (*domain.VerificationCode, error) {
	record, err := s.repo.FindLatestActive(ctx, domain.NormalizeEmail(email), purpose)
	if err != nil {
		return nil, err
	}
	if !s.IsValid(record) {
		return nil, domain.ErrVerificationCodeNotFound
	}
	return record, nil
}

// Consume marks record used and verified. A second consumer gets ErrCodeAlreadyConsumed.
func (s *CodeStore) Consume(ctx context.Context, record *domain.VerificationCode) error {
	if err := s.repo.Consume(ctx, record.ID); err != nil {
		return err
	}
	record.Used = true
	record.Verified = true
	return nil
}

// IsValid is a pure check of record against the clock and expiry window.
func (s *CodeStore) IsValid(record *domain.VerificationCode) bool {
	return record.IsValid(s.now(), s.settings.Expiry)
}

// MarkSent records a delivery attempt at the current time.
func (s *CodeStore) MarkSent(ctx context.Context, record *domain.VerificationCode) error {
	at := s.now()
	if err := s.repo.MarkSent(ctx, record.ID, at); err != nil {
		return err
	}
	record.LastSentAt = at
	return nil
}
