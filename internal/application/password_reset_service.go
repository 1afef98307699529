package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// PasswordResetService issues password reset codes and applies new passwords.
// Request responses never reveal whether an email is registered.
type PasswordResetService struct {
	issuer   *CodeIssuer
	store    *CodeStore
	users    domain.UserRepository
	tx       domain.Transactor
	hasher   domain.PasswordHasher
	policy   domain.PasswordPolicy
	settings domain.OTPSettings
	logger   *zap.Logger
	now      func() time.Time
}

func NewPasswordResetService(
	issuer *CodeIssuer,
	store *CodeStore,
	users domain.UserRepository,
	tx domain.Transactor,
	hasher domain.PasswordHasher,
	policy domain.PasswordPolicy,
	settings domain.OTPSettings,
	logger *zap.Logger,
) *PasswordResetService {
	return &PasswordResetService{
		issuer:   issuer,
		store:    store,
		users:    users,
		tx:       tx,
		hasher:   hasher,
		policy:   policy,
		settings: settings,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestReset sends a reset code when email belongs to an active account.
// Unknown emails, cooldowns and delivery failures all produce the same result
// in about the same time.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string, resend bool) (*IssueResult, error) {
	email = domain.NormalizeEmail(email)
	if msgs := domain.ValidateEmail(email); len(msgs) > 0 {
		errs := domain.NewValidationError()
		errs.Add("email", msgs...)
		return nil, errs
	}

	result := &IssueResult{Email: email, Sent: true}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Info("Password reset requested for unknown email", zap.String("email", email))
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.Active {
		s.logger.Info("Password reset requested for inactive account", zap.String("email", email))
		return result, nil
	}

	cooldown := s.settings.Cooldown
	if resend {
		cooldown = s.settings.ResendCooldown
	}
	// Delivery runs in the background so a registered email answers as fast
	// as an unknown one.
	issued, err := s.issuer.IssueInBackground(ctx, email, domain.PurposePasswordReset, cooldown)
	if err != nil {
		return nil, err
	}
	if !issued.Sent {
		s.logger.Info("Password reset cooling down",
			zap.String("email", email),
			zap.Int("wait_seconds", issued.WaitTime))
	}
	return result, nil
}

// ConfirmReset consumes a reset code and overwrites the account's password hash.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, email, otpCode, newPassword, newPassword2 string) error {
	email = domain.NormalizeEmail(email)

	errs := domain.NewValidationError()
	errs.Add("email", domain.ValidateEmail(email)...)
	errs.Add("otp_code", domain.OTPCode(otpCode).Validate(s.settings.Length)...)
	s.policy.ValidatePasswordPair(errs, "new_password", "new_password2", newPassword, newPassword2, email)
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, domain.ErrUserNotFound) {
		return domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return err
	}

	record, err := s.store.FindActive(ctx, email, domain.OTPCode(otpCode).Normalized(), domain.PurposePasswordReset)
	if errors.Is(err, domain.ErrVerificationCodeNotFound) {
		return domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return domain.ErrInternal
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Consume(ctx, record); err != nil {
			return err
		}
		return s.users.UpdatePassword(ctx, user.ID, hash, s.now())
	})
	if err != nil {
		if errors.Is(err, domain.ErrCodeAlreadyConsumed) {
			return err
		}
		if burnErr := s.store.Consume(ctx, record); burnErr != nil && !errors.Is(burnErr, domain.ErrCodeAlreadyConsumed) {
			s.logger.Error("Failed to burn verification code", zap.Error(burnErr))
		}
		s.logger.Error("Password reset failed", zap.String("email", email), zap.Error(err))
		return fmt.Errorf("reset password for %s: %w", email, err)
	}

	s.logger.Info("Password reset", zap.String("user_id", user.ID.String()))
	return nil
}
