package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// RegistrationRequest carries the fields submitted to create an account.
type RegistrationRequest struct {
	Email     string
	Password  string
	Password2 string
	FullName  string
	FirstName string
	LastName  string
	OTPCode   string
}

// RegistrationResult is the created account and its first session.
type RegistrationResult struct {
	User   *domain.User
	Tokens *domain.TokenPair
}

// RegistrationService turns a verified registration code into an account.
type RegistrationService struct {
	store      *CodeStore
	users      domain.UserRepository
	tx         domain.Transactor
	hasher     domain.PasswordHasher
	jwtService domain.JWTService
	dispatcher domain.NotificationDispatcher
	policy     domain.PasswordPolicy
	settings   domain.OTPSettings
	logger     *zap.Logger
	now        func() time.Time
	tasks      background
}

func NewRegistrationService(
	store *CodeStore,
	users domain.UserRepository,
	tx domain.Transactor,
	hasher domain.PasswordHasher,
	jwtService domain.JWTService,
	dispatcher domain.NotificationDispatcher,
	policy domain.PasswordPolicy,
	settings domain.OTPSettings,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		store:      store,
		users:      users,
		tx:         tx,
		hasher:     hasher,
		jwtService: jwtService,
		dispatcher: dispatcher,
		policy:     policy,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

// Register validates req, consumes its code and creates an active account in
// one transaction, then issues a token pair.
func (s *RegistrationService) Register(ctx context.Context, req RegistrationRequest) (*RegistrationResult, error) {
	email := domain.NormalizeEmail(req.Email)

	errs := domain.NewValidationError()
	errs.Add("email", domain.ValidateEmail(email)...)
	s.policy.ValidatePasswordPair(errs, "password", "password2", req.Password, req.Password2, email)
	// The code field only ever sees its own shape rules.
	errs.Add("otp_code", domain.OTPCode(req.OTPCode).Validate(s.settings.Length)...)
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	record, err := s.store.FindActive(ctx, email, domain.OTPCode(req.OTPCode).Normalized(), domain.PurposeRegistration)
	if errors.Is(err, domain.ErrVerificationCodeNotFound) {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", zap.Error(err))
		return nil, domain.ErrInternal
	}

	user := domain.NewUser(email, hash, req.FullName, req.FirstName, req.LastName, s.now())
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Consume(ctx, record); err != nil {
			return err
		}
		return s.users.Create(ctx, user)
	})
	if err != nil {
		return nil, s.failRegistration(ctx, record, err)
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()), zap.String("email", email))

	s.tasks.Go(ctx, s.settings.DeliveryTimeout, func(ctx context.Context) {
		s.sendWelcome(ctx, user)
	})

	tokens, err := s.jwtService.GenerateTokenPair(user)
	if err != nil {
		s.logger.Error("Failed to generate tokens", zap.Error(err))
		return nil, domain.ErrTokenGeneration
	}

	return &RegistrationResult{User: user, Tokens: tokens}, nil
}

// VerifyCode reports whether otpCode is the live registration code for email
// without consuming it. Wrong, expired and spent codes are indistinguishable.
func (s *RegistrationService) VerifyCode(ctx context.Context, email, otpCode string) error {
	email = domain.NormalizeEmail(email)

	errs := domain.NewValidationError()
	errs.Add("email", domain.ValidateEmail(email)...)
	errs.Add("otp_code", domain.OTPCode(otpCode).Validate(s.settings.Length)...)
	if err := errs.ErrorOrNil(); err != nil {
		return err
	}

	_, err := s.store.FindActive(ctx, email, domain.OTPCode(otpCode).Normalized(), domain.PurposeRegistration)
	if errors.Is(err, domain.ErrVerificationCodeNotFound) {
		return domain.ErrInvalidOrExpiredCode
	}
	return err
}

// failRegistration maps a failed transaction to the caller-facing error. A
// code that reached the transaction is burned even when the transaction
// rolled back, so a retry needs a fresh code.
func (s *RegistrationService) failRegistration(ctx context.Context, record *domain.VerificationCode, err error) error {
	if errors.Is(err, domain.ErrCodeAlreadyConsumed) {
		s.logger.Warn("Verification code consumed concurrently", zap.String("email", record.Email))
		return err
	}

	if burnErr := s.store.Consume(ctx, record); burnErr != nil && !errors.Is(burnErr, domain.ErrCodeAlreadyConsumed) {
		s.logger.Error("Failed to burn verification code", zap.Error(burnErr))
	}

	if errors.Is(err, domain.ErrEmailAlreadyRegistered) {
		return err
	}
	s.logger.Error("Registration transaction failed", zap.String("email", record.Email), zap.Error(err))
	return fmt.Errorf("register %s: %w", record.Email, err)
}

func (s *RegistrationService) sendWelcome(ctx context.Context, user *domain.User) {
	if err := s.dispatcher.SendWelcome(ctx, user); err != nil {
		s.logger.Warn("Failed to send welcome email", zap.String("email", user.Email), zap.Error(err))
	}
}

// Wait blocks until background welcome emails have finished.
func (s *RegistrationService) Wait() {
	s.tasks.Wait()
}
