package application

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// IssueResult describes the outcome of a code request.
// When Sent is false the caller must wait WaitTime seconds.
type IssueResult struct {
	Email     string
	Sent      bool
	CanResend bool
	WaitTime  int
}

// CodeIssuer issues and delivers verification codes, applying cooldowns.
type CodeIssuer struct {
	store      *CodeStore
	users      domain.UserRepository
	dispatcher domain.NotificationDispatcher
	settings   domain.OTPSettings
	logger     *zap.Logger
	now        func() time.Time
	tasks      background
}

func NewCodeIssuer(store *CodeStore, users domain.UserRepository, dispatcher domain.NotificationDispatcher, settings domain.OTPSettings, logger *zap.Logger) *CodeIssuer {
	return &CodeIssuer{
		store:      store,
		users:      users,
		dispatcher: dispatcher,
		settings:   settings,
		logger:     logger,
		now:        time.Now,
	}
}

// RequestRegistrationCode issues a registration code for an unregistered email.
// resend selects the shorter resend cooldown.
func (i *CodeIssuer) RequestRegistrationCode(ctx context.Context, email string, resend bool) (*IssueResult, error) {
	email = domain.NormalizeEmail(email)
	if msgs := domain.ValidateEmail(email); len(msgs) > 0 {
		errs := domain.NewValidationError()
		errs.Add("email", msgs...)
		return nil, errs
	}

	exists, err := i.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	cooldown := i.settings.Cooldown
	if resend {
		cooldown = i.settings.ResendCooldown
	}
	return i.Issue(ctx, email, domain.PurposeRegistration, cooldown)
}

// Issue creates and delivers a new code unless a valid one was created less
// than cooldown ago. A delivery failure leaves the new code valid.
func (i *CodeIssuer) Issue(ctx context.Context, email string, purpose domain.Purpose, cooldown time.Duration) (*IssueResult, error) {
	email = domain.NormalizeEmail(email)

	record, wait, err := i.store.IssueAfter(ctx, email, purpose, cooldown)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &IssueResult{Email: email, WaitTime: wait}, nil
	}

	if err := i.deliver(ctx, record); err != nil {
		return nil, err
	}

	i.logger.Info("Verification code issued",
		zap.String("email", email),
		zap.String("purpose", string(purpose)))
	return &IssueResult{Email: email, Sent: true}, nil
}

// IssueInBackground commits a new code the way Issue does but delivers it on a
// background task, so the caller never waits on the mail server. Delivery
// failures are logged only.
func (i *CodeIssuer) IssueInBackground(ctx context.Context, email string, purpose domain.Purpose, cooldown time.Duration) (*IssueResult, error) {
	email = domain.NormalizeEmail(email)

	record, wait, err := i.store.IssueAfter(ctx, email, purpose, cooldown)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &IssueResult{Email: email, WaitTime: wait}, nil
	}

	i.tasks.Go(ctx, i.settings.DeliveryTimeout, func(ctx context.Context) {
		if err := i.send(ctx, record); err != nil {
			return
		}
		i.logger.Info("Verification code issued",
			zap.String("email", email),
			zap.String("purpose", string(purpose)))
	})
	return &IssueResult{Email: email, Sent: true}, nil
}

// Wait blocks until background deliveries have finished.
func (i *CodeIssuer) Wait() {
	i.tasks.Wait()
}

// Redeliver sends the current valid code again without creating a new one.
// Attempts are spaced by the resend cooldown measured from the last attempt.
func (i *CodeIssuer) Redeliver(ctx context.Context, email string, purpose domain.Purpose) (*IssueResult, error) {
	email = domain.NormalizeEmail(email)

	record, err := i.store.LatestActive(ctx, email, purpose)
	if errors.Is(err, domain.ErrVerificationCodeNotFound) {
		return nil, domain.ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, err
	}

	if wait := remaining(i.settings.ResendCooldown, i.now().Sub(record.LastSentAt)); wait > 0 {
		return &IssueResult{Email: email, WaitTime: wait}, nil
	}

	if err := i.store.MarkSent(ctx, record); err != nil {
		return nil, err
	}
	if err := i.deliver(ctx, record); err != nil {
		return nil, err
	}
	return &IssueResult{Email: email, Sent: true}, nil
}

func (i *CodeIssuer) deliver(ctx context.Context, record *domain.VerificationCode) error {
	sendCtx, cancel := detach(ctx, i.settings.DeliveryTimeout)
	defer cancel()
	return i.send(sendCtx, record)
}

func (i *CodeIssuer) send(ctx context.Context, record *domain.VerificationCode) error {
	if err := i.dispatcher.SendVerificationCode(ctx, record.Email, record.Code, record.Purpose); err != nil {
		i.logger.Error("Failed to deliver verification code",
			zap.String("email", record.Email),
			zap.String("purpose", string(record.Purpose)),
			zap.Error(err))
		return domain.ErrDeliveryFailed
	}
	return nil
}

// remaining returns the whole seconds left in cooldown after elapsed, rounded up.
func remaining(cooldown, elapsed time.Duration) int {
	left := cooldown - elapsed
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}
