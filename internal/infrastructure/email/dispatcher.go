package email

import (
	"context"
	"fmt"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// Dispatcher renders account emails and hands them to a sender.
type Dispatcher struct {
	sender domain.EmailSender
	site   string
	expiry int
	logger *zap.Logger
}

func NewDispatcher(sender domain.EmailSender, site string, otp domain.OTPSettings, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		site:   site,
		expiry: minutes(otp.Expiry),
		logger: logger,
	}
}

func (d *Dispatcher) SendVerificationCode(ctx context.Context, email, code string, purpose domain.Purpose) error {
	tmpl := verificationTemplate
	if purpose == domain.PurposePasswordReset {
		tmpl = passwordResetTemplate
	}

	msg, err := tmpl.render(email, templateData{Site: d.site, Code: code, ExpiryMinutes: d.expiry})
	if err != nil {
		return err
	}
	return d.send(ctx, msg, string(purpose))
}

func (d *Dispatcher) SendWelcome(ctx context.Context, user *domain.User) error {
	msg, err := welcomeTemplate.render(user.Email, templateData{Site: d.site, Name: user.DisplayName()})
	if err != nil {
		return err
	}
	return d.send(ctx, msg, "welcome")
}

func (d *Dispatcher) send(ctx context.Context, msg *domain.EmailMessage, kind string) error {
	if err := d.sender.Send(ctx, msg); err != nil {
		d.logger.Error("Failed to send email",
			zap.String("to", msg.To),
			zap.String("kind", kind),
			zap.Error(err))
		return fmt.Errorf("send %s email: %w", kind, err)
	}
	d.logger.Info("Email sent successfully",
		zap.String("to", msg.To),
		zap.String("kind", kind))
	return nil
}
