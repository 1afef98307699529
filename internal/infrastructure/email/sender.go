package email

import (
	"fmt"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewSender returns the sender selected by cfg.Provider.
func NewSender(cfg *config.EmailConfig, logger *zap.Logger) (domain.EmailSender, error) {
	switch cfg.Provider {
	case config.EmailProviderSMTP:
		return NewSMTPSender(cfg), nil
	case config.EmailProviderSendGrid:
		if cfg.SendGridAPIKey == "" {
			return nil, fmt.Errorf("SENDGRID_API_KEY is required for the sendgrid provider")
		}
		return NewSendGridSender(cfg), nil
	case config.EmailProviderLog:
		return NewLogSender(logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}
