package email

import (
	"context"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"go.uber.org/zap"
)

// LogSender writes messages to the log instead of delivering them. Development only.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg *domain.EmailMessage) error {
	s.logger.Info("Email not delivered (log provider)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text))
	return nil
}
