package mail

import (
	"context"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"go.uber.org/zap"
)

// LogMailer writes the activation code to the log instead of sending it.
// Never use it in production.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendActivation(_ context.Context, mail lmsAuth.ActivationMail) error {
	m.logger.Info("activation code",
		zap.String("to", mail.Email),
		zap.String("code", mail.Code),
		zap.Duration("expires_in", mail.ExpiresIn),
	)
	return nil
}

var _ lmsAuth.Mailer = (*LogMailer)(nil)
