package mail

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	lmsAuth "github.com/MrEthical07/lmsAuth"
	"go.uber.org/zap"
)

// SMTPConfig holds the outgoing mail server settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPMailer sends activation mails through an SMTP relay.
type SMTPMailer struct {
	config SMTPConfig
	logger *zap.Logger
	send   sendFunc
	now    func() time.Time
}

func NewSMTPMailer(cfg SMTPConfig, logger *zap.Logger) *SMTPMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SMTPMailer{config: cfg, logger: logger, send: smtp.SendMail, now: time.Now}
}

func (m *SMTPMailer) SendActivation(ctx context.Context, mail lmsAuth.ActivationMail) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	body, err := RenderActivation(mail, m.now())
	if err != nil {
		return err
	}
	msg := m.message(mail.Email, ActivationSubject, body)

	var auth smtp.Auth
	if m.config.Username != "" {
		auth = smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
	}
	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	if err := m.send(addr, auth, m.config.From, []string{mail.Email}, msg); err != nil {
		m.logger.Error("activation mail failed", zap.String("to", mail.Email), zap.Error(err))
		return fmt.Errorf("send activation mail: %w", err)
	}

	m.logger.Info("activation mail sent", zap.String("to", mail.Email))
	return nil
}

func (m *SMTPMailer) message(to, subject, body string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", m.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	buf.WriteString("\r\n")
	buf.WriteString(body)
	return buf.Bytes()
}

var _ lmsAuth.Mailer = (*SMTPMailer)(nil)
