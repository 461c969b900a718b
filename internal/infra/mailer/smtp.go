package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"

	"github.com/badrkarrachai/WanaShip-Backend/internal/core/port"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/config"
	"github.com/badrkarrachai/WanaShip-Backend/internal/infra/logger"
)

// SMTPMailer delivers transactional mail over plain SMTP with AUTH PLAIN.
type SMTPMailer struct {
	cfg    config.SMTPSettings
	logger *zap.Logger
}

// NewSMTPMailer constructs a mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPSettings, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{cfg: cfg, logger: log}
}

// Send delivers a single message. The context is honored before dialing; the
// smtp package itself does not support cancellation mid-send.
func (m *SMTPMailer) Send(ctx context.Context, mail port.Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if m.cfg.Host == "" || m.cfg.From == "" {
		return fmt.Errorf("smtp configuration incomplete")
	}

	body := mail.HTML
	contentType := "text/html; charset=\"utf-8\""
	if body == "" {
		body = mail.Text
		contentType = "text/plain; charset=\"utf-8\""
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: %s\r\n"+
			"\r\n%s\r\n",
		m.cfg.From, mail.To, mail.Subject, contentType, body,
	))

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{mail.To}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	m.logger.Debug("mail sent",
		zap.String("to", logger.MaskEmail(mail.To)),
		zap.String("subject", mail.Subject))

	return nil
}
