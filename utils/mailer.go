package utils

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/princinho/storefront/config"
)

type Email struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Email) error
}

// NewMailer returns an SMTP mailer, or a mailer that only logs when no
// SMTP host is configured.
func NewMailer(cfg config.SMTPConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}
	return &SMTPMailer{cfg: cfg, send: smtp.SendMail}
}

type SMTPMailer struct {
	cfg  config.SMTPConfig
	send func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func (m *SMTPMailer) Send(ctx context.Context, msg Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := m.send(addr, auth, m.cfg.From, []string{msg.To}, buildMessage(m.cfg.From, msg)); err != nil {
		return fmt.Errorf("smtp send to %s: %w", msg.To, err)
	}
	return nil
}

func buildMessage(from string, msg Email) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// LogMailer writes mails to the log. Only meant for local development.
type LogMailer struct {
	logger *slog.Logger
}

func (m *LogMailer) Send(_ context.Context, msg Email) error {
	m.logger.Info("mail not sent, smtp disabled",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}

func PasswordResetEmail(to, resetURL string) Email {
	return Email{
		To:      to,
		Subject: "Storefront password recovery",
		Body: fmt.Sprintf("Your password reset link is:\n\n%s\n\n"+
			"If you have not requested this email, then ignore it.", resetURL),
	}
}
