package mail

import (
	"fmt"
	"log/slog"

	"gopkg.in/gomail.v2"

	"slotBooker/internal/config"
)

// Dialer is the part of gomail.Dialer the sender needs.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers plain-text messages over SMTP. Each Send is a single
// attempt.
type SMTPSender struct {
	from   string
	dialer Dialer
}

func NewSMTPSender(cfg config.Mail) *SMTPSender {
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func NewSMTPSenderWithDialer(from string, dialer Dialer) *SMTPSender {
	return &SMTPSender{from: from, dialer: dialer}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if err := s.dialer.DialAndSend(s.newMessage(to, subject, body)); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	return nil
}

func (s *SMTPSender) newMessage(to, subject, body string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	return m
}

// LogSender writes messages to the log instead of sending them. Used when
// no SMTP host is configured.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log.With(slog.String("component", "mail/log"))}
}

func (s *LogSender) Send(to, subject, body string) error {
	s.log.Info("email",
		slog.String("to", to),
		slog.String("subject", subject),
		slog.String("body", body),
	)

	return nil
}
