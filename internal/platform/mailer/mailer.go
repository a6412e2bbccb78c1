// Package mailer sends the account mails (password reset) over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

type Message struct {
	To       string
	Subject  string
	TextBody string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
}

var ErrInvalidMessage = errors.New("invalid mail message")

// New returns an SMTP mailer, or a LogMailer when no SMTP host is configured.
func New(cfg Config, logger zerolog.Logger) Mailer {
	if strings.TrimSpace(cfg.Host) == "" {
		return &LogMailer{logger: logger}
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

type SMTPMailer struct {
	cfg    Config
	dialer *gomail.Dialer
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	gm, err := buildMessage(m.cfg.From, msg)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(gm) }()

	t := time.NewTimer(m.cfg.Timeout)
	defer t.Stop()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return context.DeadlineExceeded
	}
}

func buildMessage(from string, m Message) (*gomail.Message, error) {
	from = strings.TrimSpace(from)
	to := strings.TrimSpace(m.To)
	subject := strings.TrimSpace(m.Subject)
	switch {
	case from == "":
		return nil, fmt.Errorf("%w: from is required", ErrInvalidMessage)
	case to == "":
		return nil, fmt.Errorf("%w: to is required", ErrInvalidMessage)
	case subject == "":
		return nil, fmt.Errorf("%w: subject is required", ErrInvalidMessage)
	case strings.TrimSpace(m.TextBody) == "":
		return nil, fmt.Errorf("%w: body is required", ErrInvalidMessage)
	}

	gm := gomail.NewMessage()
	gm.SetHeader("From", from)
	gm.SetHeader("To", to)
	gm.SetHeader("Subject", subject)
	gm.SetBody("text/plain", m.TextBody)
	return gm, nil
}

// LogMailer writes mails to the log instead of sending them. Used in
// development when SMTP is not configured.
type LogMailer struct {
	logger zerolog.Logger
}

func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.TextBody).
		Msg("mail not sent (smtp disabled)")
	return nil
}

func PasswordResetMessage(to, link string, ttl time.Duration) Message {
	return Message{
		To:      to,
		Subject: "Reset your password",
		TextBody: fmt.Sprintf("A password reset was requested for your account.\n\n"+
			"Open this link to choose a new password:\n%s\n\n"+
			"The link expires in %s. If you did not ask for this, ignore this mail.\n", link, ttl),
	}
}
