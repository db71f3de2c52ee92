// Package mailer delivers plain-text transactional email.
package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/adspacehub/adspace-backend/pkg/config"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

// Message is a single outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
}

func (m Message) validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.New("mail recipient required")
	}
	if strings.TrimSpace(m.Subject) == "" {
		return errors.New("mail subject required")
	}
	return nil
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the sender configured for the environment.
func New(cfg config.NotificationsConfig, logg *logger.Logger) (Sender, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Mailer)) {
	case config.MailerResend:
		return NewResendSender(ResendOptions{
			APIKey:  cfg.ResendAPIKey,
			BaseURL: cfg.ResendBaseURL,
			From:    cfg.FromAddress,
		})
	case config.MailerLog, "":
		return NewLogSender(logg), nil
	default:
		return nil, errors.New("unsupported mailer " + cfg.Mailer)
	}
}

// LogSender writes messages to the structured log instead of sending them.
type LogSender struct {
	logg *logger.Logger
}

func NewLogSender(logg *logger.Logger) *LogSender {
	return &LogSender{logg: logg}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	if s.logg == nil {
		return nil
	}
	ctx = s.logg.WithFields(ctx, map[string]any{
		"mail_to":      msg.To,
		"mail_subject": msg.Subject,
		"mail_bytes":   len(msg.Text),
	})
	s.logg.Info(ctx, "mail.logged")
	return nil
}
