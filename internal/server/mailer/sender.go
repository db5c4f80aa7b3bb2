// Package mailer renders account emails and delivers them through a
// configurable provider.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/config"
)

// Provider names accepted in Config.EmailProvider.
const (
	ProviderLog      = "log"
	ProviderSMTP     = "smtp"
	ProviderMailgun  = "mailgun"
	ProviderSendGrid = "sendgrid"
)

const sendTimeout = 30 * time.Second

// Message is a single rendered email. Text is the plain-text alternative.
type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message through one provider.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// NewSender returns the Sender selected by cfg.EmailProvider after checking
// that the provider's settings are present.
func NewSender(cfg *config.Config, logger logging.Logger) (Sender, error) {
	if cfg.EmailFrom == "" {
		return nil, errors.New("invalid email configuration: empty sender address")
	}

	switch cfg.EmailProvider {
	case ProviderLog, "":
		return &LogSender{logger: logger.With("module", "mailer")}, nil
	case ProviderSMTP:
		c := &SMTPSender{Host: cfg.SMTPHost, Port: cfg.SMTPPort, Username: cfg.SMTPUser, Password: cfg.SMTPPassword, From: cfg.EmailFrom}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	case ProviderMailgun:
		c := &MailgunSender{Domain: cfg.MailgunDomain, Key: cfg.MailgunKey, From: cfg.EmailFrom}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	case ProviderSendGrid:
		c := &SendGridSender{Key: cfg.SendGridKey, From: cfg.EmailFrom}
		if err := c.validate(); err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.EmailProvider)
	}
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger logging.Logger
}

func (s *LogSender) Send(ctx context.Context, m Message) error {
	s.logger.Info(ctx, "email not delivered, log provider", "to", m.To, "subject", m.Subject)
	s.logger.Debug(ctx, "email body", "html", m.HTML)
	return nil
}
