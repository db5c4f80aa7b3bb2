package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mailgun/mailgun-go/v4"
)

type MailgunSender struct {
	Domain string
	Key    string
	From   string
	// APIBase overrides the Mailgun endpoint, e.g. the EU region.
	APIBase string
}

func (s *MailgunSender) validate() error {
	if s.Key == "" || s.Domain == "" || s.From == "" {
		return errors.New("invalid Mailgun configuration")
	}
	return nil
}

func (s *MailgunSender) Send(ctx context.Context, m Message) error {
	mg := mailgun.NewMailgun(s.Domain, s.Key)
	if s.APIBase != "" {
		mg.SetAPIBase(s.APIBase)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	message := mg.NewMessage(s.From, m.Subject, m.Text, m.To)
	message.SetHtml(m.HTML)

	if _, _, err := mg.Send(ctx, message); err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}
