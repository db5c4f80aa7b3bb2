package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendGridSender struct {
	Key  string
	From string
	// BaseURL overrides the send endpoint.
	BaseURL string
}

func (s *SendGridSender) validate() error {
	if s.Key == "" || s.From == "" {
		return errors.New("invalid SendGrid configuration")
	}
	if _, err := mail.ParseAddress(s.From); err != nil {
		return fmt.Errorf("invalid SendGrid sender address: %w", err)
	}
	return nil
}

func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	addr, err := mail.ParseAddress(s.From)
	if err != nil {
		return err
	}
	from := sgmail.NewEmail(addr.Name, addr.Address)
	to := sgmail.NewEmail("", m.To)
	message := sgmail.NewSingleEmail(from, m.Subject, to, m.Text, m.HTML)

	client := sendgrid.NewSendClient(s.Key)
	if s.BaseURL != "" {
		client.BaseURL = s.BaseURL
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	if response.StatusCode != http.StatusAccepted {
		return fmt.Errorf("failed to send email, status code: %d", response.StatusCode)
	}
	return nil
}
