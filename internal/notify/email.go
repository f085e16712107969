package notify

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// emailClient is the part of the Resend emails service used here.
type emailClient interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// EmailSender sends HTML email through Resend.
type EmailSender struct {
	client emailClient
	from   string
}

// NewEmailSender returns a sender that reports ErrChannelNotConfigured when apiKey is empty.
func NewEmailSender(apiKey, from string) *EmailSender {
	s := &EmailSender{from: from}
	if apiKey != "" {
		s.client = resend.NewClient(apiKey).Emails
	}
	return s
}

func (s *EmailSender) Channel() Channel { return ChannelEmail }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return ErrChannelNotConfigured
	}
	_, err := s.client.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{msg.Recipient},
		Subject: msg.Subject,
		Html:    msg.Body,
	})
	return err
}
