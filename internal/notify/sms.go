package notify

import (
	"context"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// messageClient is the part of the Twilio REST API used here.
type messageClient interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SMSSender sends text messages through Twilio.
type SMSSender struct {
	client messageClient
	from   string
}

// NewSMSSender returns a sender that reports ErrChannelNotConfigured when any credential is missing.
func NewSMSSender(accountSID, authToken, from string) *SMSSender {
	s := &SMSSender{from: from}
	if accountSID != "" && authToken != "" && from != "" {
		client := twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		})
		s.client = client.Api
	}
	return s
}

func (s *SMSSender) Channel() Channel { return ChannelSMS }

// Send ignores ctx cancellation once the request is issued; the Twilio client has no context API.
func (s *SMSSender) Send(ctx context.Context, msg Message) error {
	if s.client == nil {
		return ErrChannelNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(msg.Recipient)
	params.SetFrom(s.from)
	params.SetBody(msg.Body)

	_, err := s.client.CreateMessage(params)
	return err
}
