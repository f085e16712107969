// Package notify delivers borrower notifications over email and SMS.
//
// Delivery is best effort: every channel is attempted independently and the
// outcome is reported per channel, never as an error of the caller's operation.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

const (
	StatusSent   = "sent"
	StatusFailed = "failed"
)

var (
	ErrChannelNotConfigured = errors.New("notification channel not configured")
	ErrNoRecipient          = errors.New("no recipient for channel")
)

// Message is what a Sender delivers to one recipient.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers messages on one channel.
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, msg Message) error
}

// Notification carries an HTML body for email and a plain text body for SMS.
type Notification struct {
	Subject string
	HTML    string
	Text    string
}

// Contact is where a user can be reached.
type Contact struct {
	Name  string
	Email string
	Phone *string
}

type Result struct {
	Channel   Channel
	Recipient string
	Status    string
	Err       error
}

// Policy selects the channels used for a notification.
type Policy string

const (
	PolicyEmail Policy = "email"
	PolicySMS   Policy = "sms"
	PolicyBoth  Policy = "both"
	PolicyNone  Policy = "none"
)

func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case PolicyEmail, PolicySMS, PolicyBoth, PolicyNone:
		return p, nil
	}
	return "", fmt.Errorf("unknown notification policy %q", s)
}

func (p Policy) channels() []Channel {
	switch p {
	case PolicyEmail:
		return []Channel{ChannelEmail}
	case PolicySMS:
		return []Channel{ChannelSMS}
	case PolicyBoth:
		return []Channel{ChannelEmail, ChannelSMS}
	default:
		return nil
	}
}

// Notifier fans a notification out to the channels of its policy.
type Notifier struct {
	senders map[Channel]Sender
	policy  Policy
	logger  *slog.Logger
}

func NewNotifier(policy Policy, logger *slog.Logger, senders ...Sender) *Notifier {
	m := make(map[Channel]Sender, len(senders))
	for _, s := range senders {
		m[s.Channel()] = s
	}
	return &Notifier{senders: m, policy: policy, logger: logger}
}

// Notify attempts every channel of the policy and returns one result per channel.
func (n *Notifier) Notify(ctx context.Context, to Contact, note Notification) []Result {
	channels := n.policy.channels()
	results := make([]Result, 0, len(channels))

	for _, ch := range channels {
		res := n.send(ctx, ch, to, note)
		if res.Err != nil {
			n.logger.WarnContext(ctx, "notification_failed",
				"channel", ch,
				"recipient", res.Recipient,
				"subject", note.Subject,
				"error", res.Err,
			)
		} else {
			n.logger.InfoContext(ctx, "notification_sent",
				"channel", ch,
				"recipient", res.Recipient,
				"subject", note.Subject,
			)
		}
		results = append(results, res)
	}
	return results
}

func (n *Notifier) send(ctx context.Context, ch Channel, to Contact, note Notification) Result {
	msg := Message{Subject: note.Subject}
	switch ch {
	case ChannelEmail:
		msg.Recipient = to.Email
		msg.Body = note.HTML
	case ChannelSMS:
		if to.Phone != nil {
			msg.Recipient = *to.Phone
		}
		msg.Body = note.Text
	}

	res := Result{Channel: ch, Recipient: msg.Recipient, Status: StatusFailed}

	sender, ok := n.senders[ch]
	if !ok {
		res.Err = ErrChannelNotConfigured
		return res
	}
	if msg.Recipient == "" {
		res.Err = ErrNoRecipient
		return res
	}
	if err := sender.Send(ctx, msg); err != nil {
		res.Err = fmt.Errorf("%s: %w", ch, err)
		return res
	}

	res.Status = StatusSent
	return res
}
