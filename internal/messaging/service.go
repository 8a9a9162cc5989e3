// Package messaging provides pluggable delivery channels for giver notifications.
package messaging

import (
	"context"
	"errors"
)

// ErrNoRecipientAddress is returned when a participant has no usable
// address for the configured channel.
var ErrNoRecipientAddress = errors.New("recipient address cannot be empty")

// Service defines a pluggable message delivery abstraction.
type Service interface {
	// Name identifies the channel (e.g. "smtp", "twilio") for delivery records.
	Name() string

	// From returns the configured sender identity.
	From() string

	// ValidateRecipient validates a recipient address for this channel.
	ValidateRecipient(recipient string) error

	// Send delivers one message to a recipient.
	Send(ctx context.Context, to, subject, body string) error
}
