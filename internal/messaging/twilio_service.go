package messaging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"regexp"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// phoneNumberRegex strips all non-numeric characters from a recipient.
var phoneNumberRegex = regexp.MustCompile(`[^0-9]`)

// TwilioOpts holds configuration options for the Twilio SMS client.
type TwilioOpts struct {
	AccountSID string
	AuthToken  string
	From       string
}

// TwilioOption defines a configuration option for the Twilio SMS client.
type TwilioOption func(*TwilioOpts)

// WithAccountSID sets the Twilio account SID.
func WithAccountSID(sid string) TwilioOption {
	return func(o *TwilioOpts) { o.AccountSID = sid }
}

// WithAuthToken sets the Twilio auth token.
func WithAuthToken(token string) TwilioOption {
	return func(o *TwilioOpts) { o.AuthToken = token }
}

// WithTwilioFrom sets the sending phone number.
func WithTwilioFrom(from string) TwilioOption {
	return func(o *TwilioOpts) { o.From = from }
}

// messageCreator is the minimal Twilio REST surface used by the service.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioService implements the Service interface using the Twilio SMS API,
// for participants reachable by phone rather than email.
type TwilioService struct {
	api  messageCreator
	from string
}

// Compile-time check that TwilioService implements Service.
var _ Service = (*TwilioService)(nil)

// NewTwilioService creates an SMS delivery service. Options not provided
// fall back to the TWILIO_ACCOUNT_SID, TWILIO_AUTH_TOKEN and
// TWILIO_FROM_NUMBER environment variables.
func NewTwilioService(opts ...TwilioOption) (*TwilioService, error) {
	var cfg TwilioOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.AccountSID == "" {
		cfg.AccountSID = os.Getenv("TWILIO_ACCOUNT_SID")
	}
	if cfg.AuthToken == "" {
		cfg.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("TWILIO_FROM_NUMBER")
	}
	slog.Debug("Twilio client config loaded",
		"AccountSID_set", cfg.AccountSID != "",
		"AuthToken_set", cfg.AuthToken != "",
		"From_set", cfg.From != "")

	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("account SID and auth token must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("from number must be provided")
	}

	client := twilio.NewRestClientWithParams(
		twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		},
	)

	return &TwilioService{api: client.Api, from: cfg.From}, nil
}

// Name identifies the channel.
func (s *TwilioService) Name() string { return "twilio" }

// From returns the configured sending number.
func (s *TwilioService) From() string { return s.from }

// ValidateRecipient validates a phone number recipient. All non-numeric
// characters are ignored; at least 6 digits are required.
func (s *TwilioService) ValidateRecipient(recipient string) error {
	if recipient == "" {
		return ErrNoRecipientAddress
	}
	digits := phoneNumberRegex.ReplaceAllString(recipient, "")
	if digits == "" {
		return fmt.Errorf("invalid phone number: no digits found in recipient %q", recipient)
	}
	if len(digits) < 6 {
		return fmt.Errorf("invalid phone number: %q is too short (minimum 6 digits required)", digits)
	}
	return nil
}

// Send delivers one SMS. The subject is folded into the body since SMS
// has no subject line.
func (s *TwilioService) Send(ctx context.Context, to, subject, body string) error {
	if err := s.ValidateRecipient(to); err != nil {
		slog.Error("TwilioService Send validation error", "error", err, "to", to)
		return err
	}

	text := body
	if subject != "" {
		text = subject + "\n" + body
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(text)

	if _, err := s.api.CreateMessage(params); err != nil {
		slog.Error("TwilioService Send failed", "error", err, "to", to)
		return fmt.Errorf("send SMS to %s: %w", to, err)
	}
	slog.Debug("TwilioService Send succeeded", "to", to)
	return nil
}
