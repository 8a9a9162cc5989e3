package messaging

import (
	"context"
	"fmt"
	"log/slog"
	netmail "net/mail"
	"os"

	"github.com/wneessen/go-mail"

	"github.com/mroldan/giftroulette/internal/util"
)

// DefaultSMTPPort is the default submission port.
const DefaultSMTPPort = 587

// SMTPOpts holds configuration options for the SMTP mail client.
type SMTPOpts struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPOption defines a configuration option for the SMTP mail client.
type SMTPOption func(*SMTPOpts)

// WithSMTPHost sets the SMTP server hostname.
func WithSMTPHost(host string) SMTPOption {
	return func(o *SMTPOpts) { o.Host = host }
}

// WithSMTPPort sets the SMTP server port.
func WithSMTPPort(port int) SMTPOption {
	return func(o *SMTPOpts) { o.Port = port }
}

// WithSMTPCredentials sets the SMTP auth username and password.
func WithSMTPCredentials(username, password string) SMTPOption {
	return func(o *SMTPOpts) {
		o.Username = username
		o.Password = password
	}
}

// WithSMTPFrom sets the sender address.
func WithSMTPFrom(from string) SMTPOption {
	return func(o *SMTPOpts) { o.From = from }
}

// smtpSender is the minimal go-mail client surface used by the service.
type smtpSender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPService implements the Service interface over SMTP email.
type SMTPService struct {
	client smtpSender
	from   string
}

// Compile-time check that SMTPService implements Service.
var _ Service = (*SMTPService)(nil)

// NewSMTPService creates an SMTP delivery service. Options not provided
// fall back to the SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD and
// SMTP_FROM environment variables.
func NewSMTPService(opts ...SMTPOption) (*SMTPService, error) {
	var cfg SMTPOpts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Host == "" {
		cfg.Host = os.Getenv("SMTP_HOST")
	}
	if cfg.Port == 0 {
		cfg.Port = util.ParseIntEnv("SMTP_PORT", DefaultSMTPPort)
	}
	if cfg.Username == "" {
		cfg.Username = os.Getenv("SMTP_USERNAME")
	}
	if cfg.Password == "" {
		cfg.Password = os.Getenv("SMTP_PASSWORD")
	}
	if cfg.From == "" {
		cfg.From = os.Getenv("SMTP_FROM")
	}
	slog.Debug("SMTP client config loaded",
		"Host_set", cfg.Host != "",
		"Username_set", cfg.Username != "",
		"From_set", cfg.From != "")

	if cfg.Host == "" {
		return nil, fmt.Errorf("SMTP host must be provided")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("SMTP sender address must be provided")
	}
	if _, err := netmail.ParseAddress(cfg.From); err != nil {
		return nil, fmt.Errorf("invalid SMTP sender address %q: %w", cfg.From, err)
	}

	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create SMTP client: %w", err)
	}

	return &SMTPService{client: client, from: cfg.From}, nil
}

// Name identifies the channel.
func (s *SMTPService) Name() string { return "smtp" }

// From returns the configured sender address.
func (s *SMTPService) From() string { return s.from }

// ValidateRecipient checks that recipient parses as an email address.
func (s *SMTPService) ValidateRecipient(recipient string) error {
	if recipient == "" {
		return ErrNoRecipientAddress
	}
	if _, err := netmail.ParseAddress(recipient); err != nil {
		return fmt.Errorf("invalid email address %q: %w", recipient, err)
	}
	return nil
}

// Send builds a plain-text message addressed to the recipient and
// delivers it through the SMTP client.
func (s *SMTPService) Send(ctx context.Context, to, subject, body string) error {
	if err := s.ValidateRecipient(to); err != nil {
		slog.Error("SMTPService Send validation error", "error", err, "to", to)
		return err
	}

	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("set message sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set message recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("SMTPService Send failed", "error", err, "to", to)
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	slog.Debug("SMTPService Send succeeded", "to", to)
	return nil
}
