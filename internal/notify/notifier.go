// Package notify resolves each giver's recipient and delivers one message
// per pairing through a messaging channel, recording outcomes in the
// delivery log.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mroldan/giftroulette/internal/messaging"
	"github.com/mroldan/giftroulette/internal/models"
	"github.com/mroldan/giftroulette/internal/store"
)

// SubjectGiftExchange is the fixed subject line for every notification.
const SubjectGiftExchange = "Gift Exchange"

// Composer builds the message body telling a giver who their gift is for.
type Composer interface {
	Compose(ctx context.Context, recipient models.Participant) (string, error)
}

// StaticComposer renders the default plain-text body.
type StaticComposer struct{}

// Compose formats the recipient's name and note into the message body.
func (StaticComposer) Compose(_ context.Context, recipient models.Participant) (string, error) {
	return fmt.Sprintf("Your gift is for: %s\nContext: %s", recipient.Name, recipient.Note), nil
}

// Opts holds configuration options for the notifier.
type Opts struct {
	Composer   Composer
	Deliveries store.DeliveryRepo
}

// Option defines a configuration option for the notifier.
type Option func(*Opts)

// WithComposer overrides the default static message composer.
func WithComposer(c Composer) Option {
	return func(o *Opts) { o.Composer = c }
}

// WithDeliveryRepo enables durable recording of per-giver outcomes.
func WithDeliveryRepo(repo store.DeliveryRepo) Option {
	return func(o *Opts) { o.Deliveries = repo }
}

// Notifier sends one message per pairing, addressed to the giver and
// naming the recipient.
type Notifier struct {
	registry   *models.Registry
	service    messaging.Service
	composer   Composer
	deliveries store.DeliveryRepo
}

// New creates a notifier over the given registry and delivery channel.
func New(registry *models.Registry, service messaging.Service, opts ...Option) *Notifier {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Composer == nil {
		cfg.Composer = StaticComposer{}
	}
	return &Notifier{
		registry:   registry,
		service:    service,
		composer:   cfg.Composer,
		deliveries: cfg.Deliveries,
	}
}

// SendAll notifies every giver in the unconcealed assignment set.
//
// A recipient lookup miss means the engine and registry disagree, which
// breaks the run's core invariant; SendAll stops immediately in that case.
// Transport failures are independent per pair: each send is attempted,
// every outcome is recorded, and the aggregate error joins all failures.
func (n *Notifier) SendAll(ctx context.Context, runID string, set models.AssignmentSet) error {
	slog.Info("Notifier.SendAll: sending notifications", "runID", runID, "pairs", set.Len())

	var sendErrs []error
	for _, pair := range set.Pairings {
		recipient, err := n.registry.Lookup(pair.Recipient)
		if err != nil {
			slog.Error("Notifier.SendAll: recipient lookup failed", "giver", pair.Giver, "error", err)
			return fmt.Errorf("resolve recipient for giver %s: %w", pair.Giver, err)
		}
		giver, err := n.registry.Lookup(pair.Giver)
		if err != nil {
			slog.Error("Notifier.SendAll: giver lookup failed", "giver", pair.Giver, "error", err)
			return fmt.Errorf("resolve giver %s: %w", pair.Giver, err)
		}

		if err := n.sendOne(ctx, runID, giver, recipient); err != nil {
			sendErrs = append(sendErrs, fmt.Errorf("notify %s: %w", giver.Name, err))
			continue
		}
	}

	if len(sendErrs) > 0 {
		slog.Error("Notifier.SendAll: completed with failures", "runID", runID, "failed", len(sendErrs), "total", set.Len())
		return errors.Join(sendErrs...)
	}
	slog.Info("Notifier.SendAll: all notifications sent", "runID", runID, "count", set.Len())
	return nil
}

// sendOne composes and delivers a single giver's notification, recording
// the outcome when a delivery repo is configured.
func (n *Notifier) sendOne(ctx context.Context, runID string, giver, recipient models.Participant) error {
	body, err := n.composer.Compose(ctx, recipient)
	if err != nil {
		slog.Warn("Notifier.sendOne: composer failed, using static body", "giver", giver.Name, "error", err)
		body, _ = StaticComposer{}.Compose(ctx, recipient)
	}

	to := n.recipientAddress(giver)

	var deliveryID string
	if n.deliveries != nil {
		deliveryID, err = n.deliveries.RecordQueued(runID, giver.Name, n.service.Name())
		if err != nil {
			return fmt.Errorf("record delivery: %w", err)
		}
	}

	if err := n.service.Send(ctx, to, SubjectGiftExchange, body); err != nil {
		if deliveryID != "" {
			if markErr := n.deliveries.MarkFailed(deliveryID, err.Error()); markErr != nil {
				slog.Error("Notifier.sendOne: failed to mark delivery failed", "id", deliveryID, "error", markErr)
			}
		}
		return err
	}

	if deliveryID != "" {
		if err := n.deliveries.MarkSent(deliveryID); err != nil {
			slog.Error("Notifier.sendOne: failed to mark delivery sent", "id", deliveryID, "error", err)
		}
	}
	slog.Debug("Notifier.sendOne: notification sent", "giver", giver.Name, "channel", n.service.Name())
	return nil
}

// recipientAddress picks the giver's address for the configured channel.
func (n *Notifier) recipientAddress(giver models.Participant) string {
	if n.service.Name() == "twilio" {
		return giver.Phone
	}
	return giver.Email
}
