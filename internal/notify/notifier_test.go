package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mroldan/giftroulette/internal/models"
	"github.com/mroldan/giftroulette/internal/store"
)

type sentMessage struct {
	to      string
	subject string
	body    string
}

// fakeService records sent messages and fails for recipients in failTo.
type fakeService struct {
	name   string
	sent   []sentMessage
	failTo map[string]error
}

func (f *fakeService) Name() string {
	if f.name == "" {
		return "smtp"
	}
	return f.name
}

func (f *fakeService) From() string { return "santa@example.com" }

func (f *fakeService) ValidateRecipient(recipient string) error { return nil }

func (f *fakeService) Send(_ context.Context, to, subject, body string) error {
	if err, ok := f.failTo[to]; ok {
		return err
	}
	f.sent = append(f.sent, sentMessage{to: to, subject: subject, body: body})
	return nil
}

// memDeliveryRepo is an in-memory DeliveryRepo for tests.
type memDeliveryRepo struct {
	records map[string]*store.DeliveryRecord
	nextID  int
}

func newMemDeliveryRepo() *memDeliveryRepo {
	return &memDeliveryRepo{records: make(map[string]*store.DeliveryRecord)}
}

func (m *memDeliveryRepo) RecordQueued(runID, giver, channel string) (string, error) {
	m.nextID++
	id := fmt.Sprintf("dlv_%d", m.nextID)
	now := time.Now()
	m.records[id] = &store.DeliveryRecord{
		ID: id, RunID: runID, Giver: giver, Channel: channel,
		Status: store.DeliveryStatusQueued, CreatedAt: now, UpdatedAt: now,
	}
	return id, nil
}

func (m *memDeliveryRepo) MarkSent(id string) error {
	m.records[id].Status = store.DeliveryStatusSent
	return nil
}

func (m *memDeliveryRepo) MarkFailed(id string, errMsg string) error {
	m.records[id].Status = store.DeliveryStatusFailed
	m.records[id].LastError = errMsg
	return nil
}

func (m *memDeliveryRepo) ListByRun(runID string) ([]store.DeliveryRecord, error) {
	var out []store.DeliveryRecord
	for _, r := range m.records {
		if r.RunID == runID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *memDeliveryRepo) Close() error { return nil }

func threeCycleFixture(t *testing.T) (*models.Registry, models.AssignmentSet) {
	t.Helper()
	registry, err := models.NewRegistry([]models.Participant{
		{Name: "Alice", Email: "alice@example.com", Phone: "+15550101", Note: "likes tea"},
		{Name: "Bob", Email: "bob@example.com", Phone: "+15550102", Note: "likes coffee"},
		{Name: "Carol", Email: "carol@example.com", Phone: "+15550103", Note: "likes cocoa"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	set := models.AssignmentSet{Pairings: []models.Pairing{
		{Giver: "Alice", Recipient: "Bob"},
		{Giver: "Bob", Recipient: "Carol"},
		{Giver: "Carol", Recipient: "Alice"},
	}}
	return registry, set
}

func TestSendAllNotifiesEveryGiver(t *testing.T) {
	registry, set := threeCycleFixture(t)
	service := &fakeService{}
	notifier := New(registry, service)

	if err := notifier.SendAll(context.Background(), "run_test", set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(service.sent) != 3 {
		t.Fatalf("sent %d messages, want 3", len(service.sent))
	}

	wantByTo := map[string]struct{ name, note string }{
		"alice@example.com": {"Bob", "likes coffee"},
		"bob@example.com":   {"Carol", "likes cocoa"},
		"carol@example.com": {"Alice", "likes tea"},
	}
	for _, msg := range service.sent {
		want, ok := wantByTo[msg.to]
		if !ok {
			t.Errorf("message sent to unexpected address %s", msg.to)
			continue
		}
		if msg.subject != SubjectGiftExchange {
			t.Errorf("subject = %q, want %q", msg.subject, SubjectGiftExchange)
		}
		if !strings.Contains(msg.body, want.name) {
			t.Errorf("body for %s missing recipient name %s: %q", msg.to, want.name, msg.body)
		}
		if !strings.Contains(msg.body, want.note) {
			t.Errorf("body for %s missing recipient note %q: %q", msg.to, want.note, msg.body)
		}
	}
}

func TestSendAllUsesPhoneForTwilioChannel(t *testing.T) {
	registry, set := threeCycleFixture(t)
	service := &fakeService{name: "twilio"}
	notifier := New(registry, service)

	if err := notifier.SendAll(context.Background(), "run_test", set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, msg := range service.sent {
		if !strings.HasPrefix(msg.to, "+1555") {
			t.Errorf("twilio message addressed to %s, want a phone number", msg.to)
		}
	}
}

func TestSendAllCollectsFailuresAndContinues(t *testing.T) {
	registry, set := threeCycleFixture(t)
	sendErr := errors.New("mailbox unavailable")
	service := &fakeService{failTo: map[string]error{"bob@example.com": sendErr}}
	repo := newMemDeliveryRepo()
	notifier := New(registry, service, WithDeliveryRepo(repo))

	err := notifier.SendAll(context.Background(), "run_test", set)
	if err == nil {
		t.Fatal("SendAll succeeded despite a transport failure")
	}
	if !errors.Is(err, sendErr) {
		t.Errorf("aggregate error = %v, want wrapped %v", err, sendErr)
	}
	if !strings.Contains(err.Error(), "Bob") {
		t.Errorf("aggregate error does not name the failed giver: %v", err)
	}

	// The other two givers must still have been notified.
	if len(service.sent) != 2 {
		t.Errorf("sent %d messages, want 2", len(service.sent))
	}

	records, listErr := repo.ListByRun("run_test")
	if listErr != nil {
		t.Fatalf("unexpected error: %v", listErr)
	}
	var sent, failed int
	for _, r := range records {
		switch r.Status {
		case store.DeliveryStatusSent:
			sent++
		case store.DeliveryStatusFailed:
			failed++
			if r.Giver != "Bob" {
				t.Errorf("failed record giver = %s, want Bob", r.Giver)
			}
			if r.LastError == "" {
				t.Error("failed record has no error message")
			}
		}
	}
	if sent != 2 || failed != 1 {
		t.Errorf("delivery log has %d sent / %d failed, want 2 / 1", sent, failed)
	}
}

func TestSendAllStopsOnRecipientLookupMiss(t *testing.T) {
	registry, _ := threeCycleFixture(t)
	service := &fakeService{}
	notifier := New(registry, service)

	set := models.AssignmentSet{Pairings: []models.Pairing{
		{Giver: "Alice", Recipient: "Mallory"},
		{Giver: "Bob", Recipient: "Carol"},
	}}

	err := notifier.SendAll(context.Background(), "run_test", set)
	if !errors.Is(err, models.ErrRecipientNotFound) {
		t.Fatalf("SendAll error = %v, want %v", err, models.ErrRecipientNotFound)
	}
	// Broken invariant halts the batch; nothing after the miss is sent.
	if len(service.sent) != 0 {
		t.Errorf("sent %d messages after invariant break, want 0", len(service.sent))
	}
}

type failingComposer struct{}

func (failingComposer) Compose(context.Context, models.Participant) (string, error) {
	return "", errors.New("model unavailable")
}

func TestSendAllFallsBackToStaticComposer(t *testing.T) {
	registry, set := threeCycleFixture(t)
	service := &fakeService{}
	notifier := New(registry, service, WithComposer(failingComposer{}))

	if err := notifier.SendAll(context.Background(), "run_test", set); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, msg := range service.sent {
		if !strings.Contains(msg.body, "Your gift is for:") {
			t.Errorf("fallback body missing static template: %q", msg.body)
		}
	}
}
