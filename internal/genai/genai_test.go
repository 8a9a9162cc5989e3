package genai

import (
	"context"
	"errors"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mroldan/giftroulette/internal/models"
)

// fakeChat returns a canned completion or an injected error.
type fakeChat struct {
	content string
	err     error
}

func (f *fakeChat) New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: f.content}},
		},
	}, nil
}

func TestComposeReturnsGeneratedBody(t *testing.T) {
	c := &Client{chat: &fakeChat{content: "Ho ho! Your gift is for Bob. Note: likes coffee."}}
	recipient := models.Participant{Name: "Bob", Note: "likes coffee"}

	body, err := c.Compose(context.Background(), recipient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body == "" {
		t.Error("Compose returned empty body")
	}
}

func TestComposeRejectsBodyMissingRecipientDetails(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing name", "Someone is getting a gift! Note: likes coffee."},
		{"missing note", "Your gift is for Bob."},
	}

	recipient := models.Participant{Name: "Bob", Note: "likes coffee"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Client{chat: &fakeChat{content: tt.content}}
			if _, err := c.Compose(context.Background(), recipient); err == nil {
				t.Error("Compose accepted an incomplete body")
			}
		})
	}
}

func TestComposePropagatesAPIFailure(t *testing.T) {
	apiErr := errors.New("rate limited")
	c := &Client{chat: &fakeChat{err: apiErr}}

	_, err := c.Compose(context.Background(), models.Participant{Name: "Bob"})
	if !errors.Is(err, apiErr) {
		t.Errorf("Compose error = %v, want wrapped %v", err, apiErr)
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := NewClient(); err == nil {
		t.Error("expected error without OPENAI_API_KEY")
	}
}
