// Package genai provides GenAI-enhanced message composition using the OpenAI API.
package genai

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/mroldan/giftroulette/internal/models"
)

const systemPrompt = "You write short, warm gift-exchange notifications. " +
	"Tell the reader who they are buying a gift for and pass along the " +
	"recipient's gift note verbatim. Plain text only, at most four sentences."

// chatCompleter defines the minimal chat completion surface used here.
type chatCompleter interface {
	New(ctx context.Context, body openai.ChatCompletionNewParams, opts ...option.RequestOption) (*openai.ChatCompletion, error)
}

// Client wraps the OpenAI chat completion service for composing
// notification bodies. It satisfies the notifier's Composer interface.
type Client struct {
	chat chatCompleter
}

// NewClient initializes a new GenAI client using the OPENAI_API_KEY
// environment variable.
func NewClient() (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}
	cli := openai.NewClient(option.WithAPIKey(apiKey))
	return &Client{chat: &cli.Chat.Completions}, nil
}

// Compose generates a festive notification body for the recipient. The
// result must still carry the recipient's name and note; anything else is
// rejected so the caller can fall back to the static template.
func (c *Client) Compose(ctx context.Context, recipient models.Participant) (string, error) {
	userPrompt := fmt.Sprintf("The recipient's name is %q. Their gift note is: %q.", recipient.Name, recipient.Note)

	resp, err := c.chat.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModelGPT4oMini,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	body := resp.Choices[0].Message.Content
	if !strings.Contains(body, recipient.Name) {
		return "", fmt.Errorf("generated body omits recipient name")
	}
	if recipient.Note != "" && !strings.Contains(body, recipient.Note) {
		return "", fmt.Errorf("generated body omits recipient note")
	}
	return body, nil
}
