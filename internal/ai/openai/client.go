// Package openai implements ai.Model over OpenAI-compatible chat
// completions.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/gravitrone/scribble/internal/ai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = goopenai.GPT4oMini

// ErrNoAPIKey is returned before any request when the client has no key.
var ErrNoAPIKey = errors.New("openai: api key not configured")

// Client sends single-message chat completions.
type Client struct {
	apiKey string
	client *goopenai.Client
}

// NewClient creates a client. baseURL may point at any compatible endpoint;
// empty uses the OpenAI default.
func NewClient(baseURL, apiKey string, timeout ...time.Duration) *Client {
	httpTimeout := 30 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		httpTimeout = timeout[0]
	}

	cfg := goopenai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient = &http.Client{Timeout: httpTimeout}

	return &Client{apiKey: apiKey, client: goopenai.NewClientWithConfig(cfg)}
}

// Generate implements ai.Model.
func (c *Client) Generate(ctx context.Context, req ai.Request) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}
	model := req.Model
	if model == "" {
		model = DefaultModel
	}

	resp, err := c.client.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model: model,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: float32(req.Sampling.Temperature),
		TopP:        float32(req.Sampling.TopP),
		MaxTokens:   req.Sampling.MaxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
