// Package llm wraps the OpenAI API behind the chat and embedding ports.
package llm

import (
	"context"
	"strings"
	"time"

	"github.com/PushkarKunda/OneBox-AI/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

const (
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-ada-002"
)

// Client wraps the OpenAI client with model defaults and a circuit breaker
// around chat completions. Breaker-open errors surface like any other provider
// error; callers degrade to their own defaults.
type Client struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	breaker     *gobreaker.CircuitBreaker
}

// ClientConfig configures the OpenAI wrapper.
type ClientConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// NewClient creates a client with defaults for everything but the key.
func NewClient(apiKey string) *Client {
	return NewClientWithConfig(ClientConfig{APIKey: apiKey})
}

// NewClientWithConfig creates a client from explicit configuration.
func NewClientWithConfig(cfg ClientConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.7
	}

	cbSettings := gobreaker.Settings{
		Name:        "openai-chat",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	}

	return &Client{
		client:      openai.NewClient(cfg.APIKey),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
		breaker:     gobreaker.NewCircuitBreaker(cbSettings),
	}
}

// Model returns the configured chat model name.
func (c *Client) Model() string {
	return c.model
}

func (c *Client) chat(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       c.model,
			MaxTokens:   c.maxTokens,
			Temperature: c.temperature,
			Messages:    messages,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return "", nil
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

// Complete sends a single-message prompt and returns the model output.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleUser, Content: prompt},
	})
}

// CompleteWithSystem sends a system+user prompt pair.
func (c *Client) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return c.chat(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: userPrompt},
	})
}

// Embedding returns the embedding vector for a single text. Unlike chat calls
// this bypasses the breaker: the embedder layers its own retry and fallback
// policy on top and needs to see raw rate-limit errors.
func (c *Client) Embedding(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.AdaEmbeddingV2,
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, nil
	}
	return resp.Data[0].Embedding, nil
}

// cleanResponse strips code fences and surrounding whitespace from model output.
func cleanResponse(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
