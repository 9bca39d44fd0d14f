package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/alienx/bianca/internal/retry"
)

// Options configures the LLM client.
type Options struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// Client wraps a langchain LLM model with retry logic and JSON response
// handling. All agents and the task router go through this client.
type Client struct {
	model       llms.Model
	retryConfig retry.RetryConfig
}

// NewClient creates a client backed by Google AI (Gemini) via langchain.
func NewClient(ctx context.Context, opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("LLM API key is required")
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 8192 // Default max output tokens for Gemini
	}

	clientOpts := []googleai.Option{
		googleai.WithAPIKey(opts.APIKey),
		googleai.WithDefaultMaxTokens(maxTokens),
	}
	if opts.Model != "" {
		clientOpts = append(clientOpts, googleai.WithDefaultModel(opts.Model))
	}

	log.Debug().Str("model", opts.Model).Int("max_tokens", maxTokens).Msg("initializing LLM client")

	model, err := googleai.New(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return NewClientWithModel(model), nil
}

// NewClientWithModel wraps an existing model. Used by tests to inject a
// fake model.
func NewClientWithModel(model llms.Model) *Client {
	return &Client{
		model:       model,
		retryConfig: retry.LLMRetryConfig(),
	}
}

// Generate sends a single prompt and returns the raw text response,
// retrying transient failures with backoff.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var response string
	result := retry.RetryWithBackoff(ctx, c.retryConfig, func() error {
		out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt)
		if err != nil {
			return err
		}
		response = out
		return nil
	})

	if !result.Success {
		return "", fmt.Errorf("LLM request failed after %d attempts: %w", result.Attempts, result.LastError)
	}
	return response, nil
}

// GenerateJSON sends a prompt that is expected to return JSON and
// unmarshals the (possibly repaired) response into target.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, target interface{}) error {
	raw, err := c.Generate(ctx, prompt)
	if err != nil {
		return err
	}

	cleaned := StripCodeFences(raw)
	repaired, wasRepaired, err := RepairJSON(cleaned)
	if err != nil {
		return fmt.Errorf("failed to repair LLM JSON response: %w", err)
	}
	if wasRepaired {
		log.Debug().Int("original_bytes", len(cleaned)).Int("repaired_bytes", len(repaired)).Msg("repaired malformed LLM JSON response")
	}

	if err := json.Unmarshal([]byte(repaired), target); err != nil {
		return fmt.Errorf("failed to decode LLM JSON response: %w", err)
	}
	return nil
}
