package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/alienx/bianca/internal/retry"
)

// fakeModel returns canned responses, failing a configurable number of
// times first.
type fakeModel struct {
	response  string
	failures  int
	failErr   error
	callCount int
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	m.callCount++
	if m.callCount <= m.failures {
		return nil, m.failErr
	}
	return &llms.ContentResponse{
		Choices: []*llms.ContentChoice{{Content: m.response}},
	}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	resp, err := m.GenerateContent(ctx, nil, options...)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Content, nil
}

func fastRetryClient(model llms.Model) *Client {
	c := NewClientWithModel(model)
	c.retryConfig = retry.RetryConfig{
		MaxRetries: 2,
		BaseDelay:  1,
		MaxDelay:   1,
		Multiplier: 1.0,
	}
	return c
}

func TestGenerate(t *testing.T) {
	t.Run("returns the model response", func(t *testing.T) {
		client := fastRetryClient(&fakeModel{response: "hello"})
		out, err := client.Generate(context.Background(), "say hello")
		require.NoError(t, err)
		assert.Equal(t, "hello", out)
	})

	t.Run("retries transient failures", func(t *testing.T) {
		model := &fakeModel{
			response: "recovered",
			failures: 2,
			failErr:  errors.New("503 service unavailable"),
		}
		client := fastRetryClient(model)

		out, err := client.Generate(context.Background(), "prompt")
		require.NoError(t, err)
		assert.Equal(t, "recovered", out)
		assert.Equal(t, 3, model.callCount)
	})

	t.Run("gives up on non-retryable failures", func(t *testing.T) {
		model := &fakeModel{
			failures: 10,
			failErr:  errors.New("invalid API key"),
		}
		client := fastRetryClient(model)

		_, err := client.Generate(context.Background(), "prompt")
		require.Error(t, err)
		assert.Equal(t, 1, model.callCount)
	})
}

func TestGenerateJSON(t *testing.T) {
	type plan struct {
		Reasoning string `json:"reasoning"`
		Count     int    `json:"count"`
	}

	t.Run("decodes a clean response", func(t *testing.T) {
		client := fastRetryClient(&fakeModel{response: `{"reasoning": "simple", "count": 1}`})

		var p plan
		require.NoError(t, client.GenerateJSON(context.Background(), "prompt", &p))
		assert.Equal(t, "simple", p.Reasoning)
		assert.Equal(t, 1, p.Count)
	})

	t.Run("strips fences and repairs trailing commas", func(t *testing.T) {
		client := fastRetryClient(&fakeModel{response: "```json\n{\"reasoning\": \"fenced\", \"count\": 2,}\n```"})

		var p plan
		require.NoError(t, client.GenerateJSON(context.Background(), "prompt", &p))
		assert.Equal(t, "fenced", p.Reasoning)
		assert.Equal(t, 2, p.Count)
	})

	t.Run("reports undecodable responses", func(t *testing.T) {
		client := fastRetryClient(&fakeModel{response: "I cannot produce JSON, sorry."})

		var p plan
		err := client.GenerateJSON(context.Background(), "prompt", &p)
		assert.Error(t, err)
	})
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(context.Background(), Options{})
	assert.Error(t, err)
}
