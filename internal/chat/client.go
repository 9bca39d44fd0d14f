package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alienx/bianca/internal/stream"
)

// ErrEmptyPrompt is returned by Submit when the prompt is blank. No
// network call is made in that case.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// Options configures a Client.
type Options struct {
	// ServiceURL is the base URL of the agent service, without the
	// /api/process-stream path.
	ServiceURL string

	// AuthToken, when set, is sent as a bearer token on every request.
	AuthToken string

	// RequestTimeout bounds the initial connection and response
	// headers. It does not bound the stream itself.
	RequestTimeout time.Duration
}

// Client submits prompts to the agent service and returns the
// resulting event stream.
type Client struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

// NewClient creates a Client for the given service.
func NewClient(opts Options) *Client {
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.ServiceURL, "/"),
		authToken: opts.AuthToken,
		httpClient: &http.Client{
			Transport: &http.Transport{
				ResponseHeaderTimeout: timeout,
			},
		},
	}
}

type submitRequest struct {
	Prompt string `json:"prompt"`
	User   string `json:"user,omitempty"`
}

// Submit posts a prompt to the agent service and returns a decoder
// over the response stream. The caller must call the returned closer
// when done with the stream.
func (c *Client) Submit(ctx context.Context, prompt, user string) (*stream.Decoder, io.Closer, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, nil, ErrEmptyPrompt
	}

	body, err := json.Marshal(submitRequest{Prompt: prompt, User: user})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/process-stream", bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to reach agent service: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, nil, fmt.Errorf("agent service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	return stream.NewDecoder(resp.Body), resp.Body, nil
}
