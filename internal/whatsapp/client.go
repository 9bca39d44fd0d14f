// Package whatsapp is the REST client for the companion WhatsApp
// automation service. The companion wraps a WhatsApp Web session, so the
// client rate-limits itself and retries transient failures to keep that
// session healthy.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/alienx/bianca/internal/retry"
)

// Options configures the client.
type Options struct {
	BaseURL        string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
}

// Client talks to the companion service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	limiter     *rate.Limiter
	retryConfig retry.RetryConfig
}

// NewClient creates a rate-limited client for the companion service.
func NewClient(opts Options) *Client {
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 1
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 5
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Limit(rps), burst),
		retryConfig: retry.SendRetryConfig(),
	}
}

// SendResponse is the companion service's answer to a send request.
type SendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StatusResponse reports the state of the WhatsApp Web session.
type StatusResponse struct {
	Connected bool   `json:"connected"`
	State     string `json:"state,omitempty"`
	Number    string `json:"number,omitempty"`
}

// CheckResponse reports whether a number is registered on WhatsApp.
type CheckResponse struct {
	Exists bool   `json:"exists"`
	Number string `json:"number,omitempty"`
}

// Chat is one conversation known to the session.
type Chat struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsGroup  bool   `json:"isGroup"`
	Unread   int    `json:"unreadCount"`
	LastSeen string `json:"lastSeen,omitempty"`
}

// Contact is one address book entry known to the session.
type Contact struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Number string `json:"number"`
}

// Health reports whether the companion service is up and ready.
func (c *Client) Health(ctx context.Context) error {
	var out map[string]interface{}
	return c.doJSON(ctx, http.MethodGet, "/health", nil, &out)
}

// Status returns the WhatsApp Web session state.
func (c *Client) Status(ctx context.Context) (*StatusResponse, error) {
	var out StatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/status", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Send sends a text message to a single number. This is the core
// capability the rest of the system depends on.
func (c *Client) Send(ctx context.Context, phoneNumber, message string) (*SendResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"phoneNumber": number,
		"message":     message,
	}

	var out SendResponse
	result := retry.RetryWithBackoff(ctx, c.retryConfig, func() error {
		return c.doJSON(ctx, http.MethodPost, "/send/message", payload, &out)
	})
	if !result.Success {
		return nil, fmt.Errorf("failed to send message to %s: %w", number, result.LastError)
	}

	log.Debug().Str("number", number).Str("message_id", out.MessageID).Msg("sent whatsapp message")
	return &out, nil
}

// SendImageURL sends an image referenced by URL with an optional caption.
func (c *Client) SendImageURL(ctx context.Context, phoneNumber, imageURL, caption string) (*SendResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"phoneNumber": number,
		"imageUrl":    imageURL,
		"caption":     caption,
	}

	var out SendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/send/image-url", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendDocument sends a document referenced by URL with an optional caption.
func (c *Client) SendDocument(ctx context.Context, phoneNumber, documentURL, caption string) (*SendResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"phoneNumber": number,
		"documentUrl": documentURL,
		"caption":     caption,
	}

	var out SendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/send/document", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendLocation sends a location pin.
func (c *Client) SendLocation(ctx context.Context, phoneNumber string, latitude, longitude float64, description string) (*SendResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"phoneNumber": number,
		"latitude":    latitude,
		"longitude":   longitude,
		"description": description,
	}

	var out SendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/send/location", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendContact shares a contact card.
func (c *Client) SendContact(ctx context.Context, phoneNumber, contactNumber, contactName string) (*SendResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{
		"phoneNumber":   number,
		"contactNumber": contactNumber,
		"contactName":   contactName,
	}

	var out SendResponse
	if err := c.doJSON(ctx, http.MethodPost, "/send/contact", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BroadcastResult is the outcome for one recipient of a broadcast.
type BroadcastResult struct {
	Number    string `json:"number"`
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Broadcast sends the same message to several numbers, one send per
// number so the rate limiter paces the fan-out. A failed recipient does
// not stop the rest.
func (c *Client) Broadcast(ctx context.Context, phoneNumbers []string, message string) []BroadcastResult {
	results := make([]BroadcastResult, 0, len(phoneNumbers))
	for _, number := range phoneNumbers {
		resp, err := c.Send(ctx, number, message)
		if err != nil {
			results = append(results, BroadcastResult{Number: number, Success: false, Error: err.Error()})
			continue
		}
		results = append(results, BroadcastResult{
			Number:    number,
			Success:   resp.Success,
			MessageID: resp.MessageID,
			Error:     resp.Error,
		})
	}
	return results
}

// CheckNumber reports whether a number is registered on WhatsApp.
func (c *Client) CheckNumber(ctx context.Context, phoneNumber string) (*CheckResponse, error) {
	number, err := FormatPhoneNumber(phoneNumber)
	if err != nil {
		return nil, err
	}

	var out CheckResponse
	if err := c.doJSON(ctx, http.MethodGet, "/check/"+number, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chats lists the conversations known to the session.
func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	var out []Chat
	if err := c.doJSON(ctx, http.MethodGet, "/chats", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Contacts lists the contacts known to the session.
func (c *Client) Contacts(ctx context.Context) ([]Contact, error) {
	var out []Contact
	if err := c.doJSON(ctx, http.MethodGet, "/contacts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Logout ends the WhatsApp Web session.
func (c *Client) Logout(ctx context.Context) error {
	var out map[string]interface{}
	return c.doJSON(ctx, http.MethodPost, "/logout", nil, &out)
}

// doJSON performs one rate-limited request against the companion
// service and decodes the JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, endpoint string, payload, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait cancelled: %w", err)
	}

	var body io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("companion service error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
