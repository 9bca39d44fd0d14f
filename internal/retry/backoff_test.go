package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", config.MaxRetries)
	}

	if config.BaseDelay != time.Second {
		t.Errorf("Expected BaseDelay=1s, got %v", config.BaseDelay)
	}

	if config.MaxDelay != 30*time.Second {
		t.Errorf("Expected MaxDelay=30s, got %v", config.MaxDelay)
	}

	if config.Multiplier != 2.0 {
		t.Errorf("Expected Multiplier=2.0, got %f", config.Multiplier)
	}

	if !config.Jitter {
		t.Error("Expected Jitter=true")
	}

	if !config.LogRetries {
		t.Error("Expected LogRetries=true")
	}
}

func TestLLMRetryConfig(t *testing.T) {
	config := LLMRetryConfig()

	if config.MaxRetries != 3 {
		t.Errorf("Expected MaxRetries=3, got %d", config.MaxRetries)
	}

	if config.BaseDelay != 2*time.Second {
		t.Errorf("Expected BaseDelay=2s, got %v", config.BaseDelay)
	}

	if config.MaxDelay != 60*time.Second {
		t.Errorf("Expected MaxDelay=60s, got %v", config.MaxDelay)
	}

	if config.Multiplier != 2.5 {
		t.Errorf("Expected Multiplier=2.5, got %f", config.Multiplier)
	}
}

func TestSendRetryConfig(t *testing.T) {
	config := SendRetryConfig()

	if config.MaxRetries != 2 {
		t.Errorf("Expected MaxRetries=2, got %d", config.MaxRetries)
	}

	if config.BaseDelay != 500*time.Millisecond {
		t.Errorf("Expected BaseDelay=500ms, got %v", config.BaseDelay)
	}
}

func TestRetryWithBackoff_Success(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
		LogRetries: false,
	}

	calls := 0
	result := RetryWithBackoff(context.Background(), config, func() error {
		calls++
		return nil
	})

	if !result.Success {
		t.Error("Expected operation to succeed")
	}

	if result.Attempts != 1 {
		t.Errorf("Expected 1 attempt, got %d", result.Attempts)
	}

	if calls != 1 {
		t.Errorf("Expected operation to be called once, got %d", calls)
	}

	if result.LastError != nil {
		t.Errorf("Expected no error, got %v", result.LastError)
	}
}

func TestRetryWithBackoff_SucceedsAfterRetries(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
		LogRetries: false,
	}

	calls := 0
	result := RetryWithBackoff(context.Background(), config, func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	if !result.Success {
		t.Error("Expected operation to eventually succeed")
	}

	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts, got %d", result.Attempts)
	}
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 2,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
		LogRetries: false,
	}

	opErr := errors.New("service unavailable")
	calls := 0
	result := RetryWithBackoff(context.Background(), config, func() error {
		calls++
		return opErr
	})

	if result.Success {
		t.Error("Expected operation to fail")
	}

	if result.Attempts != 3 {
		t.Errorf("Expected 3 attempts (1 + 2 retries), got %d", result.Attempts)
	}

	if !errors.Is(result.LastError, opErr) {
		t.Errorf("Expected last error %v, got %v", opErr, result.LastError)
	}
}

func TestRetryWithBackoff_NonRetryableError(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 5,
		BaseDelay:  time.Millisecond,
		MaxDelay:   10 * time.Millisecond,
		Multiplier: 2.0,
		Jitter:     false,
		LogRetries: false,
	}

	calls := 0
	result := RetryWithBackoff(context.Background(), config, func() error {
		calls++
		return errors.New("invalid API key")
	})

	if result.Success {
		t.Error("Expected operation to fail")
	}

	if calls != 1 {
		t.Errorf("Expected a single attempt for a non-retryable error, got %d", calls)
	}
}

func TestRetryWithBackoff_ContextCancellation(t *testing.T) {
	config := RetryConfig{
		MaxRetries: 10,
		BaseDelay:  50 * time.Millisecond,
		MaxDelay:   time.Second,
		Multiplier: 2.0,
		Jitter:     false,
		LogRetries: false,
	}

	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	result := RetryWithBackoff(ctx, config, func() error {
		calls++
		if calls == 1 {
			cancel()
		}
		return errors.New("connection reset")
	})

	if result.Success {
		t.Error("Expected operation to fail")
	}

	if !errors.Is(result.LastError, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", result.LastError)
	}
}

func TestCalculateDelay(t *testing.T) {
	config := RetryConfig{
		BaseDelay:  time.Second,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     false,
	}

	if d := calculateDelay(config, 0); d != time.Second {
		t.Errorf("Expected 1s for attempt 0, got %v", d)
	}

	if d := calculateDelay(config, 1); d != 2*time.Second {
		t.Errorf("Expected 2s for attempt 1, got %v", d)
	}

	if d := calculateDelay(config, 10); d != 10*time.Second {
		t.Errorf("Expected delay capped at 10s, got %v", d)
	}
}

func TestIsRetryableError(t *testing.T) {
	retryable := []string{
		"connection refused",
		"dial tcp: connection reset by peer",
		"request timeout",
		"HTTP 429 too many requests",
		"503 Service Unavailable",
		"no such host",
	}
	for _, msg := range retryable {
		if !IsRetryableError(errors.New(msg)) {
			t.Errorf("Expected %q to be retryable", msg)
		}
	}

	nonRetryable := []string{
		"invalid API key",
		"malformed request body",
		"permission denied",
	}
	for _, msg := range nonRetryable {
		if IsRetryableError(errors.New(msg)) {
			t.Errorf("Expected %q to be non-retryable", msg)
		}
	}

	if IsRetryableError(nil) {
		t.Error("Expected nil error to be non-retryable")
	}
}
