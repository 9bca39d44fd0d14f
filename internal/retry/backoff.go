package retry

import (
	"context"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// RetryConfig configures retry behavior with exponential backoff
type RetryConfig struct {
	MaxRetries int           `json:"max_retries"` // Maximum number of retry attempts (default: 3)
	BaseDelay  time.Duration `json:"base_delay"`  // Base delay between retries (default: 1s)
	MaxDelay   time.Duration `json:"max_delay"`   // Maximum delay between retries (default: 30s)
	Multiplier float64       `json:"multiplier"`  // Exponential backoff multiplier (default: 2.0)
	Jitter     bool          `json:"jitter"`      // Add random jitter to prevent thundering herd (default: true)
	LogRetries bool          `json:"log_retries"` // Whether to log retry attempts (default: true)
}

// RetryResult contains information about the retry operation
type RetryResult struct {
	Attempts      int           `json:"attempts"`       // Total number of attempts made
	TotalDuration time.Duration `json:"total_duration"` // Total time spent on all attempts
	LastError     error         `json:"-"`              // Last error encountered
	Success       bool          `json:"success"`        // Whether the operation eventually succeeded
}

// DefaultRetryConfig returns a retry configuration with sensible defaults
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  1 * time.Second,
		MaxDelay:   30 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
		LogRetries: true,
	}
}

// LLMRetryConfig returns a retry configuration optimized for LLM requests
func LLMRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		BaseDelay:  2 * time.Second,  // LLM requests can be slower
		MaxDelay:   60 * time.Second, // Allow longer max delay for LLM
		Multiplier: 2.5,              // Slightly more aggressive backoff
		Jitter:     true,
		LogRetries: true,
	}
}

// SendRetryConfig returns a retry configuration for outbound message
// sends, where the companion service may briefly drop its session.
func SendRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 2,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2.0,
		Jitter:     true,
		LogRetries: true,
	}
}

// RetryWithBackoff executes an operation with exponential backoff retry logic
func RetryWithBackoff(ctx context.Context, config RetryConfig, operation func() error) RetryResult {
	startTime := time.Now()

	result := RetryResult{
		Attempts: 0,
		Success:  false,
	}

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		result.Attempts = attempt + 1

		if config.LogRetries && attempt > 0 {
			log.Debug().Int("attempt", attempt+1).Int("max_attempts", config.MaxRetries+1).Msg("retrying operation")
		}

		// Execute the operation
		err := operation()
		if err == nil {
			result.Success = true
			result.TotalDuration = time.Since(startTime)
			if config.LogRetries && attempt > 0 {
				log.Debug().Int("retries", attempt).Dur("total_duration", result.TotalDuration).Msg("operation succeeded after retries")
			}
			return result
		}

		// Operation failed
		result.LastError = err

		// Check if we should retry
		if attempt >= config.MaxRetries {
			result.TotalDuration = time.Since(startTime)
			if config.LogRetries {
				log.Warn().Err(err).Int("attempts", result.Attempts).Dur("total_duration", result.TotalDuration).Msg("operation failed after all retries")
			}
			return result
		}

		// Give up on non-retryable errors immediately
		if !IsRetryableError(err) {
			result.TotalDuration = time.Since(startTime)
			if config.LogRetries {
				log.Debug().Err(err).Msg("operation failed with non-retryable error")
			}
			return result
		}

		// Check context cancellation
		if ctx.Err() != nil {
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		}

		// Calculate delay for next attempt
		delay := calculateDelay(config, attempt)

		if config.LogRetries {
			log.Debug().Err(err).Int("attempt", attempt+1).Dur("delay", delay).Msg("operation failed, waiting before retry")
		}

		// Wait before retrying
		select {
		case <-ctx.Done():
			result.LastError = ctx.Err()
			result.TotalDuration = time.Since(startTime)
			return result
		case <-time.After(delay):
			// Continue to next attempt
		}
	}

	// This should never be reached due to the loop logic above
	result.TotalDuration = time.Since(startTime)
	return result
}

// calculateDelay calculates the delay for the next retry attempt using exponential backoff
func calculateDelay(config RetryConfig, attempt int) time.Duration {
	// Calculate exponential backoff: baseDelay * multiplier^attempt
	delay := float64(config.BaseDelay) * math.Pow(config.Multiplier, float64(attempt))

	// Apply maximum delay limit
	if delay > float64(config.MaxDelay) {
		delay = float64(config.MaxDelay)
	}

	// Add jitter to prevent thundering herd problem
	if config.Jitter {
		// Add up to 10% random jitter
		jitterRange := delay * 0.1
		jitter := (rand.Float64() - 0.5) * 2 * jitterRange
		delay += jitter

		// Ensure delay is not negative
		if delay < 0 {
			delay = float64(config.BaseDelay)
		}
	}

	return time.Duration(delay)
}

// IsRetryableError determines if an error is retryable
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := strings.ToLower(err.Error())

	// Network-related errors that are typically retryable
	retryableErrors := []string{
		"connection refused",
		"connection reset",
		"connection timeout",
		"timeout",
		"temporary failure",
		"service unavailable",
		"too many requests",
		"rate limit",
		"429", // HTTP 429 Too Many Requests
		"502", // HTTP 502 Bad Gateway
		"503", // HTTP 503 Service Unavailable
		"504", // HTTP 504 Gateway Timeout
		"dns lookup failed",
		"no such host",
		"network unreachable",
		"broken pipe",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(errStr, retryable) {
			return true
		}
	}

	return false
}
