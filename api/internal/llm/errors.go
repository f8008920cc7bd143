package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// NotConfiguredError means the provider's credential is missing from the
// server configuration.
type NotConfiguredError struct {
	Engine string
	EnvVar string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s: API key not configured (%s)", e.Engine, e.EnvVar)
}

type UnknownEngineError struct {
	Name string
}

func (e *UnknownEngineError) Error() string {
	return fmt.Sprintf("unknown llm_name %q; use gpt | gemini | deepseek", e.Name)
}

// ProviderError wraps a failed provider call. StatusCode is 0 when no HTTP
// response was received.
type ProviderError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %d: %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Retryable reports whether a new attempt may succeed: rate limiting,
// server-side failures and transport errors. Cancellation never retries.
func (e *ProviderError) Retryable() bool {
	if errors.Is(e.Err, context.Canceled) || errors.Is(e.Err, context.DeadlineExceeded) {
		return false
	}
	switch {
	case e.StatusCode == 0:
		return true
	case e.StatusCode == http.StatusTooManyRequests:
		return true
	case e.StatusCode >= 500:
		return true
	}
	return false
}

// IsRetryable is true for a ProviderError that allows another attempt.
func IsRetryable(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Retryable()
}

// ErrEmptyResponse is returned when the provider answered without any text.
var ErrEmptyResponse = errors.New("empty response")
