package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct{ name string }

func (s stubClient) Name() string     { return s.name }
func (s stubClient) GetModel() string { return "stub-model" }
func (s stubClient) Complete(context.Context, string) (string, error) {
	return "", nil
}

func TestGetEngine(t *testing.T) {
	e := &Engines{
		OpenAI:  stubClient{name: GPT},
		Gemini:  stubClient{name: Gemini},
		Default: "openai",
	}

	c, err := e.GetEngine("")
	require.NoError(t, err)
	assert.Equal(t, GPT, c.Name())

	c, err = e.GetEngine("GEMINI")
	require.NoError(t, err)
	assert.Equal(t, Gemini, c.Name())

	_, err = e.GetEngine("deepseek")
	var nc *NotConfiguredError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, "DEEPSEEK_API_KEY", nc.EnvVar)

	_, err = e.GetEngine("claude")
	var ue *UnknownEngineError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "claude", ue.Name)
}

func TestGetEngineDefaultNotConfigured(t *testing.T) {
	e := &Engines{Default: GPT}
	_, err := e.GetEngine("")
	var nc *NotConfiguredError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, "OPENAI_API_KEY", nc.EnvVar)
}

func TestAvailableAndConfigured(t *testing.T) {
	e := &Engines{DeepSeek: stubClient{name: DeepSeek}, Gemini: stubClient{name: Gemini}}
	assert.Equal(t, map[string]bool{GPT: false, Gemini: true, DeepSeek: true}, e.Available())
	assert.Equal(t, []string{DeepSeek, Gemini}, e.Configured())
}

func TestProviderErrorRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *ProviderError
		want bool
	}{
		{"transport", &ProviderError{Provider: "gpt", Err: errors.New("connection reset")}, true},
		{"rate limited", &ProviderError{Provider: "gpt", StatusCode: 429, Err: errors.New("slow down")}, true},
		{"server error", &ProviderError{Provider: "gpt", StatusCode: 503, Err: errors.New("unavailable")}, true},
		{"bad request", &ProviderError{Provider: "gpt", StatusCode: 400, Err: errors.New("bad")}, false},
		{"unauthorized", &ProviderError{Provider: "gpt", StatusCode: 401, Err: errors.New("key")}, false},
		{"deadline", &ProviderError{Provider: "gpt", Err: fmt.Errorf("do: %w", context.DeadlineExceeded)}, false},
		{"canceled", &ProviderError{Provider: "gpt", Err: context.Canceled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Retryable())
			assert.Equal(t, tt.want, IsRetryable(fmt.Errorf("wrapped: %w", tt.err)))
		})
	}
	assert.False(t, IsRetryable(errors.New("plain")))
}

func TestProviderErrorMessage(t *testing.T) {
	err := &ProviderError{Provider: "gemini", StatusCode: 500, Err: errors.New("boom")}
	assert.Equal(t, "gemini 500: boom", err.Error())
	assert.ErrorIs(t, &ProviderError{Provider: "gpt", Err: ErrEmptyResponse}, ErrEmptyResponse)
}
