package gpt

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"grammar-proxy/api/internal/llm"
)

// Engine talks to any OpenAI-compatible /chat/completions endpoint.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string
	// System is sent as the system message ahead of every prompt.
	System string

	name   string
	httpc  *http.Client
	client *openai.Client
}

func New(key, model, baseURL string) *Engine {
	return NewCompatible(llm.GPT, key, model, baseURL)
}

// NewCompatible builds an engine for an OpenAI-compatible provider reported
// under name.
func NewCompatible(name, key, model, baseURL string) *Engine {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		IdleConnTimeout:       90 * time.Second,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   100,
	}
	e := &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		name:    name,
		// the caller's context carries the deadline
		httpc: &http.Client{Transport: tr},
	}
	e.client = e.newClient()
	return e
}

// WithHTTPClient overrides the internal HTTP client (e.g., for custom timeouts or tracing).
func (e *Engine) WithHTTPClient(c *http.Client) *Engine {
	if c != nil {
		e.httpc = c
		e.client = e.newClient()
	}
	return e
}

func (e *Engine) WithSystem(system string) *Engine {
	e.System = system
	return e
}

func (e *Engine) newClient() *openai.Client {
	cfg := openai.DefaultConfig(e.APIKey)
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	cfg.HTTPClient = e.httpc
	return openai.NewClientWithConfig(cfg)
}

func (e *Engine) Name() string     { return e.name }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", &llm.NotConfiguredError{Engine: e.name, EnvVar: llm.KeyEnv[e.name]}
	}

	msgs := make([]openai.ChatCompletionMessage, 0, 2)
	if s := strings.TrimSpace(e.System); s != "" {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: s})
	}
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.Model,
		Messages:    msgs,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", e.wrapErr(err)
	}
	if len(resp.Choices) == 0 {
		return "", &llm.ProviderError{Provider: e.name, StatusCode: http.StatusOK, Err: llm.ErrEmptyResponse}
	}
	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", &llm.ProviderError{Provider: e.name, StatusCode: http.StatusOK, Err: llm.ErrEmptyResponse}
	}
	return out, nil
}

func (e *Engine) wrapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &llm.ProviderError{Provider: e.name, StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &llm.ProviderError{Provider: e.name, StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return &llm.ProviderError{Provider: e.name, Err: err}
}
