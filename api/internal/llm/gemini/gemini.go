package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"grammar-proxy/api/internal/llm"
)

type Engine struct {
	APIKey string
	Model  string
	System string

	// extra client options, e.g. option.WithEndpoint in tests
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) WithSystem(system string) *Engine {
	e.System = system
	return e
}

func (e *Engine) Name() string     { return llm.Gemini }
func (e *Engine) GetModel() string { return e.Model }

// Complete asks the model for a JSON reply to prompt.
func (e *Engine) Complete(ctx context.Context, prompt string) (string, error) {
	if e.APIKey == "" {
		return "", &llm.NotConfiguredError{Engine: llm.Gemini, EnvVar: llm.KeyEnv[llm.Gemini]}
	}
	opts := append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)
	cl, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", &llm.ProviderError{Provider: llm.Gemini, Err: fmt.Errorf("new client: %w", err)}
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", &llm.ProviderError{Provider: llm.Gemini, Err: errors.New("model is nil")}
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.2),
		ResponseMIMEType: "application/json",
	}
	if s := strings.TrimSpace(e.System); s != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(s)}}
	}

	resp, err := m.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", wrapErr(err)
	}
	out := strings.TrimSpace(firstText(resp))
	if out == "" {
		return "", &llm.ProviderError{Provider: llm.Gemini, StatusCode: http.StatusOK, Err: llm.ErrEmptyResponse}
	}
	return out, nil
}

func wrapErr(err error) error {
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		// a response arrived, the content was refused; retrying will not help
		return &llm.ProviderError{Provider: llm.Gemini, StatusCode: http.StatusOK, Err: err}
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &llm.ProviderError{Provider: llm.Gemini, StatusCode: gerr.Code, Err: err}
	}
	return &llm.ProviderError{Provider: llm.Gemini, Err: err}
}

// firstText joins the text parts of the first candidate that has content.
func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
