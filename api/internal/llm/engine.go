package llm

import (
	"context"
	"sort"
	"strings"
)

// Client is one LLM provider. Complete sends a single prompt and returns the
// model's raw text reply.
type Client interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, prompt string) (string, error)
}

const (
	GPT      = "gpt"
	Gemini   = "gemini"
	DeepSeek = "deepseek"
)

// KeyEnv maps a provider name to the env var holding its credential.
var KeyEnv = map[string]string{
	GPT:      "OPENAI_API_KEY",
	Gemini:   "GEMINI_API_KEY",
	DeepSeek: "DEEPSEEK_API_KEY",
}

// Engines holds the configured providers. A nil field means the provider has
// no credential.
type Engines struct {
	OpenAI   Client
	Gemini   Client
	DeepSeek Client

	Default string
}

// Canonical resolves aliases ("openai" -> "gpt") and reports whether the
// name is a known provider.
func Canonical(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gpt", "openai":
		return GPT, true
	case "gemini", "google":
		return Gemini, true
	case "deepseek":
		return DeepSeek, true
	default:
		return "", false
	}
}

func (e *Engines) GetEngine(llmName string) (Client, error) {
	if strings.TrimSpace(llmName) == "" {
		llmName = e.Default
	}
	name, ok := Canonical(llmName)
	if !ok {
		return nil, &UnknownEngineError{Name: llmName}
	}
	var c Client
	switch name {
	case GPT:
		c = e.OpenAI
	case Gemini:
		c = e.Gemini
	case DeepSeek:
		c = e.DeepSeek
	}
	if c == nil {
		return nil, &NotConfiguredError{Engine: name, EnvVar: KeyEnv[name]}
	}
	return c, nil
}

// Available lists every known provider with whether it is configured.
func (e *Engines) Available() map[string]bool {
	return map[string]bool{
		GPT:      e.OpenAI != nil,
		Gemini:   e.Gemini != nil,
		DeepSeek: e.DeepSeek != nil,
	}
}

// Configured returns the names of configured providers in stable order.
func (e *Engines) Configured() []string {
	var out []string
	for name, ok := range e.Available() {
		if ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
