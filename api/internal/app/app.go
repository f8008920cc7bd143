// Package app assembles the correction service from configuration. Both
// binaries share it.
package app

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/grammar"
	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/llm/deepseek"
	"grammar-proxy/api/internal/llm/gemini"
	"grammar-proxy/api/internal/llm/gpt"
	"grammar-proxy/api/internal/metrics"
)

// NewEngines registers a provider only when its key is set, so an
// unconfigured provider is a nil field rather than a keyless client.
func NewEngines(cfg *config.Config, system string, log logrus.FieldLogger) *llm.Engines {
	engs := &llm.Engines{}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = gpt.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL).WithSystem(system)
	}
	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel).WithSystem(system)
	}
	if cfg.DeepseekAPIKey != "" {
		engs.DeepSeek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel, cfg.DeepseekBaseURL).WithSystem(system)
	}

	name, ok := llm.Canonical(cfg.Provider)
	if !ok {
		log.WithField("LLM_PROVIDER", cfg.Provider).Warn("unknown provider, using gpt")
		name = llm.GPT
	}
	engs.Default = name
	return engs
}

// NewService builds the prompter, the engines and the service.
func NewService(cfg *config.Config, log logrus.FieldLogger) (*grammar.Service, *llm.Engines, error) {
	prompter, err := grammar.NewPrompter(cfg.PromptDir)
	if err != nil {
		return nil, nil, fmt.Errorf("app: prompts: %w", err)
	}
	engs := NewEngines(cfg, prompter.System(), log)

	metrics.SetConfigured(engs.Available())
	configured := engs.Configured()
	if len(configured) == 0 {
		log.Warn("no provider key set; every correction will fail until one is configured")
	}
	if _, err := engs.GetEngine(""); err != nil {
		log.WithError(err).Warn("default provider is not usable")
	}
	log.WithFields(logrus.Fields{
		"default":    engs.Default,
		"configured": configured,
		"timeout":    cfg.ProviderTimeout,
		"retries":    cfg.ProviderMaxRetries,
	}).Info("providers ready")

	svc := grammar.NewService(engs, grammar.Options{
		Timeout:    cfg.ProviderTimeout,
		MaxRetries: cfg.ProviderMaxRetries,
		Prompter:   prompter,
		Logger:     log,
	})
	return svc, engs, nil
}
