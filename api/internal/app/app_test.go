package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grammar-proxy/api/internal/config"
	"grammar-proxy/api/internal/llm"
)

func TestNewEnginesOnlyKeyedProviders(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := &config.Config{
		Provider:        "deepseek",
		GeminiAPIKey:    "g-key",
		GeminiModel:     "gemini-2.5-flash",
		DeepseekAPIKey:  "d-key",
		DeepseekModel:   "deepseek-chat",
		DeepseekBaseURL: "https://api.deepseek.com",
	}

	engs := NewEngines(cfg, "sys", logger)
	assert.Nil(t, engs.OpenAI)
	assert.Equal(t, []string{llm.DeepSeek, llm.Gemini}, engs.Configured())
	assert.Equal(t, llm.DeepSeek, engs.Default)

	c, err := engs.GetEngine("")
	require.NoError(t, err)
	assert.Equal(t, llm.DeepSeek, c.Name())
	assert.Equal(t, "deepseek-chat", c.GetModel())

	_, err = engs.GetEngine("openai")
	var nc *llm.NotConfiguredError
	assert.ErrorAs(t, err, &nc)
}

func TestNewEnginesUnknownDefault(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	engs := NewEngines(&config.Config{Provider: "claude"}, "", logger)
	assert.Equal(t, llm.GPT, engs.Default)
	require.NotNil(t, hook.LastEntry())
	assert.Contains(t, hook.LastEntry().Message, "unknown provider")
}

func TestNewService(t *testing.T) {
	logger, _ := logtest.NewNullLogger()
	cfg := &config.Config{
		Provider:        "gpt",
		OpenAIAPIKey:    "sk-test",
		OpenAIModel:     "gpt-4o-mini",
		ProviderTimeout: 5 * time.Second,
	}
	svc, engs, err := NewService(cfg, logger)
	require.NoError(t, err)
	assert.NotNil(t, svc)
	assert.Same(t, engs, svc.Engines())

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "correct.user.txt"), []byte("{{ .Sentence "), 0o644))
	cfg.PromptDir = dir
	_, _, err = NewService(cfg, logger)
	assert.Error(t, err)
}
