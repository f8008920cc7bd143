package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	Port string

	Provider string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	GeminiAPIKey string
	GeminiModel  string

	DeepseekAPIKey  string
	DeepseekModel   string
	DeepseekBaseURL string

	ProviderTimeout    time.Duration
	ProviderMaxRetries int

	PromptDir string

	LogLevel  string
	LogFormat string

	TelegramBotToken string
	WebhookURL       string
}

func getEnv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		logrus.WithField("env", k).Warnf("bad duration %q, using %s", v, def)
		return def
	}
	return d
}

func getInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		logrus.WithField("env", k).Warnf("bad integer %q, using %d", v, def)
		return def
	}
	return n
}

// Load reads the process environment. Provider keys are optional here:
// a missing key only disables that provider.
func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8000"),

		Provider: strings.ToLower(getEnv("LLM_PROVIDER", "gpt")),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),

		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-2.5-flash"),

		DeepseekAPIKey:  getEnv("DEEPSEEK_API_KEY", ""),
		DeepseekModel:   getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DeepseekBaseURL: getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com"),

		ProviderTimeout:    getDuration("PROVIDER_TIMEOUT", 30*time.Second),
		ProviderMaxRetries: getInt("PROVIDER_MAX_RETRIES", 2),

		PromptDir: getEnv("PROMPT_DIR", ""),

		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		WebhookURL:       getEnv("WEBHOOK_URL", ""),
	}
}

// NewLogger builds the process logger from LOG_LEVEL / LOG_FORMAT.
func (c *Config) NewLogger() *logrus.Logger {
	l := logrus.New()
	if c.LogFormat == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		l.Warnf("unknown LOG_LEVEL %q, using info", c.LogLevel)
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}
