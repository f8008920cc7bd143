package deepseek

import (
	"grammar-proxy/api/internal/llm"
	"grammar-proxy/api/internal/llm/gpt"
)

const DefaultBaseURL = "https://api.deepseek.com"

// New returns a DeepSeek engine. DeepSeek speaks the OpenAI chat wire format,
// so the gpt engine does the work under the "deepseek" name.
func New(key, model, baseURL string) *gpt.Engine {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return gpt.NewCompatible(llm.DeepSeek, key, model, baseURL)
}
