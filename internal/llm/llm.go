package llm

import (
	"github.com/comigor/nexucore/internal/config"
	"github.com/sashabaranov/go-openai"
)

// NewClient creates an OpenAI-compatible client for the configured endpoint.
// It fails fast when no API key is set so nothing is ever sent unauthenticated.
func NewClient(cfg config.LLMConfig) (*openai.Client, error) {
	if cfg.APIKey == "" {
		return nil, config.ErrMissingAPIKey
	}
	c := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		c.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(c), nil
}
