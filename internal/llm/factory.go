package llm

import (
	"fmt"
	"time"

	"designflow/internal/config"
)

// NewClient constructs the configured LLM provider. Clients are built once
// at process start and injected into the stages that need them.
func NewClient(cfg config.AIConfig) (Client, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGeminiClient(cfg.APIKey, cfg.Model)
	case "openai", "":
		timeout, err := time.ParseDuration(cfg.Timeout)
		if err != nil || timeout <= 0 {
			timeout = 120 * time.Second
		}
		return NewOpenAIClientWithConfig(OpenAIConfig{
			APIKey:  cfg.APIKey,
			BaseURL: cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
