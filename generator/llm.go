package generator

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// llmRequestTimeout bounds one provider call end to end, whatever the
// caller's context allows.
const llmRequestTimeout = 60 * time.Second

// LLMClient abstracts a model provider call, so providers can be swapped or
// mocked. Implementations return the raw completion text.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings holds the per-provider connection parameters. APIKey may come
// from config or from a single request; it is never persisted.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}

// NewLLMClient builds the adapter for a provider name.
func NewLLMClient(cfg LLMSettings) (LLMClient, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return NewOpenAILLM(&cfg)
	case "deepseek":
		// DeepSeek exposes an OpenAI-compatible endpoint; base_url required.
		if cfg.BaseURL == "" {
			return nil, fmt.Errorf("llm provider deepseek requires base_url (OpenAI-compatible endpoint)")
		}
		return NewOpenAILLM(&cfg)
	case "anthropic":
		return NewAnthropicLLM(&cfg)
	case "gemini":
		return NewGeminiLLM(&cfg)
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", cfg.Provider)
	}
}
