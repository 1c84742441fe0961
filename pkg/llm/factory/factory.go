package factory

import (
	"fmt"
	"strings"
	"time"

	"nexora-campus-be/pkg/llm"
	"nexora-campus-be/pkg/llm/anthropic"
	"nexora-campus-be/pkg/llm/huggingface"
	"nexora-campus-be/pkg/llm/ollama"
	"nexora-campus-be/pkg/llm/openai"
)

// Config selects and configures one LLM backend. An empty Provider means
// no model is used and replies stay deterministic.
type Config struct {
	Provider string
	Model    string
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
}

// NewLLMProvider returns nil, nil when no provider is configured.
func NewLLMProvider(cfg Config) (llm.LLMProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "none":
		return nil, nil
	case "ollama":
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	case "openai", "groq":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s provider requires an API key", cfg.Provider)
		}
		baseURL := cfg.BaseURL
		if baseURL == "" && strings.EqualFold(cfg.Provider, "groq") {
			baseURL = "https://api.groq.com/openai/v1/"
		}
		return openai.NewProvider(cfg.APIKey, baseURL, cfg.Model), nil
	case "anthropic":
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return anthropic.NewProvider(cfg.APIKey, cfg.BaseURL, cfg.Model), nil
	case "huggingface":
		return huggingface.NewHuggingFaceProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
