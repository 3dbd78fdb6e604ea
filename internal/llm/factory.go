package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/cartoonist/internal/config"
)

// NewClient builds the text model client for a provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (LLMClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "openrouter":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, orDefault(cfg.BaseURL, openRouterBaseURL)), nil

	case "ollama":
		return newOllamaClient(cfg), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "claude":
		return NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}

// NewImageClient builds the image model client. Claude has no image output and
// OpenRouter does not serve /images/generations, so both are text-only here.
func NewImageClient(ctx context.Context, cfg config.LLMConfig) (ImageClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.Model)

	case "openrouter", "claude", "ollama":
		return nil, fmt.Errorf("%s has no image generation endpoint, use gemini or openai", provider)

	default:
		return nil, fmt.Errorf("unsupported image provider: %s", provider)
	}
}

// Ollama is reached through its OpenAI-compatible API; the key is ignored but required.
func newOllamaClient(cfg config.LLMConfig) *OpenAIClient {
	baseURL := orDefault(cfg.BaseURL, "http://localhost:11434")
	if !strings.HasSuffix(baseURL, "/v1") {
		baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
	}
	return NewOpenAIClient(orDefault(cfg.APIKey, "ollama"), cfg.Model, baseURL)
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
