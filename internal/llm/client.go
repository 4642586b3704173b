package llm

import (
	"context"
	"fmt"

	"github.com/lazypower/engram/internal/config"
)

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, prompt string) (*Response, error)
}

// Response holds the result of an LLM completion.
type Response struct {
	Content    string
	Provider   string
	TokensUsed int
}

// DefaultModel returns the provider's model for a review profile. Strict
// reviews (pre-commit) get the stronger model, light reviews (watch) the
// faster one.
func DefaultModel(provider string, strict bool) string {
	switch provider {
	case "claude-cli":
		if strict {
			return "sonnet"
		}
		return "haiku"
	case "anthropic":
		if strict {
			return "claude-sonnet-4-5"
		}
		return "claude-haiku-4-5"
	case "gemini":
		if strict {
			return "gemini-2.5-pro"
		}
		return "gemini-2.5-flash"
	case "ollama":
		return "llama3.2"
	}
	return ""
}

// ModelFor resolves the configured model for a profile, falling back to
// DefaultModel.
func ModelFor(cfg config.LLMConfig, strict bool) string {
	model := cfg.LightModel
	if strict {
		model = cfg.StrictModel
	}
	if model == "" {
		model = DefaultModel(cfg.Provider, strict)
	}
	return model
}

// NewClient creates an LLM client for the configured provider and model.
func NewClient(ctx context.Context, cfg config.LLMConfig, model string) (Client, error) {
	if model == "" {
		model = DefaultModel(cfg.Provider, false)
	}
	switch cfg.Provider {
	case "claude-cli":
		return NewClaudeCLI(model), nil
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("anthropic provider requires ANTHROPIC_API_KEY or config")
		}
		return NewAnthropic(cfg.AnthropicKey, model), nil
	case "gemini":
		if cfg.GeminiKey == "" {
			return nil, fmt.Errorf("gemini provider requires GEMINI_API_KEY or config")
		}
		return NewGemini(ctx, cfg.GeminiKey, model)
	case "ollama":
		return NewOllama(cfg.OllamaURL, model)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
