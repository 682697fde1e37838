package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// NewClient creates a provider client for cfg.Provider wrapped in a GuardedClient.
func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*GuardedClient, error) {
	inner, err := newProviderClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewGuardedClient(inner, cfg, logger), nil
}

func newProviderClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai", "":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	case "gemini":
		return newGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
