// Package llm wraps the hosted generation providers behind a per-conversation Session.
package llm

import (
	"context"
	"fmt"
	"os"
	"time"

	"supportbot/internal/config"
	"supportbot/internal/domain"
)

// NewBackend builds the backend selected by cfg. A missing API key is reported as
// domain.ErrMissingCredential and should stop startup.
func NewBackend(ctx context.Context, cfg config.LLMConfig) (Backend, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("%w: %s not set for provider %s", domain.ErrMissingCredential, cfg.APIKeyEnv, cfg.Provider)
	}
	switch cfg.Provider {
	case "gemini", "":
		b, err := NewGeminiBackend(ctx, key, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		b, err := NewFantasyBackend(ctx, cfg.Provider, key, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// SessionOptions maps the configured history cap and timeout to session options.
func SessionOptions(cfg config.LLMConfig) []SessionOption {
	opts := []SessionOption{WithMaxHistoryTurns(cfg.MaxHistoryTurns)}
	if cfg.TimeoutSecs > 0 {
		opts = append(opts, WithTimeout(time.Duration(cfg.TimeoutSecs)*time.Second))
	}
	return opts
}
