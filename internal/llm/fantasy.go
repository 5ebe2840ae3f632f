package llm

import (
	"context"
	"fmt"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"charm.land/fantasy/providers/openrouter"
)

// FantasyBackend serves the OpenAI, Anthropic and OpenRouter providers.
// History is rendered into the prompt text.
type FantasyBackend struct {
	model fantasy.LanguageModel
	name  string
}

func NewFantasyBackend(ctx context.Context, provider, apiKey, baseURL, model string) (*FantasyBackend, error) {
	var p fantasy.Provider
	var err error

	switch provider {
	case "openai":
		opts := []openai.Option{openai.WithAPIKey(apiKey)}
		if baseURL != "" {
			opts = append(opts, openai.WithBaseURL(baseURL))
		}
		p, err = openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{anthropic.WithAPIKey(apiKey)}
		if baseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(baseURL))
		}
		p, err = anthropic.New(opts...)
	case "openrouter":
		if baseURL != "" {
			return nil, fmt.Errorf("provider openrouter does not accept a base URL (got %s)", baseURL)
		}
		p, err = openrouter.New(openrouter.WithAPIKey(apiKey))
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	lm, err := p.LanguageModel(ctx, model)
	if err != nil {
		return nil, fmt.Errorf("get language model: %w", err)
	}
	return &FantasyBackend{model: lm, name: provider}, nil
}

func (f *FantasyBackend) Name() string { return f.name }

func (f *FantasyBackend) Generate(ctx context.Context, req Request) (string, error) {
	agent := fantasy.NewAgent(f.model)
	result, err := agent.Generate(ctx, fantasy.AgentCall{Prompt: renderPrompt(req)})
	if err != nil {
		return "", err
	}
	return result.Response.Content.Text(), nil
}
