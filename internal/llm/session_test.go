package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/config"
	"supportbot/internal/domain"
)

type fakeBackend struct {
	requests []Request
	err      error
	reply    func(Request) string
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Generate(_ context.Context, req Request) (string, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return "", f.err
	}
	if f.reply != nil {
		return f.reply(req), nil
	}
	return "answer to " + req.Query, nil
}

func TestHistoryIsBounded(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		_, err := s.GenerateResponse(ctx, fmt.Sprintf("q%d", i), nil)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(s.History()), 10)
	}

	h := s.History()
	require.Len(t, h, 10)
	assert.Equal(t, domain.Turn{Role: domain.RoleUser, Text: "q2"}, h[0])
	assert.Equal(t, domain.Turn{Role: domain.RoleModel, Text: "answer to q6"}, h[9])
	// The sixth call saw the five previous exchanges.
	assert.Len(t, b.requests[5].History, 10)
}

func TestCustomHistoryCap(t *testing.T) {
	s := NewSession(&fakeBackend{}, WithMaxHistoryTurns(4))
	for i := 0; i < 5; i++ {
		_, err := s.GenerateResponse(context.Background(), "q", nil)
		require.NoError(t, err)
	}
	assert.Len(t, s.History(), 4)
}

func TestResetIsIdempotent(t *testing.T) {
	s := NewSession(&fakeBackend{})
	_, err := s.GenerateResponse(context.Background(), "hi", nil)
	require.NoError(t, err)

	s.Reset()
	assert.Empty(t, s.History())
	s.Reset()
	assert.Empty(t, s.History())
}

func TestGenerationFailureIsWrapped(t *testing.T) {
	b := &fakeBackend{err: errors.New("429 quota exhausted")}
	s := NewSession(b)

	_, err := s.GenerateResponse(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
	assert.Contains(t, err.Error(), "quota")
	assert.Empty(t, s.History())
	assert.Len(t, b.requests, 1)
}

func TestEmptyResponseIsFailure(t *testing.T) {
	s := NewSession(&fakeBackend{reply: func(Request) string { return "  " }})
	_, err := s.GenerateResponse(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}

func TestPromptVariants(t *testing.T) {
	b := &fakeBackend{}
	s := NewSession(b)
	ctx := context.Background()

	_, err := s.GenerateResponse(ctx, "hello", nil)
	require.NoError(t, err)
	assert.NotContains(t, b.requests[0].System, "CONTEXT INFORMATION")
	assert.Contains(t, b.requests[0].System, "human agent")

	docs := []domain.SearchResult{
		{Document: domain.Document{Content: "Shipping takes 3 days."}, Score: 0.9},
		{Document: domain.Document{Content: "Returns within 30 days."}, Score: 0.7},
	}
	_, err = s.GenerateResponse(ctx, "how long?", docs)
	require.NoError(t, err)
	sys := b.requests[1].System
	assert.Contains(t, sys, "CONTEXT INFORMATION:\nShipping takes 3 days.\n\nReturns within 30 days.")
	assert.Contains(t, sys, "human agent")
	assert.Equal(t, "how long?", b.requests[1].Query)
	assert.Len(t, b.requests[1].History, 2)
}

func TestRenderPrompt(t *testing.T) {
	p := renderPrompt(Request{
		System: "SYS",
		History: []domain.Turn{
			{Role: domain.RoleUser, Text: "hi"},
			{Role: domain.RoleModel, Text: "hello"},
		},
		Query: "where is my order",
	})
	assert.True(t, strings.HasPrefix(p, "SYS\n\nConversation so far:\nUser: hi\nAssistant: hello"))
	assert.True(t, strings.HasSuffix(p, "\n\nUser: where is my order"))
}

func TestNewBackendMissingCredential(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "")
	for _, provider := range []string{"gemini", "openai", "anthropic", "openrouter"} {
		_, err := NewBackend(context.Background(), config.LLMConfig{Provider: provider, APIKeyEnv: "TEST_LLM_KEY", Model: "m"})
		assert.ErrorIs(t, err, domain.ErrMissingCredential, provider)
	}
}

func TestNewBackendOpenRouterRejectsBaseURL(t *testing.T) {
	t.Setenv("TEST_LLM_KEY", "k")
	_, err := NewBackend(context.Background(), config.LLMConfig{
		Provider: "openrouter", APIKeyEnv: "TEST_LLM_KEY", BaseURL: "http://localhost:8080", Model: "m",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}
