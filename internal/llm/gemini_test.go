package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/config"
	"supportbot/internal/domain"
)

func TestGeminiBackendSendsHistory(t *testing.T) {
	var body struct {
		Contents []struct {
			Role string `json:"role"`
		} `json:"contents"`
		SystemInstruction json.RawMessage `json:"systemInstruction"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Your package ships today."}]}}]}`))
	}))
	defer srv.Close()
	t.Setenv("TEST_GEMINI_KEY", "k")

	b, err := NewBackend(context.Background(), config.LLMConfig{
		Provider: "gemini", APIKeyEnv: "TEST_GEMINI_KEY", BaseURL: srv.URL, Model: "gemini-2.0-flash",
	})
	require.NoError(t, err)
	s := NewSession(b)

	_, err = s.GenerateResponse(context.Background(), "first", nil)
	require.NoError(t, err)
	text, err := s.GenerateResponse(context.Background(), "where is my package?", nil)
	require.NoError(t, err)

	assert.Equal(t, "Your package ships today.", text)
	require.Len(t, body.Contents, 3)
	assert.Equal(t, "user", body.Contents[0].Role)
	assert.Equal(t, "model", body.Contents[1].Role)
	assert.Equal(t, "user", body.Contents[2].Role)
	assert.NotEmpty(t, body.SystemInstruction)
}

func TestGeminiBackendErrorIsGenerationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()
	t.Setenv("TEST_GEMINI_KEY", "k")

	b, err := NewBackend(context.Background(), config.LLMConfig{
		Provider: "gemini", APIKeyEnv: "TEST_GEMINI_KEY", BaseURL: srv.URL, Model: "gemini-2.0-flash",
	})
	require.NoError(t, err)

	_, err = NewSession(b).GenerateResponse(context.Background(), "hi", nil)
	assert.ErrorIs(t, err, domain.ErrGeneration)
}
