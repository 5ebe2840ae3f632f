package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/domain"
)

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_GEMINI_KEY", "")
	_, err := NewClient(context.Background(), Config{APIKeyEnv: "TEST_GEMINI_KEY"})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestEmbedBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[0.6,0.8]},{"values":[1,0]}]}`))
	}))
	defer srv.Close()
	t.Setenv("TEST_GEMINI_KEY", "k")

	c, err := NewClient(context.Background(), Config{APIKeyEnv: "TEST_GEMINI_KEY", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, 0, c.Dimension())

	out, err := c.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{0.6, 0.8}, out[0])
	assert.Equal(t, 2, c.Dimension())
}

func TestEmbedBatchCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"embeddings":[{"values":[1,0]}]}`))
	}))
	defer srv.Close()
	t.Setenv("TEST_GEMINI_KEY", "k")

	c, err := NewClient(context.Background(), Config{APIKeyEnv: "TEST_GEMINI_KEY", BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = c.EmbedBatch(context.Background(), []string{"a", "b"})
	assert.Error(t, err)
}
