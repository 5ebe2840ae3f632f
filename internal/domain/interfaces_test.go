package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(source string) SearchResult {
	return SearchResult{Document: Document{Content: "c", Source: source, Type: DocTypeDoc}, Score: 0.7}
}

func TestContextSourcesDedupesInOrder(t *testing.T) {
	got := ContextSources([]SearchResult{
		result("Documentation: Returns"),
		result("FAQ"),
		result("Documentation: Returns"),
		result("FAQ"),
	})
	assert.Equal(t, []string{"Documentation: Returns", "FAQ"}, got)
}

func TestContextSourcesEmptyIsNotNil(t *testing.T) {
	got := ContextSources(nil)
	require.NotNil(t, got)
	data, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestInteractionLogKeys(t *testing.T) {
	rec := InteractionLog{
		Timestamp:      time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Query:          "q",
		Response:       "r",
		Category:       CategoryReturns,
		ContextUsed:    true,
		ContextSources: []string{"FAQ"},
	}
	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"timestamp", "query", "response", "category", "context_used", "context_sources"} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, "returns", raw["category"])
}
