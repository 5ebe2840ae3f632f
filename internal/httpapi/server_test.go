package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/analytics"
	"supportbot/internal/chat"
	"supportbot/internal/domain"
)

type fakeBot struct {
	history []string
	err     error
}

func (b *fakeBot) ProcessQuery(_ context.Context, q string) (chat.Result, error) {
	if b.err != nil {
		return chat.Result{}, b.err
	}
	if q == "" {
		return chat.Result{}, chat.ErrEmptyQuery
	}
	b.history = append(b.history, q)
	return chat.Result{Response: q + "!", ContextDocs: []domain.SearchResult{
		{Document: domain.Document{Content: "c", Source: "FAQ", Type: domain.DocTypeFAQ}, Score: 0.75},
	}}, nil
}

func (b *fakeBot) ResetChat() chat.Status {
	b.history = nil
	return chat.Status{Status: chat.ResetMessage}
}

type fakeAnalytics struct{}

func (fakeAnalytics) GetAnalytics(context.Context) analytics.Report {
	return analytics.Report{TotalInteractions: 2, CategoryDistribution: map[domain.Category]int{domain.CategoryShipping: 2}}
}

type harness struct {
	handler http.Handler
	bots    []*fakeBot
	err     error
}

func newHarness() *harness {
	h := &harness{}
	h.handler = NewHandler(Deps{
		NewBot: func() Bot {
			b := &fakeBot{err: h.err}
			h.bots = append(h.bots, b)
			return b
		},
		Analytics: fakeAnalytics{},
	})
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := newHarness().do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestChatCreatesAndReusesSession(t *testing.T) {
	h := newHarness()

	rec := h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	var first chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))
	assert.NotEmpty(t, first.SessionID)
	assert.Equal(t, "hello!", first.Response)
	require.Len(t, first.ContextDocs, 1)
	assert.Equal(t, "FAQ", first.ContextDocs[0].Document.Source)

	rec = h.do(t, http.MethodPost, "/api/chat", map[string]string{"session_id": first.SessionID, "query": "again"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.bots, 1)
	assert.Equal(t, []string{"hello", "again"}, h.bots[0].history)

	rec = h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "other user"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, h.bots, 2)
}

func TestChatErrors(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewBufferString("{"))
	rr := httptest.NewRecorder()
	h.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	h.err = domain.ErrGeneration
	rec = h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "hi"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "api_error")
}

func TestChatBlankQueryKeepsSessions(t *testing.T) {
	h := &harness{}
	h.handler = NewHandler(Deps{
		NewBot: func() Bot {
			b := &fakeBot{}
			h.bots = append(h.bots, b)
			return b
		},
		Analytics:   fakeAnalytics{},
		MaxSessions: 1,
	})

	rec := h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	var first chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	for _, q := range []string{"", "   ", "\n\t"} {
		rec = h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": q})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "invalid_request_error")
	}
	assert.Len(t, h.bots, 1)

	rec = h.do(t, http.MethodPost, "/api/chat", map[string]string{"session_id": first.SessionID, "query": "again"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, h.bots, 1)
	assert.Equal(t, []string{"hello", "again"}, h.bots[0].history)
}

func TestReset(t *testing.T) {
	h := newHarness()
	rec := h.do(t, http.MethodPost, "/api/chat", map[string]string{"query": "hello"})
	var first chatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &first))

	for i := 0; i < 2; i++ {
		rec = h.do(t, http.MethodPost, "/api/reset", map[string]string{"session_id": first.SessionID})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"status":"Chat history reset successfully"}`, rec.Body.String())
	}
	assert.Empty(t, h.bots[0].history)

	rec = h.do(t, http.MethodPost, "/api/reset", map[string]string{"session_id": "unknown"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/reset", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalytics(t *testing.T) {
	rec := newHarness().do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_interactions":2,"category_distribution":{"shipping":2},"context_usage":{"with_context":0,"without_context":0}}`, rec.Body.String())
}

func TestSessionEviction(t *testing.T) {
	n := 0
	s := newSessionStore(func() Bot { n++; return &fakeBot{} }, 2)
	a, _ := s.get("")
	s.get("")
	s.get(a)
	s.get("")

	assert.Equal(t, 2, s.count())
	_, ok := s.lookup(a)
	assert.True(t, ok)
	assert.Equal(t, 3, n)
}
