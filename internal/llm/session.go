package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"supportbot/internal/domain"
)

// DefaultMaxHistoryTurns keeps the last five exchanges.
const DefaultMaxHistoryTurns = 10

// Request is one generation call: a system instruction, the prior turns and the new user query.
type Request struct {
	System  string
	History []domain.Turn
	Query   string
}

// Backend sends a Request to a hosted chat-completion API and returns the model text.
// Implementations hold no conversation state and are safe for concurrent use.
type Backend interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Session owns one conversation's rolling history on top of a shared Backend.
// Calls on a Session are serialized; use one Session per conversation.
type Session struct {
	backend  Backend
	maxTurns int
	timeout  time.Duration

	mu      sync.Mutex
	history []domain.Turn
}

type SessionOption func(*Session)

// WithMaxHistoryTurns sets the history cap. Odd values are rounded up so exchanges stay whole.
func WithMaxHistoryTurns(n int) SessionOption {
	return func(s *Session) {
		if n < 2 {
			return
		}
		s.maxTurns = n + n%2
	}
}

// WithTimeout bounds each generation call. Zero means no bound beyond the caller's context.
func WithTimeout(d time.Duration) SessionOption {
	return func(s *Session) { s.timeout = d }
}

func NewSession(backend Backend, opts ...SessionOption) *Session {
	s := &Session{backend: backend, maxTurns: DefaultMaxHistoryTurns}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GenerateResponse answers query, grounding it on contextDocs when there are any.
// On success the user/model pair is appended and history is trimmed to the cap.
// Provider failures are wrapped in domain.ErrGeneration and leave history untouched.
func (s *Session) GenerateResponse(ctx context.Context, query string, contextDocs []domain.SearchResult) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	req := Request{
		System:  SystemPrompt(contextDocs),
		History: append([]domain.Turn(nil), s.history...),
		Query:   query,
	}
	text, err := s.backend.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", domain.ErrGeneration, s.backend.Name(), err)
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: %s returned an empty response", domain.ErrGeneration, s.backend.Name())
	}

	s.history = append(s.history,
		domain.Turn{Role: domain.RoleUser, Text: query},
		domain.Turn{Role: domain.RoleModel, Text: text},
	)
	if len(s.history) > s.maxTurns {
		s.history = append([]domain.Turn(nil), s.history[len(s.history)-s.maxTurns:]...)
	}
	return text, nil
}

// Reset clears the history. Safe to call on an empty session.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
}

// History returns a copy of the retained turns, oldest first.
func (s *Session) History() []domain.Turn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Turn(nil), s.history...)
}

