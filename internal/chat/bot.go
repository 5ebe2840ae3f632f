// Package chat wires retrieval, generation and analytics into one turn of conversation.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"supportbot/internal/domain"
)

// DefaultTopK is how many context documents a query retrieves before the relevance cutoff.
const DefaultTopK = 3

// ResetMessage is the status returned by ResetChat.
const ResetMessage = "Chat history reset successfully"

var ErrEmptyQuery = errors.New("empty query")

// KnowledgeBase is the retrieval side: a persisted index that can be loaded or built.
type KnowledgeBase interface {
	LoadIndex(ctx context.Context) error
	LoadDocuments(ctx context.Context, paths ...string) error
	BuildIndex(ctx context.Context) error
	Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error)
}

// Responder generates answers and owns the conversation history.
type Responder interface {
	GenerateResponse(ctx context.Context, query string, contextDocs []domain.SearchResult) (string, error)
	Reset()
}

// InteractionLogger records interactions. Its errors never reach the user.
type InteractionLogger interface {
	LogInteraction(ctx context.Context, query, response string, contextDocs []domain.SearchResult, category domain.Category) error
}

// Result is the answer to one query with the documents it was grounded on.
type Result struct {
	Response    string                `json:"response"`
	ContextDocs []domain.SearchResult `json:"context_docs"`
}

type Status struct {
	Status string `json:"status"`
}

// Bot handles one conversation. Queries on a Bot run one at a time; separate
// conversations get separate Bots via Fork.
type Bot struct {
	kb        KnowledgeBase
	responder Responder
	logger    InteractionLogger
	sources   []string
	topK      int

	mu sync.Mutex
}

type Option func(*Bot)

// WithTopK overrides DefaultTopK.
func WithTopK(k int) Option {
	return func(b *Bot) {
		if k > 0 {
			b.topK = k
		}
	}
}

// WithSources sets the FAQ and documentation files used when the index has to be built.
func WithSources(paths ...string) Option {
	return func(b *Bot) { b.sources = paths }
}

func New(kb KnowledgeBase, responder Responder, logger InteractionLogger, opts ...Option) *Bot {
	b := &Bot{kb: kb, responder: responder, logger: logger, topK: DefaultTopK}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Fork returns a Bot sharing this one's knowledge base and analytics with its own responder.
func (b *Bot) Fork(responder Responder) *Bot {
	return &Bot{kb: b.kb, responder: responder, logger: b.logger, sources: b.sources, topK: b.topK}
}

// InitializeKnowledgeBase loads the persisted index, building it from the configured
// sources when there is none or the stored one is unusable.
func (b *Bot) InitializeKnowledgeBase(ctx context.Context) error {
	err := b.kb.LoadIndex(ctx)
	switch {
	case err == nil:
		slog.Info("knowledge base loaded")
		return nil
	case errors.Is(err, domain.ErrIndexNotFound):
		slog.Info("building knowledge base", "sources", b.sources)
	case errors.Is(err, domain.ErrIndexCorrupt):
		slog.Warn("stored index unusable, rebuilding", "error", err)
	default:
		return err
	}
	if err := b.kb.LoadDocuments(ctx, b.sources...); err != nil {
		return fmt.Errorf("load knowledge sources: %w", err)
	}
	if err := b.kb.BuildIndex(ctx); err != nil {
		return fmt.Errorf("build index: %w", err)
	}
	return nil
}

// ProcessQuery runs one turn: search, generate, then log. Retrieval and generation
// failures abort the turn; a logging failure is only reported.
func (b *Bot) ProcessQuery(ctx context.Context, query string) (Result, error) {
	if strings.TrimSpace(query) == "" {
		return Result{}, ErrEmptyQuery
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	docs, err := b.kb.Search(ctx, query, b.topK)
	if err != nil {
		return Result{}, fmt.Errorf("retrieve context: %w", err)
	}
	response, err := b.responder.GenerateResponse(ctx, query, docs)
	if err != nil {
		return Result{}, err
	}
	if b.logger != nil {
		if err := b.logger.LogInteraction(ctx, query, response, docs, ""); err != nil {
			slog.Warn("interaction not logged", "error", err)
		}
	}
	return Result{Response: response, ContextDocs: docs}, nil
}

// ResetChat clears the conversation history. Analytics and the index are kept.
func (b *Bot) ResetChat() Status {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.responder.Reset()
	return Status{Status: ResetMessage}
}
