package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"supportbot/internal/domain"
	"supportbot/internal/embedding"
	"supportbot/internal/knowledge"
	"supportbot/internal/vectorstore/memory"
)

// DefaultMinScore is the relevance cutoff: only results scoring strictly above it are returned.
const DefaultMinScore float32 = 0.5

// Store keeps the document list and the vector index positionally aligned:
// row i of the index is the embedding of documents[i].
// Documents added since the last build wait in pending until BuildIndex.
// The index is read-only between builds; Search is safe for concurrent use.
type Store struct {
	embedder      embedding.Embedder
	loader        *knowledge.Loader
	indexPath     string
	documentsPath string
	minScore      float32

	mu        sync.RWMutex
	documents []domain.Document
	pending   []domain.Document
	index     *memory.Storage
}

type Option func(*Store)

// WithMinScore overrides DefaultMinScore.
func WithMinScore(score float32) Option {
	return func(s *Store) { s.minScore = score }
}

// WithLoader sets the loader used by LoadDocuments and Rebuild.
func WithLoader(l *knowledge.Loader) Option {
	return func(s *Store) { s.loader = l }
}

func New(embedder embedding.Embedder, indexPath, documentsPath string, opts ...Option) *Store {
	s := &Store{
		embedder:      embedder,
		indexPath:     indexPath,
		documentsPath: documentsPath,
		minScore:      DefaultMinScore,
	}
	for _, o := range opts {
		o(s)
	}
	if s.loader == nil {
		s.loader = knowledge.NewLoader(nil)
	}
	return s
}

// LoadDocuments parses the sources and appends their documents in file order.
// Nothing is deduplicated and the index is untouched until BuildIndex.
func (s *Store) LoadDocuments(ctx context.Context, paths ...string) error {
	docs, err := s.loader.Load(ctx, paths...)
	if err != nil {
		return err
	}
	s.AddDocuments(docs...)
	return nil
}

// AddDocuments appends already-parsed documents after the indexed ones.
// They are not searchable, listed or saved until BuildIndex succeeds.
func (s *Store) AddDocuments(docs ...domain.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, docs...)
}

// BuildIndex embeds every loaded document, indexes the normalized vectors and
// persists both artifacts. It replaces any previous index.
func (s *Store) BuildIndex(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	docs := make([]domain.Document, 0, len(s.documents)+len(s.pending))
	docs = append(append(docs, s.documents...), s.pending...)
	return s.buildLocked(ctx, docs)
}

// Rebuild replaces the document list with the given sources and builds a fresh index.
// The current index stays in service if loading or building fails.
func (s *Store) Rebuild(ctx context.Context, paths ...string) error {
	docs, err := s.loader.Load(ctx, paths...)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildLocked(ctx, docs)
}

func (s *Store) buildLocked(ctx context.Context, docs []domain.Document) (err error) {
	if len(docs) == 0 {
		return domain.ErrEmptyCorpus
	}
	if err := s.embedder.Prepare(contentsOf(docs)); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	defer func() {
		// Refit the embedder to the index still in service.
		if err != nil && s.index != nil {
			if perr := s.embedder.Prepare(contentsOf(s.documents)); perr != nil {
				slog.Error("restoring embedder after failed build", "error", perr)
			}
		}
	}()
	vectors, err := s.embedder.EmbedBatch(ctx, contentsOf(docs))
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embed documents: got %d vectors for %d documents", len(vectors), len(docs))
	}
	for _, v := range vectors {
		memory.Normalize(v)
	}
	idx := memory.NewStorage()
	if err := idx.Init(len(vectors[0])); err != nil {
		return err
	}
	if err := idx.Add(vectors); err != nil {
		return err
	}
	if err := writeArtifacts(s.indexPath, s.documentsPath, idx, docs); err != nil {
		return err
	}
	s.documents = docs
	s.pending = nil
	s.index = idx
	slog.Info("knowledge base indexed", "documents", len(docs), "dimension", idx.Dimension(), "embedder", s.embedder.Name())
	return nil
}

// SaveIndex writes the current index and the documents it was built from.
// Pending documents are not written.
func (s *Store) SaveIndex() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return fmt.Errorf("save index: %w", domain.ErrIndexNotFound)
	}
	if s.index.Len() != len(s.documents) {
		return fmt.Errorf("save index: %w: %d vectors for %d documents", domain.ErrIndexCorrupt, s.index.Len(), len(s.documents))
	}
	return writeArtifacts(s.indexPath, s.documentsPath, s.index, s.documents)
}

// LoadIndex restores the persisted index and documents. If either artifact is
// missing it returns ErrIndexNotFound, and on any failure the store is left as it was.
func (s *Store) LoadIndex(ctx context.Context) error {
	ok, err := artifactsExist(s.indexPath, s.documentsPath)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if !ok {
		return domain.ErrIndexNotFound
	}
	idx, err := readIndexFile(s.indexPath)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	docs, err := readDocumentsFile(s.documentsPath)
	if err != nil {
		return fmt.Errorf("load index: %w", err)
	}
	if idx.Len() != len(docs) {
		return fmt.Errorf("load index: %w: %d vectors for %d documents", domain.ErrIndexCorrupt, idx.Len(), len(docs))
	}
	if len(docs) == 0 {
		return fmt.Errorf("load index: %w: no documents", domain.ErrIndexCorrupt)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Corpus-fitted embedders need the same corpus they were built over.
	if err := s.embedder.Prepare(contentsOf(docs)); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}
	if d := s.embedder.Dimension(); d != 0 && d != idx.Dimension() {
		if s.index != nil {
			if perr := s.embedder.Prepare(contentsOf(s.documents)); perr != nil {
				slog.Error("restoring embedder after failed load", "error", perr)
			}
		}
		return fmt.Errorf("load index: %w: index dimension %d, embedder %s produces %d",
			domain.ErrIndexCorrupt, idx.Dimension(), s.embedder.Name(), d)
	}
	s.documents = docs
	s.index = idx
	slog.Debug("knowledge base loaded", "documents", len(docs), "path", s.indexPath)
	return nil
}

// Search returns at most k documents scoring above the relevance cutoff, best first.
// An empty result is not an error.
func (s *Store) Search(ctx context.Context, query string, k int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return nil, domain.ErrIndexNotFound
	}
	if k <= 0 {
		return []domain.SearchResult{}, nil
	}
	q, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.index.Search(memory.Normalize(q), k)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	results := make([]domain.SearchResult, 0, len(hits))
	for _, h := range hits {
		if h.Score <= s.minScore {
			continue
		}
		results = append(results, domain.SearchResult{Document: s.documents[h.Index], Score: h.Score})
	}
	return results, nil
}

// Documents returns a copy of the indexed document list.
func (s *Store) Documents() []domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Document(nil), s.documents...)
}

// Len is the number of indexed documents, zero before a build or load.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.index == nil {
		return 0
	}
	return s.index.Len()
}

// Ready reports whether an index is in service.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index != nil
}

func contentsOf(docs []domain.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.Content
	}
	return out
}
