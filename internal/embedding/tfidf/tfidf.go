// Package tfidf is the offline embedder: a vocabulary and IDF weights fitted to
// the knowledge base itself, so no model download or API key is needed.
package tfidf

import (
	"context"
	"errors"
	"math"
	"regexp"
	"slices"
	"strings"
	"sync"
)

var (
	errNotPrepared = errors.New("tfidf embedder not prepared")
	errNoTerms     = errors.New("tfidf: corpus has no indexable terms")

	tokenRe = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`)
)

// model is one fit over a corpus. It is never mutated after fit returns.
type model struct {
	vocab []string
	terms map[string]int
	idf   []float64
}

// Embedder is a TF-IDF vectorizer. The fit depends only on the corpus, so
// preparing over the same documents reproduces the vectors of a persisted index.
// A failed Prepare keeps the previous fit.
type Embedder struct {
	mu sync.RWMutex
	m  *model
}

func NewEmbedder() *Embedder { return &Embedder{} }

func (e *Embedder) Name() string { return "tfidf" }

// Prepare fits the vocabulary and smoothed IDF weights to corpus.
func (e *Embedder) Prepare(corpus []string) error {
	m, err := fit(corpus)
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.m = m
	e.mu.Unlock()
	return nil
}

func fit(corpus []string) (*model, error) {
	if len(corpus) == 0 {
		return nil, errNoTerms
	}
	df := map[string]int{}
	for _, text := range corpus {
		for term := range termCounts(text) {
			df[term]++
		}
	}
	if len(df) == 0 {
		return nil, errNoTerms
	}
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	slices.Sort(vocab)

	n := float64(len(corpus))
	m := &model{vocab: vocab, terms: make(map[string]int, len(vocab)), idf: make([]float64, len(vocab))}
	for i, term := range vocab {
		m.terms[term] = i
		m.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return m, nil
}

// Dimension is the vocabulary size, zero before Prepare.
func (e *Embedder) Dimension() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.m == nil {
		return 0
	}
	return len(e.m.idf)
}

// Embed returns the L2-normalized TF-IDF vector of text. Text sharing no term
// with the corpus maps to the zero vector.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	e.mu.RLock()
	m := e.m
	e.mu.RUnlock()
	if m == nil {
		return nil, errNotPrepared
	}
	return m.vector(text), nil
}

// EmbedBatch embeds texts in order against a single fit.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.mu.RLock()
	m := e.m
	e.mu.RUnlock()
	if m == nil {
		return nil, errNotPrepared
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = m.vector(t)
	}
	return out, nil
}

func (m *model) vector(text string) []float32 {
	out := make([]float32, len(m.idf))
	counts := termCounts(text)
	idx := make([]int, 0, len(counts))
	total := 0
	for term, c := range counts {
		if i, ok := m.terms[term]; ok {
			idx = append(idx, i)
			total += c
		}
	}
	if total == 0 {
		return out
	}
	// Fixed summation order keeps vectors bit-identical across fits.
	slices.Sort(idx)
	weights := make([]float64, len(idx))
	var sumSq float64
	for k, i := range idx {
		weights[k] = float64(counts[m.vocab[i]]) / float64(total) * m.idf[i]
		sumSq += weights[k] * weights[k]
	}
	norm := math.Sqrt(sumSq)
	for k, i := range idx {
		out[i] = float32(weights[k] / norm)
	}
	return out
}

// termCounts lower-cases text, drops stopwords and counts what remains.
func termCounts(text string) map[string]int {
	counts := map[string]int{}
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		if _, stop := stopwords[tok]; stop {
			continue
		}
		counts[tok]++
	}
	return counts
}

var stopwords = func() map[string]struct{} {
	words := strings.Fields(`a an the and or but if then else for to of in on at by with as
		is are was were be been being it this that these those from up down over under
		again further than so such into about between through during before after above
		below out off own same too very can will just don should now
		i my me you your do does how what where when`)
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}()
