package memory

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Hit is a position in the index and its inner-product score against the query.
type Hit struct {
	Index int
	Score float32
}

// Storage is an exact inner-product index using brute-force search.
// Vectors are expected to be L2-normalized, which makes the score a cosine similarity.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float32
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	return nil
}

// Add appends vectors; their positions continue from the current length.
func (s *Storage) Add(vectors [][]float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range vectors {
		if len(v) != s.dimension {
			return fmt.Errorf("vector %d: dimension %d, index has %d", i, len(v), s.dimension)
		}
	}
	s.vectors = append(s.vectors, vectors...)
	return nil
}

// Search returns the min(topK, Len()) best hits by descending score. Equal scores keep index order.
func (s *Storage) Search(vector []float32, topK int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(vector) != s.dimension {
		return nil, fmt.Errorf("query dimension %d, index has %d", len(vector), s.dimension)
	}
	if topK <= 0 {
		return nil, nil
	}
	scores := make([]float32, len(s.vectors))
	for i := range s.vectors {
		scores[i] = Dot(s.vectors[i], vector)
	}
	idxs := argsortDesc(scores)
	topK = min(topK, len(idxs))
	hits := make([]Hit, 0, topK)
	for _, j := range idxs[:topK] {
		hits = append(hits, Hit{Index: j, Score: scores[j]})
	}
	return hits, nil
}

func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors)
}

func (s *Storage) Dimension() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimension
}

// Vectors returns the stored rows in index order. Callers must not modify them.
func (s *Storage) Vectors() [][]float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.vectors
}

func Dot(a, b []float32) float32 {
	n := min(len(a), len(b))
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize scales v to unit length in place. The zero vector is left as is.
func Normalize(v []float32) []float32 {
	var sq float64
	for _, x := range v {
		sq += float64(x) * float64(x)
	}
	if sq == 0 {
		return v
	}
	n := float32(math.Sqrt(sq))
	for i := range v {
		v[i] /= n
	}
	return v
}

func argsortDesc(vals []float32) []int {
	idxs := make([]int, len(vals))
	for i := range vals {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool { return vals[idxs[a]] > vals[idxs[b]] })
	return idxs
}
