package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStorage(t *testing.T, vectors ...[]float32) *Storage {
	t.Helper()
	s := NewStorage()
	require.NoError(t, s.Init(len(vectors[0])))
	require.NoError(t, s.Add(vectors))
	return s
}

func TestInitRejectsBadDimension(t *testing.T) {
	assert.Error(t, NewStorage().Init(0))
}

func TestAddRejectsDimensionMismatch(t *testing.T) {
	s := NewStorage()
	require.NoError(t, s.Init(2))
	assert.Error(t, s.Add([][]float32{{1, 0}, {1, 0, 0}}))
	assert.Zero(t, s.Len())
}

func TestSearchOrdersByScore(t *testing.T) {
	s := newStorage(t, []float32{1, 0}, []float32{0, 1}, []float32{0.6, 0.8})

	hits, err := s.Search([]float32{0, 1}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 1, hits[0].Index)
	assert.Equal(t, 2, hits[1].Index)
	assert.InDelta(t, 0.8, hits[1].Score, 1e-6)
}

func TestSearchClampsTopK(t *testing.T) {
	s := newStorage(t, []float32{1, 0}, []float32{0, 1})

	hits, err := s.Search([]float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	hits, err = s.Search([]float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestSearchTiesKeepIndexOrder(t *testing.T) {
	s := newStorage(t, []float32{0, 1}, []float32{1, 0}, []float32{1, 0}, []float32{1, 0})

	hits, err := s.Search([]float32{1, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{hits[0].Index, hits[1].Index, hits[2].Index})
}

func TestSearchDimensionMismatch(t *testing.T) {
	s := newStorage(t, []float32{1, 0})
	_, err := s.Search([]float32{1, 0, 0}, 1)
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []float32{0.6, 0.8}, Normalize([]float32{3, 4}))
	assert.Equal(t, []float32{0, 0}, Normalize([]float32{0, 0}))
}
