package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/domain"
)

func doc(text string) domain.Document {
	return domain.Document{Content: text, Source: "Documentation: Shipping", Type: domain.DocTypeDoc}
}

func TestChunkWithOverlap(t *testing.T) {
	c := NewSentenceChunker(2, 1)
	chunks := c.Chunk(doc("One. Two! Three? Four."))

	require.Len(t, chunks, 3)
	assert.Equal(t, "One. Two!", chunks[0].Content)
	assert.Equal(t, "Two! Three?", chunks[1].Content)
	assert.Equal(t, "Three? Four.", chunks[2].Content)
	for _, ch := range chunks {
		assert.Equal(t, "Documentation: Shipping", ch.Source)
		assert.Equal(t, domain.DocTypeDoc, ch.Type)
	}
}

func TestChunkKeepsTrailingFragment(t *testing.T) {
	c := NewSentenceChunker(5, 0)
	chunks := c.Chunk(doc("Orders ship daily. Contact support for help"))

	require.Len(t, chunks, 1)
	assert.Equal(t, "Orders ship daily. Contact support for help", chunks[0].Content)
}

func TestChunkCollapsesWhitespace(t *testing.T) {
	c := NewSentenceChunker(5, 0)
	chunks := c.Chunk(doc("Line one\ncontinues here.\n\n  Next   one."))

	require.Len(t, chunks, 1)
	assert.Equal(t, "Line one continues here. Next one.", chunks[0].Content)
}

func TestChunkEmptyText(t *testing.T) {
	c := NewSentenceChunker(5, 1)
	assert.Empty(t, c.Chunk(doc("   \n\t ")))
}

func TestInvalidOverlapIsReset(t *testing.T) {
	c := NewSentenceChunker(2, 2)
	chunks := c.Chunk(doc("A. B. C. D."))
	require.Len(t, chunks, 2)
	assert.Equal(t, "A. B.", chunks[0].Content)
	assert.Equal(t, "C. D.", chunks[1].Content)
}
