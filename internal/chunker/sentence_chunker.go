package chunker

import (
	"regexp"
	"strings"

	"supportbot/internal/domain"
)

// SentenceChunker splits a document into sentence-based chunks with overlap.
// Every chunk keeps the source and type of the document it came from.
type SentenceChunker struct {
	sentencesPerChunk int
	overlapSentences  int
	splitter          *regexp.Regexp
}

func NewSentenceChunker(sentencesPerChunk, overlapSentences int) *SentenceChunker {
	if sentencesPerChunk <= 0 {
		sentencesPerChunk = 5
	}
	if overlapSentences < 0 || overlapSentences >= sentencesPerChunk {
		overlapSentences = 0
	}
	return &SentenceChunker{
		sentencesPerChunk: sentencesPerChunk,
		overlapSentences:  overlapSentences,
		splitter:          regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`),
	}
}

// Sentences returns the trimmed, non-empty sentences of text in order.
// A trailing fragment without terminal punctuation counts as a sentence.
func (c *SentenceChunker) Sentences(text string) []string {
	raw := c.splitter.FindAllString(text, -1)
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func (c *SentenceChunker) Chunk(document domain.Document) []domain.Document {
	sentences := c.Sentences(document.Content)
	if len(sentences) == 0 {
		return nil
	}
	var chunks []domain.Document
	i := 0
	for i < len(sentences) {
		end := min(i+c.sentencesPerChunk, len(sentences))
		chunks = append(chunks, domain.Document{
			Content: strings.Join(sentences[i:end], " "),
			Source:  document.Source,
			Type:    document.Type,
		})
		if end == len(sentences) {
			break
		}
		i = end - c.overlapSentences
	}
	return chunks
}
