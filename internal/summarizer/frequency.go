// Package summarizer produces short extractive overviews of the knowledge base.
package summarizer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"supportbot/internal/chunker"
	"supportbot/internal/domain"
)

// FrequencySummarizer ranks sentences by the normalized frequency of their
// non-stopword terms and keeps the best ones in their original order.
type FrequencySummarizer struct {
	tokenPattern *regexp.Regexp
	splitter     *chunker.SentenceChunker
	stopwords    map[string]struct{}
}

func NewFrequencySummarizer() *FrequencySummarizer {
	return &FrequencySummarizer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		splitter:     chunker.NewSentenceChunker(1, 0),
		stopwords:    defaultStopwords(),
	}
}

// SummarizeDocuments summarizes documentation chunks. FAQ entries are skipped:
// their question/answer framing would dominate the term counts.
func (s *FrequencySummarizer) SummarizeDocuments(docs []domain.Document, maxSentences int) string {
	var b strings.Builder
	for _, d := range docs {
		if d.Type != domain.DocTypeDoc {
			continue
		}
		b.WriteString(d.Content)
		b.WriteString("\n")
	}
	return s.Summarize(b.String(), maxSentences)
}

// Summarize returns at most maxSentences sentences of text.
func (s *FrequencySummarizer) Summarize(text string, maxSentences int) string {
	if maxSentences <= 0 {
		maxSentences = 3
	}
	sentences := s.splitter.Sentences(text)
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, " ")
	}
	freq := map[string]float64{}
	for _, sent := range sentences {
		for _, tok := range s.tokens(sent) {
			freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range freq {
		maxF = math.Max(maxF, v)
	}
	if maxF > 0 {
		for k, v := range freq {
			freq[k] = v / maxF
		}
	}

	type pair struct {
		idx   int
		score float64
	}
	scores := make([]pair, len(sentences))
	for i, sent := range sentences {
		toks := s.tokens(sent)
		score := 0.0
		for _, tok := range toks {
			score += freq[tok]
		}
		if len(toks) > 0 {
			score /= math.Sqrt(float64(len(toks)))
		}
		scores[i] = pair{i, score}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })

	selected := make([]int, maxSentences)
	for i := range selected {
		selected[i] = scores[i].idx
	}
	sort.Ints(selected)
	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = sentences[idx]
	}
	return strings.Join(out, " ")
}

func (s *FrequencySummarizer) tokens(text string) []string {
	raw := s.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, stop := s.stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
		"we", "our", "you", "your", "i", "my",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
