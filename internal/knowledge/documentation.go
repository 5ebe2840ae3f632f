package knowledge

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"supportbot/internal/chunker"
	"supportbot/internal/domain"
)

// DocumentationSource is the source label of documentation chunks; chunks under
// a heading get "Documentation: <heading>".
const DocumentationSource = "Documentation"

// Section is a run of documentation text under one heading.
type Section struct {
	Heading string
	Body    string
}

// SplitSections splits Markdown text at ATX headings (#, ##, ...). Text before
// the first heading forms a section with an empty heading. Sections with an
// empty body are dropped.
func SplitSections(text string) []Section {
	var (
		sections []Section
		heading  string
		body     strings.Builder
	)
	flush := func() {
		if b := strings.TrimSpace(body.String()); b != "" {
			sections = append(sections, Section{Heading: heading, Body: b})
		}
		body.Reset()
	}
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if h, ok := parseHeading(line); ok {
			flush()
			heading = h
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	flush()
	return sections
}

func parseHeading(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	level := 0
	for level < len(trimmed) && trimmed[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return "", false
	}
	rest := trimmed[level:]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return "", false
	}
	return strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#")), true
}

// ChunkDocumentation turns free documentation text into sentence chunks, one
// heading section at a time so chunks never straddle headings.
func ChunkDocumentation(text string, c *chunker.SentenceChunker) []domain.Document {
	return chunkSections(SplitSections(text), c)
}

func chunkSections(sections []Section, c *chunker.SentenceChunker) []domain.Document {
	var docs []domain.Document
	for _, s := range sections {
		source := DocumentationSource
		if s.Heading != "" {
			source = DocumentationSource + ": " + s.Heading
		}
		docs = append(docs, c.Chunk(domain.Document{Content: s.Body, Source: source, Type: domain.DocTypeDoc})...)
	}
	return docs
}

// LoadDocumentation reads a .md/.txt file and chunks it.
func LoadDocumentation(path string, c *chunker.SentenceChunker) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read documentation: %w", err)
	}
	return ChunkDocumentation(string(data), c), nil
}

// LoadPDF extracts the plain text of a PDF and chunks it like any other documentation.
func LoadPDF(path string, c *chunker.SentenceChunker) ([]domain.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()
	plain, err := r.GetPlainText()
	if err != nil {
		return nil, fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return nil, fmt.Errorf("extract pdf text %s: %w", path, err)
	}
	return ChunkDocumentation(buf.String(), c), nil
}
