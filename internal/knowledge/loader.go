package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"supportbot/internal/chunker"
	"supportbot/internal/domain"
)

// Loader turns knowledge base source files into documents, dispatching on file extension.
type Loader struct {
	chunker *chunker.SentenceChunker
}

func NewLoader(c *chunker.SentenceChunker) *Loader {
	if c == nil {
		c = chunker.NewSentenceChunker(5, 1)
	}
	return &Loader{chunker: c}
}

// Load parses every path in order and concatenates the documents. It does not deduplicate.
func (l *Loader) Load(ctx context.Context, paths ...string) ([]domain.Document, error) {
	var docs []domain.Document
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d, err := l.loadFile(p)
		if err != nil {
			return nil, err
		}
		docs = append(docs, d...)
	}
	return docs, nil
}

func (l *Loader) loadFile(path string) ([]domain.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadFAQs(path)
	case ".md", ".markdown", ".txt":
		return LoadDocumentation(path, l.chunker)
	case ".html", ".htm":
		return LoadHTML(path, l.chunker)
	case ".pdf":
		return LoadPDF(path, l.chunker)
	default:
		return nil, fmt.Errorf("unsupported knowledge source %q", path)
	}
}
