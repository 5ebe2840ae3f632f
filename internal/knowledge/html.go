package knowledge

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/net/html"

	"supportbot/internal/chunker"
	"supportbot/internal/domain"
)

// skippedElements carry no readable documentation text.
var skippedElements = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"nav": true, "footer": true, "svg": true, "template": true,
}

var blockElements = map[string]bool{
	"p": true, "div": true, "li": true, "tr": true, "br": true, "section": true,
	"article": true, "blockquote": true, "pre": true, "dd": true, "dt": true,
}

// HTMLSections extracts the readable text of an HTML page, split at h1-h6.
func HTMLSections(r io.Reader) ([]Section, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
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
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if skippedElements[n.Data] {
				return
			}
			if isHeading(n.Data) {
				flush()
				heading = strings.Join(strings.Fields(textOf(n)), " ")
				return
			}
		}
		if n.Type == html.TextNode {
			body.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			body.WriteByte('\n')
		}
	}
	walk(doc)
	flush()
	return sections, nil
}

func isHeading(tag string) bool {
	return len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6'
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// LoadHTML reads an HTML help page and chunks its text per heading section.
func LoadHTML(path string, c *chunker.SentenceChunker) ([]domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read documentation: %w", err)
	}
	defer f.Close()
	sections, err := HTMLSections(f)
	if err != nil {
		return nil, fmt.Errorf("parse html %s: %w", path, err)
	}
	return chunkSections(sections, c), nil
}
