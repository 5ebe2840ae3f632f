package knowledge

import (
	"fmt"
	"strings"

	"github.com/xlab/treeprint"

	"supportbot/internal/domain"
)

// Outline renders documents as a tree: FAQ questions, then documentation
// sources with their chunk counts, both in first-seen order.
func Outline(docs []domain.Document) string {
	tree := treeprint.NewWithRoot(fmt.Sprintf("knowledge base (%d documents)", len(docs)))

	var (
		faqs       []string
		sources    []string
		chunkCount = map[string]int{}
	)
	for _, d := range docs {
		switch d.Type {
		case domain.DocTypeFAQ:
			faqs = append(faqs, faqQuestion(d.Content))
		default:
			if _, ok := chunkCount[d.Source]; !ok {
				sources = append(sources, d.Source)
			}
			chunkCount[d.Source]++
		}
	}
	if len(faqs) > 0 {
		branch := tree.AddBranch(fmt.Sprintf("FAQ (%d)", len(faqs)))
		for _, q := range faqs {
			branch.AddNode(q)
		}
	}
	if len(sources) > 0 {
		branch := tree.AddBranch(fmt.Sprintf("Documentation (%d chunks)", len(docs)-len(faqs)))
		for _, s := range sources {
			branch.AddNode(fmt.Sprintf("%s (%d)", s, chunkCount[s]))
		}
	}
	return tree.String()
}

func faqQuestion(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimPrefix(first, "Question: ")
}
