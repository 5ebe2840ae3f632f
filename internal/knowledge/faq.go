package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"supportbot/internal/domain"
)

// FAQ is one question/answer pair of the FAQ file.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type faqFile struct {
	FAQs []FAQ `json:"faqs"`
}

// FAQSource is the source label given to every FAQ document.
const FAQSource = "FAQ"

// LoadFAQs parses a FAQ file of the form {"faqs":[{"question":..,"answer":..}]}
// into one document per pair, in file order.
func LoadFAQs(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read faq file: %w", err)
	}
	var f faqFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse faq file %s: %w", path, err)
	}
	docs := make([]domain.Document, 0, len(f.FAQs))
	for i, faq := range f.FAQs {
		if strings.TrimSpace(faq.Question) == "" && strings.TrimSpace(faq.Answer) == "" {
			return nil, fmt.Errorf("parse faq file %s: entry %d is empty", path, i)
		}
		docs = append(docs, FAQDocument(faq))
	}
	return docs, nil
}

// FAQDocument renders a pair the way it is embedded and shown as context.
func FAQDocument(faq FAQ) domain.Document {
	return domain.Document{
		Content: fmt.Sprintf("Question: %s\nAnswer: %s", faq.Question, faq.Answer),
		Source:  FAQSource,
		Type:    domain.DocTypeFAQ,
	}
}
