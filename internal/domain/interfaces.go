package domain

import "time"

// DocType distinguishes FAQ entries from documentation chunks.
type DocType string

const (
	DocTypeFAQ DocType = "faq"
	DocTypeDoc DocType = "doc"
)

// Document is a single retrievable passage of the knowledge base.
type Document struct {
	Content string  `json:"content"`
	Source  string  `json:"source"`
	Type    DocType `json:"type"`
}

// SearchResult represents a matching document with its cosine similarity.
type SearchResult struct {
	Document Document `json:"document"`
	Score    float32  `json:"score"`
}

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message of the rolling conversation history.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Category is the keyword-derived topic of a query.
type Category string

const (
	CategoryShipping Category = "shipping"
	CategoryReturns  Category = "returns"
	CategoryProduct  Category = "product"
	CategoryAccount  Category = "account"
	CategoryPayment  Category = "payment"
	CategoryGeneral  Category = "general"
	CategoryOther    Category = "other"
)

// InteractionLog is one persisted chat exchange.
type InteractionLog struct {
	Timestamp      time.Time `json:"timestamp"`
	Query          string    `json:"query"`
	Response       string    `json:"response"`
	Category       Category  `json:"category"`
	ContextUsed    bool      `json:"context_used"`
	ContextSources []string  `json:"context_sources"`
}

// ContextSources returns the distinct sources of results in first-seen order.
func ContextSources(results []SearchResult) []string {
	out := make([]string, 0, len(results))
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if _, ok := seen[r.Document.Source]; ok {
			continue
		}
		seen[r.Document.Source] = struct{}{}
		out = append(out, r.Document.Source)
	}
	return out
}
