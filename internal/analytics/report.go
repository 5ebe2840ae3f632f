package analytics

import "supportbot/internal/domain"

// ContextUsage splits interactions by whether retrieval found any context.
type ContextUsage struct {
	WithContext    int `json:"with_context"`
	WithoutContext int `json:"without_context"`
}

// Report aggregates the interaction log.
type Report struct {
	TotalInteractions    int                     `json:"total_interactions"`
	CategoryDistribution map[domain.Category]int `json:"category_distribution"`
	ContextUsage         ContextUsage            `json:"context_usage"`
	Error                string                  `json:"error,omitempty"`
}

func emptyReport() Report {
	return Report{CategoryDistribution: map[domain.Category]int{}}
}

func aggregate(records []domain.InteractionLog) Report {
	r := emptyReport()
	for _, rec := range records {
		r.TotalInteractions++
		r.CategoryDistribution[rec.Category]++
		if rec.ContextUsed {
			r.ContextUsage.WithContext++
		} else {
			r.ContextUsage.WithoutContext++
		}
	}
	return r
}
