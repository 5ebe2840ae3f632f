// Package analytics records chat interactions and summarizes them.
package analytics

import (
	"context"
	"fmt"
	"time"

	"supportbot/internal/domain"
)

// Logger builds interaction records and hands them to a Sink.
type Logger struct {
	sink Sink
	now  func() time.Time
}

func NewLogger(sink Sink) *Logger {
	return &Logger{sink: sink, now: time.Now}
}

// LogInteraction appends one record. An empty category is derived from the query.
// Errors wrap domain.ErrLogIO; callers are expected to report and continue.
func (l *Logger) LogInteraction(ctx context.Context, query, response string, contextDocs []domain.SearchResult, category domain.Category) error {
	if category == "" {
		category = Categorize(query)
	}
	rec := domain.InteractionLog{
		Timestamp:      l.now(),
		Query:          query,
		Response:       response,
		Category:       category,
		ContextUsed:    len(contextDocs) > 0,
		ContextSources: domain.ContextSources(contextDocs),
	}
	if err := l.sink.Append(ctx, rec); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrLogIO, err)
	}
	return nil
}

// GetAnalytics never fails: read or parse problems yield a zeroed report with Error set.
func (l *Logger) GetAnalytics(ctx context.Context) Report {
	r, err := l.sink.Report(ctx)
	if err != nil {
		r = emptyReport()
		r.Error = err.Error()
	}
	return r
}

func (l *Logger) Close() error { return l.sink.Close() }
