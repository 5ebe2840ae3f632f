package analytics

import (
	"context"
	"fmt"

	"supportbot/internal/domain"
)

// Sink persists interaction records and aggregates them.
type Sink interface {
	Append(ctx context.Context, rec domain.InteractionLog) error
	Report(ctx context.Context) (Report, error)
	Close() error
}

// OpenSink opens the sink for the configured backend ("json" or "sqlite").
func OpenSink(backend, path string) (Sink, error) {
	switch backend {
	case "", "json":
		s, err := NewJSONFileSink(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLiteSink(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown analytics backend %q", backend)
	}
}
