package analytics

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"supportbot/internal/domain"
)

//go:embed migrations/001_interactions.sql
var schema string

// SQLiteSink stores one row per interaction and aggregates in SQL.
type SQLiteSink struct {
	db *sql.DB
}

// OpenSQLiteSink opens (or creates) the database at path.
// Pass ":memory:" for an in-memory database.
func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("%w: creating data directory: %w", domain.ErrLogIO, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %w", domain.ErrLogIO, err)
	}
	// Single connection avoids "database is locked" and keeps :memory: a single database.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: setting busy timeout: %w", domain.ErrLogIO, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: applying schema: %w", domain.ErrLogIO, err)
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Append(ctx context.Context, rec domain.InteractionLog) error {
	sources, err := json.Marshal(rec.ContextSources)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO interactions (timestamp, query, response, category, context_used, context_sources)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.UTC().Format(time.RFC3339Nano), rec.Query, rec.Response, string(rec.Category), rec.ContextUsed, string(sources))
	if err != nil {
		return fmt.Errorf("inserting interaction: %w", err)
	}
	return nil
}

func (s *SQLiteSink) Report(ctx context.Context) (Report, error) {
	r := emptyReport()
	rows, err := s.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM interactions GROUP BY category`)
	if err != nil {
		return r, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return emptyReport(), fmt.Errorf("scanning categories: %w", err)
		}
		r.CategoryDistribution[domain.Category(cat)] = n
		r.TotalInteractions += n
	}
	if err := rows.Err(); err != nil {
		return emptyReport(), err
	}

	var with sql.NullInt64
	err = s.db.QueryRowContext(ctx, `SELECT SUM(CASE WHEN context_used THEN 1 ELSE 0 END) FROM interactions`).Scan(&with)
	if err != nil {
		return emptyReport(), fmt.Errorf("querying context usage: %w", err)
	}
	r.ContextUsage.WithContext = int(with.Int64)
	r.ContextUsage.WithoutContext = r.TotalInteractions - r.ContextUsage.WithContext
	return r, nil
}

func (s *SQLiteSink) Close() error { return s.db.Close() }
