package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"supportbot/internal/domain"
)

// JSONFileSink stores the whole log as one JSON array, rewritten on every append.
// Appends within the process are serialized; separate processes writing the same
// file are not coordinated.
type JSONFileSink struct {
	path string
	mu   sync.Mutex
}

// NewJSONFileSink creates the log file holding an empty array if it does not exist.
func NewJSONFileSink(path string) (*JSONFileSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLogIO, err)
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(path, []byte("[]\n"), 0o644); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrLogIO, err)
		}
	}
	return &JSONFileSink{path: path}, nil
}

func (s *JSONFileSink) Append(ctx context.Context, rec domain.InteractionLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return err
	}
	records = append(records, rec)
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func (s *JSONFileSink) Report(ctx context.Context) (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.read()
	if err != nil {
		return emptyReport(), err
	}
	return aggregate(records), nil
}

// Records returns every logged interaction in append order.
func (s *JSONFileSink) Records() ([]domain.InteractionLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *JSONFileSink) Close() error { return nil }

func (s *JSONFileSink) read() ([]domain.InteractionLog, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var records []domain.InteractionLog
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", s.path, err)
	}
	return records, nil
}
