// Package memory provides an in-memory ReportStore for tests and
// ephemeral runs. Nothing survives process exit.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
)

// Ensure ReportStore implements the interface.
var _ driven.ReportStore = (*ReportStore)(nil)

// ReportStore keeps analysis runs in a map guarded by a mutex.
type ReportStore struct {
	mu   sync.RWMutex
	runs map[string]domain.AnalysisRun
}

// NewReportStore creates an empty in-memory report store.
func NewReportStore() *ReportStore {
	return &ReportStore{runs: make(map[string]domain.AnalysisRun)}
}

// SaveRun persists a completed run.
func (s *ReportStore) SaveRun(_ context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("save run: missing run ID: %w", domain.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[run.ID] = *run
	return nil
}

// GetRun returns a run by ID, or domain.ErrNotFound.
func (s *ReportStore) GetRun(_ context.Context, id string) (*domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	return &run, nil
}

// ListRuns returns run summaries, newest first.
func (s *ReportStore) ListRuns(_ context.Context, limit int) ([]domain.AnalysisRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := make([]domain.AnalysisRun, 0, len(s.runs))
	for _, run := range s.runs {
		summary := run
		summary.Results = nil
		summary.Clusters = nil
		runs = append(runs, summary)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// Close releases resources.
func (s *ReportStore) Close() error {
	return nil
}
