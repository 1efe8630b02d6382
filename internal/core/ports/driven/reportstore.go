package driven

import (
	"context"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// ReportStore persists completed analysis runs so results can be compared
// across invocations. This is an optional service - when nil, runs are not
// recorded.
type ReportStore interface {
	// SaveRun persists a completed run with its results and clusters.
	SaveRun(ctx context.Context, run *domain.AnalysisRun) error

	// GetRun returns a run by ID, or domain.ErrNotFound.
	GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error)

	// ListRuns returns run summaries (without results), newest first.
	ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error)

	// Close releases resources.
	Close() error
}
