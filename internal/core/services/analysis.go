package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure Analysis implements the interface.
var _ driving.AnalysisService = (*Analysis)(nil)

// Analysis orchestrates a full deduplication run: load documents, compute
// the similarity matrix, find duplicate clusters, and record the outcome.
//
// When the primary calculator fails with ErrProviderUnavailable and a
// fallback calculator is configured, the run degrades to the fallback.
// That policy lives here, at the caller level, not inside a calculator.
type Analysis struct {
	loader     driven.DocumentLoader
	calculator driving.SimilarityCalculator
	fallback   driving.SimilarityCalculator
	clusterer  driving.ClusterFinder
	reports    driven.ReportStore
}

// NewAnalysis creates the orchestration service. The fallback calculator
// and report store are optional (can be nil).
func NewAnalysis(
	loader driven.DocumentLoader,
	calculator driving.SimilarityCalculator,
	fallback driving.SimilarityCalculator,
	clusterer driving.ClusterFinder,
	reports driven.ReportStore,
) *Analysis {
	return &Analysis{
		loader:     loader,
		calculator: calculator,
		fallback:   fallback,
		clusterer:  clusterer,
		reports:    reports,
	}
}

// Analyze runs the full pipeline and returns the recorded run.
func (a *Analysis) Analyze(ctx context.Context, threshold float64) (*domain.AnalysisRun, error) {
	logger.Section("Analysis Run")

	docs, err := a.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}
	logger.Info("Loaded %d documents from %s", len(docs), a.loader.Name())

	calculator := a.calculator
	matrix, contributing, err := computeMatrix(ctx, calculator, docs, threshold)
	if err != nil && a.fallback != nil && errors.Is(err, domain.ErrProviderUnavailable) {
		logger.Warn("Provider unavailable, falling back to %s comparison: %v", a.fallback.Technique(), err)
		calculator = a.fallback
		matrix, contributing, err = computeMatrix(ctx, calculator, docs, threshold)
	}
	if err != nil {
		return nil, fmt.Errorf("similarity matrix: %w", err)
	}

	clusters, err := a.clusterer.FindClusters(matrix, threshold)
	if err != nil {
		return nil, fmt.Errorf("find clusters: %w", err)
	}

	results, err := resultsFromMatrix(matrix, threshold, calculator.Technique(), contributing)
	if err != nil {
		return nil, fmt.Errorf("collect results: %w", err)
	}

	run := &domain.AnalysisRun{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Technique: calculator.Technique(),
		Threshold: threshold,
		Documents: len(docs),
		Results:   results,
		Clusters:  clusters,
		Stats:     matrix.Stats(),
	}

	if a.reports != nil {
		if err := a.reports.SaveRun(ctx, run); err != nil {
			// Persistence failure must not lose a finished analysis.
			logger.Warn("Failed to save run %s: %v", run.ID, err)
		} else {
			logger.Debug("Saved run %s", run.ID)
		}
	}

	return run, nil
}

// Similar compares one query document against the loaded corpus.
func (a *Analysis) Similar(ctx context.Context, query domain.Document, threshold float64) ([]domain.SimilarityResult, error) {
	docs, err := a.loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load documents: %w", err)
	}

	results, err := a.calculator.FindSimilar(ctx, []domain.Document{query}, docs, threshold)
	if err != nil && a.fallback != nil && errors.Is(err, domain.ErrProviderUnavailable) {
		logger.Warn("Provider unavailable, falling back to %s comparison: %v", a.fallback.Technique(), err)
		results, err = a.fallback.FindSimilar(ctx, []domain.Document{query}, docs, threshold)
	}
	if err != nil {
		return nil, fmt.Errorf("find similar: %w", err)
	}
	return results, nil
}

// matrixReporter is implemented by calculators that can report which
// techniques contributed cells to a matrix.
type matrixReporter interface {
	MatrixReport(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, []domain.Technique, error)
}

// computeMatrix runs the calculator's matrix scan and determines the
// contributing techniques. Single-technique calculators contribute
// exactly their own technique.
func computeMatrix(ctx context.Context, calc driving.SimilarityCalculator, docs []domain.Document, threshold float64) (*domain.Matrix, []domain.Technique, error) {
	if reporter, ok := calc.(matrixReporter); ok {
		return reporter.MatrixReport(ctx, docs, threshold)
	}
	matrix, err := calc.Matrix(ctx, docs, threshold)
	return matrix, []domain.Technique{calc.Technique()}, err
}

// resultsFromMatrix extracts the above-threshold pairs of the upper
// triangle as sorted similarity results. Each result records the
// relationship band and the techniques that contributed to the matrix.
func resultsFromMatrix(matrix *domain.Matrix, threshold float64, technique domain.Technique, contributing []domain.Technique) ([]domain.SimilarityResult, error) {
	labels := matrix.Labels()
	n := matrix.Dim()

	var results []domain.SimilarityResult
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := matrix.At(i, j)
			if score < threshold || score == 0 {
				continue
			}
			result, err := domain.NewSimilarityResult(labels[i], labels[j], score, technique)
			if err != nil {
				return nil, err
			}
			result.Metadata["relationship"] = string(domain.ClassifyRelationship(score))
			result.Metadata["techniques"] = techniqueList(contributing)
			results = append(results, result)
		}
	}
	sortResults(results)
	return results, nil
}

// techniqueList renders contributing techniques as a comma-joined string
// matching the composite FindSimilar metadata format.
func techniqueList(techniques []domain.Technique) string {
	parts := make([]string, len(techniques))
	for i, technique := range techniques {
		parts[i] = string(technique)
	}
	return strings.Join(parts, ",")
}
