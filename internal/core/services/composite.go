package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure CompositeCalculator implements the interface.
var _ driving.SimilarityCalculator = (*CompositeCalculator)(nil)

// CompositeCalculator wraps a lexical and a semantic calculator, computes
// both independently and keeps the maximum score per pair. When one
// sub-calculator fails and the other succeeds, the composite still
// returns a result and records which techniques contributed.
type CompositeCalculator struct {
	lexical  driving.SimilarityCalculator
	semantic driving.SimilarityCalculator
}

// NewCompositeCalculator creates a composite over the two calculators.
func NewCompositeCalculator(lexical, semantic driving.SimilarityCalculator) *CompositeCalculator {
	return &CompositeCalculator{lexical: lexical, semantic: semantic}
}

// Technique identifies the comparison technique.
func (c *CompositeCalculator) Technique() domain.Technique {
	return domain.TechniqueComposite
}

// Pairwise scores two texts with both techniques and keeps the maximum.
func (c *CompositeCalculator) Pairwise(ctx context.Context, textA, textB string) (float64, error) {
	lexScore, lexErr := c.lexical.Pairwise(ctx, textA, textB)
	semScore, semErr := c.semantic.Pairwise(ctx, textA, textB)

	if lexErr != nil && semErr != nil {
		return 0, fmt.Errorf("composite pairwise: lexical=%v, semantic=%w", lexErr, semErr)
	}
	if semErr != nil {
		logger.Warn("Composite pairwise: semantic failed, using lexical only: %v", semErr)
		return lexScore, nil
	}
	if lexErr != nil {
		logger.Warn("Composite pairwise: lexical failed, using semantic only: %v", lexErr)
		return semScore, nil
	}
	if semScore > lexScore {
		return semScore, nil
	}
	return lexScore, nil
}

// Matrix computes both sub-matrices in parallel and merges cells by
// maximum before applying the threshold.
func (c *CompositeCalculator) Matrix(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, error) {
	matrix, _, err := c.MatrixReport(ctx, docs, threshold)
	return matrix, err
}

// MatrixReport computes the merged matrix and reports which techniques
// contributed cells. When one sub-calculator fails, the survivor is the
// only contributor; callers that need that provenance use this instead
// of Matrix.
func (c *CompositeCalculator) MatrixReport(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, []domain.Technique, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, nil, fmt.Errorf("composite matrix: %w", err)
	}

	var lexMatrix, semMatrix *domain.Matrix
	var lexErr, semErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		// Sub-scans run unthresholded so the per-cell maximum is exact;
		// the composite threshold is applied after merging.
		lexMatrix, lexErr = c.lexical.Matrix(ctx, docs, 0.0)
	}()
	go func() {
		defer wg.Done()
		semMatrix, semErr = c.semantic.Matrix(ctx, docs, 0.0)
	}()
	wg.Wait()

	if lexErr != nil && semErr != nil {
		return nil, nil, fmt.Errorf("composite matrix: lexical=%v, semantic=%w", lexErr, semErr)
	}
	if semErr != nil {
		logger.Warn("Composite matrix: semantic failed, using lexical only: %v", semErr)
		return lexMatrix.FilterByThreshold(threshold), []domain.Technique{c.lexical.Technique()}, nil
	}
	if lexErr != nil {
		logger.Warn("Composite matrix: lexical failed, using semantic only: %v", lexErr)
		return semMatrix.FilterByThreshold(threshold), []domain.Technique{c.semantic.Technique()}, nil
	}

	merged := mergeMax(lexMatrix, semMatrix)
	return merged.FilterByThreshold(threshold), []domain.Technique{c.lexical.Technique(), c.semantic.Technique()}, nil
}

// FindSimilar runs both sub-calculators and merges results per pair,
// keeping the maximum score and recording contributing techniques in the
// result metadata.
func (c *CompositeCalculator) FindSimilar(ctx context.Context, queries, candidates []domain.Document, threshold float64) ([]domain.SimilarityResult, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("composite find similar: %w", err)
	}

	var lexResults, semResults []domain.SimilarityResult
	var lexErr, semErr error

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		lexResults, lexErr = c.lexical.FindSimilar(ctx, queries, candidates, threshold)
	}()
	go func() {
		defer wg.Done()
		semResults, semErr = c.semantic.FindSimilar(ctx, queries, candidates, threshold)
	}()
	wg.Wait()

	if lexErr != nil && semErr != nil {
		return nil, fmt.Errorf("composite find similar: lexical=%v, semantic=%w", lexErr, semErr)
	}
	if semErr != nil {
		logger.Warn("Composite find similar: semantic failed, using lexical only: %v", semErr)
	}
	if lexErr != nil {
		logger.Warn("Composite find similar: lexical failed, using semantic only: %v", lexErr)
	}

	type pairKey struct{ source, target string }
	merged := make(map[pairKey]domain.SimilarityResult)

	absorb := func(results []domain.SimilarityResult) {
		for _, r := range results {
			key := pairKey{r.Source, r.Target}
			existing, seen := merged[key]
			if !seen {
				composite := r
				composite.Technique = domain.TechniqueComposite
				composite.Metadata = map[string]string{
					"techniques":                  string(r.Technique),
					string(r.Technique) + "_score": formatScore(r.Score),
				}
				merged[key] = composite
				continue
			}
			existing.Metadata["techniques"] += "," + string(r.Technique)
			existing.Metadata[string(r.Technique)+"_score"] = formatScore(r.Score)
			if r.Score > existing.Score {
				existing.Score = r.Score
			}
			merged[key] = existing
		}
	}
	absorb(lexResults)
	absorb(semResults)

	results := make([]domain.SimilarityResult, 0, len(merged))
	for _, r := range merged {
		results = append(results, r)
	}
	sortResults(results)
	return results, nil
}

// mergeMax builds a new matrix keeping the per-cell maximum of a and b.
// Both matrices share the same label vector by construction.
func mergeMax(a, b *domain.Matrix) *domain.Matrix {
	n := a.Dim()
	rows := a.Rows()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if v := b.At(i, j); v > rows[i][j] {
				rows[i][j] = v
			}
		}
	}
	merged, err := domain.NewMatrix(a.Labels(), rows)
	if err != nil {
		panic(fmt.Sprintf("composite merge violated matrix invariants: %v", err))
	}
	return merged
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
