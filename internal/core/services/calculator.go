package services

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// DefaultMaxTextLength is the maximum accepted text length in characters.
const DefaultMaxTextLength = 100_000

// validateText checks that text is non-empty after trimming and within
// the configured maximum length.
func validateText(label, text string, maxLen int) error {
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%s: empty text: %w", label, domain.ErrInvalidInput)
	}
	if maxLen > 0 && len([]rune(text)) > maxLen {
		return fmt.Errorf("%s: text exceeds %d characters: %w", label, maxLen, domain.ErrInvalidInput)
	}
	return nil
}

// validateThreshold checks that a similarity threshold is within [0,1].
func validateThreshold(threshold float64) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold %v outside [0,1]: %w", threshold, domain.ErrInvalidConfig)
	}
	return nil
}

// validateDocs checks that every document has a unique ID and valid text.
func validateDocs(docs []domain.Document, maxLen int) error {
	seen := make(map[string]bool, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document with empty ID: %w", domain.ErrInvalidInput)
		}
		if seen[doc.ID] {
			return fmt.Errorf("duplicate document ID %q: %w", doc.ID, domain.ErrInvalidInput)
		}
		seen[doc.ID] = true
		if err := validateText("document "+doc.ID, doc.Content, maxLen); err != nil {
			return err
		}
	}
	return nil
}

// pairScorer scores the unordered pair (i, j) of one scan.
type pairScorer func(i, j int) (float64, error)

// scanPairs evaluates all unordered pairs (i, j), i < j, with a bounded
// worker pool. Each pair writes its own slot of the result buffer, so the
// output is deterministic regardless of scheduling. A failing pair is
// recorded as 0.0 and does not abort the scan; cancellation aborts with
// domain.ErrCancelled and partial results are discarded.
func scanPairs(ctx context.Context, n, workers int, score pairScorer) ([]float64, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	upper := make([]float64, n*(n-1)/2)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	slot := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			// Cancellation is checked between pair evaluations so a
			// caller can abort a large scan.
			if err := gctx.Err(); err != nil {
				_ = g.Wait()
				return nil, fmt.Errorf("pairwise scan at pair (%d,%d): %w", i, j, domain.ErrCancelled)
			}
			s := slot
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				v, err := score(i, j)
				if err != nil {
					// One bad comparison must not invalidate the whole
					// scan; the cell is recorded as 0.0, never dropped.
					logger.Warn("pair (%d,%d) failed, recording 0.0: %v", i, j, err)
					upper[s] = 0.0
					return nil
				}
				upper[s] = v
				return nil
			})
			slot++
		}
	}

	if err := g.Wait(); err != nil {
		if gctx.Err() != nil {
			return nil, fmt.Errorf("pairwise scan: %w", domain.ErrCancelled)
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pairwise scan: %w", domain.ErrCancelled)
	}
	return upper, nil
}

// buildMatrix assembles a symmetric matrix from upper-triangle scores,
// zeroing cells below threshold. The diagonal is 1.0.
func buildMatrix(labels []string, upper []float64, threshold float64) *domain.Matrix {
	n := len(labels)
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		rows[i][i] = 1.0
	}
	slot := 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := upper[slot]
			if v < threshold {
				v = 0.0
			}
			rows[i][j] = v
			rows[j][i] = v
			slot++
		}
	}
	matrix, err := domain.NewMatrix(labels, rows)
	if err != nil {
		// The rows are symmetric with unit diagonal by construction.
		panic(fmt.Sprintf("matrix assembly violated invariants: %v", err))
	}
	return matrix
}

// docLabels extracts the document ID vector.
func docLabels(docs []domain.Document) []string {
	labels := make([]string, len(docs))
	for i, doc := range docs {
		labels[i] = doc.ID
	}
	return labels
}

// clampScore forces a technique's raw output into [0,1].
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// sortResults orders results by score descending, ties broken by
// (source, target) lexical order for determinism.
func sortResults(results []domain.SimilarityResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Source != results[j].Source {
			return results[i].Source < results[j].Source
		}
		return results[i].Target < results[j].Target
	})
}

// crossCompare evaluates queries against candidates, skipping self-pairs,
// keeping scores at or above threshold. Per-pair failures are recorded as
// 0.0 (and therefore filtered out unless threshold is 0).
func crossCompare(
	ctx context.Context,
	queries, candidates []domain.Document,
	threshold float64,
	technique domain.Technique,
	workers int,
	score func(qi, ci int) (float64, error),
) ([]domain.SimilarityResult, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	type cell struct {
		qi, ci int
		value  float64
	}
	cells := make([]cell, 0, len(queries)*len(candidates))
	for qi := range queries {
		for ci := range candidates {
			if queries[qi].ID == candidates[ci].ID {
				continue
			}
			cells = append(cells, cell{qi: qi, ci: ci})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx := range cells {
		if err := gctx.Err(); err != nil {
			_ = g.Wait()
			return nil, fmt.Errorf("find similar: %w", domain.ErrCancelled)
		}
		idx := idx
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := score(cells[idx].qi, cells[idx].ci)
			if err != nil {
				// The failed pair stays at 0.0; the threshold filter
				// decides whether the caller sees it.
				logger.Warn("compare %s/%s failed, recording 0.0: %v",
					queries[cells[idx].qi].ID, candidates[cells[idx].ci].ID, err)
				return nil
			}
			cells[idx].value = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("find similar: %w", domain.ErrCancelled)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("find similar: %w", domain.ErrCancelled)
	}

	results := make([]domain.SimilarityResult, 0, len(cells))
	for _, c := range cells {
		if c.value < threshold {
			continue
		}
		result, err := domain.NewSimilarityResult(queries[c.qi].ID, candidates[c.ci].ID, c.value, technique)
		if err != nil {
			return nil, fmt.Errorf("find similar: %w", err)
		}
		results = append(results, result)
	}
	sortResults(results)
	return results, nil
}
