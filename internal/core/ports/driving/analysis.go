package driving

import (
	"context"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// SimilarityCalculator scores how alike text documents are.
// Implementations are interchangeable behind this interface: lexical
// token overlap, semantic embedding cosine, or a composite of both.
type SimilarityCalculator interface {
	// Technique identifies the comparison technique.
	Technique() domain.Technique

	// Pairwise scores two texts in [0,1]. Both texts must be non-empty
	// after trimming and within the configured maximum length, otherwise
	// it fails with domain.ErrInvalidInput. For any valid text x,
	// Pairwise(x, x) is 1.0, and deterministic techniques are symmetric.
	Pairwise(ctx context.Context, textA, textB string) (float64, error)

	// Matrix computes pairwise scores over all unordered document pairs.
	// Scores below threshold are recorded as 0.0; the matrix keeps full
	// dimensionality. A threshold outside [0,1] fails with
	// domain.ErrInvalidConfig. A single failing pair is recorded as 0.0
	// and does not abort the scan.
	Matrix(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, error)

	// FindSimilar cross-compares queries against candidates, skipping
	// self-pairs, and returns results at or above threshold sorted by
	// score descending, ties broken by (source, target) order.
	FindSimilar(ctx context.Context, queries, candidates []domain.Document, threshold float64) ([]domain.SimilarityResult, error)
}

// ClusterFinder groups near-duplicate documents.
type ClusterFinder interface {
	// FindClusters returns the connected components of the graph whose
	// edges are matrix cells at or above threshold. Components with a
	// single member are discarded. A threshold outside [0,1] fails with
	// domain.ErrInvalidConfig.
	FindClusters(matrix *domain.Matrix, threshold float64) ([]domain.Cluster, error)
}

// Merger absorbs unique content from a near-duplicate source document
// into a target document.
type Merger interface {
	// Merge appends source sections that have no close match in target.
	// The merged text always starts with the unaltered target text.
	Merge(ctx context.Context, source, target domain.Document) (domain.MergeResult, error)
}

// AnalysisService orchestrates a full run: load documents, compute the
// similarity matrix, find clusters, and record the outcome.
type AnalysisService interface {
	// Analyze runs the full pipeline and returns the recorded run.
	Analyze(ctx context.Context, threshold float64) (*domain.AnalysisRun, error)

	// Similar compares one query document against the loaded corpus.
	Similar(ctx context.Context, query domain.Document, threshold float64) ([]domain.SimilarityResult, error)
}
