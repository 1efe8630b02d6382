package services

import (
	"context"
	"fmt"
	"math"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure SemanticCalculator implements the interface.
var _ driving.SimilarityCalculator = (*SemanticCalculator)(nil)

// SemanticCalculator scores documents by cosine similarity between
// embedding vectors. Provider calls are comparatively expensive, so all
// texts of a matrix or find-similar call are embedded in one batch rather
// than one call per pair.
//
// When the provider is unavailable the calculator surfaces
// domain.ErrProviderUnavailable; falling back to lexical comparison is a
// caller or composite-level policy, never hidden here.
type SemanticCalculator struct {
	embedder   driven.EmbeddingService
	maxTextLen int
	workers    int
}

// SemanticOption configures the semantic calculator.
type SemanticOption func(*SemanticCalculator)

// WithSemanticMaxTextLength sets the maximum accepted text length.
func WithSemanticMaxTextLength(maxLen int) SemanticOption {
	return func(c *SemanticCalculator) {
		if maxLen > 0 {
			c.maxTextLen = maxLen
		}
	}
}

// WithSemanticWorkers bounds the pairwise scan worker pool.
func WithSemanticWorkers(workers int) SemanticOption {
	return func(c *SemanticCalculator) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// NewSemanticCalculator creates a semantic calculator using the given
// embedding service. The service is an explicit construction-time
// dependency; there is no hidden model lifecycle.
func NewSemanticCalculator(embedder driven.EmbeddingService, opts ...SemanticOption) *SemanticCalculator {
	c := &SemanticCalculator{
		embedder:   embedder,
		maxTextLen: DefaultMaxTextLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Technique identifies the comparison technique.
func (c *SemanticCalculator) Technique() domain.Technique {
	return domain.TechniqueSemantic
}

// Pairwise scores two texts in [0,1] via embedding cosine similarity.
func (c *SemanticCalculator) Pairwise(ctx context.Context, textA, textB string) (float64, error) {
	if err := validateText("text A", textA, c.maxTextLen); err != nil {
		return 0, fmt.Errorf("semantic pairwise: %w", err)
	}
	if err := validateText("text B", textB, c.maxTextLen); err != nil {
		return 0, fmt.Errorf("semantic pairwise: %w", err)
	}
	// Identical texts are 1.0 by definition; cosine of a vector with
	// itself can land a few ulps below that.
	if textA == textB {
		return 1.0, nil
	}
	vectors, err := c.embedBatch(ctx, []string{textA, textB})
	if err != nil {
		return 0, fmt.Errorf("semantic pairwise: %w", err)
	}
	return cosineSimilarity(vectors[0], vectors[1])
}

// Matrix computes pairwise scores over all unordered document pairs.
// All document texts are embedded in a single provider batch.
func (c *SemanticCalculator) Matrix(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("semantic matrix: %w", err)
	}
	if err := validateDocs(docs, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("semantic matrix: %w", err)
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Content
	}
	vectors, err := c.embedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("semantic matrix: %w", err)
	}

	upper, err := scanPairs(ctx, len(docs), c.workers, func(i, j int) (float64, error) {
		return cosineSimilarity(vectors[i], vectors[j])
	})
	if err != nil {
		return nil, fmt.Errorf("semantic matrix: %w", err)
	}
	return buildMatrix(docLabels(docs), upper, threshold), nil
}

// FindSimilar cross-compares queries against candidates. Queries and
// candidates are embedded together in one provider batch.
func (c *SemanticCalculator) FindSimilar(ctx context.Context, queries, candidates []domain.Document, threshold float64) ([]domain.SimilarityResult, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("semantic find similar: %w", err)
	}
	if err := validateDocs(queries, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("semantic find similar: queries: %w", err)
	}
	if err := validateDocs(candidates, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("semantic find similar: candidates: %w", err)
	}

	texts := make([]string, 0, len(queries)+len(candidates))
	for _, doc := range queries {
		texts = append(texts, doc.Content)
	}
	for _, doc := range candidates {
		texts = append(texts, doc.Content)
	}
	vectors, err := c.embedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("semantic find similar: %w", err)
	}
	queryVectors := vectors[:len(queries)]
	candidateVectors := vectors[len(queries):]

	return crossCompare(ctx, queries, candidates, threshold, domain.TechniqueSemantic, c.workers,
		func(qi, ci int) (float64, error) {
			return cosineSimilarity(queryVectors[qi], candidateVectors[ci])
		})
}

// embedBatch embeds all texts in one provider call and verifies the
// batch-length contract.
func (c *SemanticCalculator) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if c.embedder == nil {
		return nil, domain.ErrProviderUnavailable
	}
	logger.Debug("Embedding batch of %d texts via %s", len(texts), c.embedder.ModelName())
	vectors, err := c.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("embed batch: %w", domain.ErrCancelled)
		}
		return nil, fmt.Errorf("embed batch: %v: %w", err, domain.ErrProviderUnavailable)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("embed batch: %d vectors for %d texts: %w",
			len(vectors), len(texts), domain.ErrProviderFailure)
	}
	return vectors, nil
}

// cosineSimilarity computes the cosine of two embedding vectors, clamped
// to [0,1]. Mismatched dimensions indicate a provider fault.
func cosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, fmt.Errorf("vector dimensions %d vs %d: %w", len(a), len(b), domain.ErrProviderFailure)
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return clampScore(dot / (math.Sqrt(normA) * math.Sqrt(normB))), nil
}
