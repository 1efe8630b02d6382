package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
)

// Ensure LexicalCalculator implements the interface.
var _ driving.SimilarityCalculator = (*LexicalCalculator)(nil)

// LexicalAlgorithm selects the string comparison behind the lexical
// calculator.
type LexicalAlgorithm string

// Supported lexical algorithms.
const (
	// AlgorithmTokenOverlap compares whitespace-delimited token multisets,
	// insensitive to token order. The default.
	AlgorithmTokenOverlap LexicalAlgorithm = "token-overlap"

	AlgorithmLevenshtein  LexicalAlgorithm = "levenshtein"
	AlgorithmJaroWinkler  LexicalAlgorithm = "jaro-winkler"
	AlgorithmSorensenDice LexicalAlgorithm = "sorensen-dice"
)

// LexicalCalculator scores documents by token overlap. It is
// deterministic, synchronous, and never blocks on I/O.
type LexicalCalculator struct {
	algorithm  LexicalAlgorithm
	maxTextLen int
	workers    int
}

// LexicalOption configures the lexical calculator.
type LexicalOption func(*LexicalCalculator)

// WithLexicalAlgorithm selects the comparison algorithm.
func WithLexicalAlgorithm(algorithm LexicalAlgorithm) LexicalOption {
	return func(c *LexicalCalculator) {
		if algorithm != "" {
			c.algorithm = algorithm
		}
	}
}

// WithLexicalMaxTextLength sets the maximum accepted text length.
func WithLexicalMaxTextLength(maxLen int) LexicalOption {
	return func(c *LexicalCalculator) {
		if maxLen > 0 {
			c.maxTextLen = maxLen
		}
	}
}

// WithLexicalWorkers bounds the pairwise scan worker pool.
func WithLexicalWorkers(workers int) LexicalOption {
	return func(c *LexicalCalculator) {
		if workers > 0 {
			c.workers = workers
		}
	}
}

// NewLexicalCalculator creates a lexical calculator with the given options.
func NewLexicalCalculator(opts ...LexicalOption) *LexicalCalculator {
	c := &LexicalCalculator{
		algorithm:  AlgorithmTokenOverlap,
		maxTextLen: DefaultMaxTextLength,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Technique identifies the comparison technique.
func (c *LexicalCalculator) Technique() domain.Technique {
	return domain.TechniqueLexical
}

// Pairwise scores two texts in [0,1].
func (c *LexicalCalculator) Pairwise(_ context.Context, textA, textB string) (float64, error) {
	if err := validateText("text A", textA, c.maxTextLen); err != nil {
		return 0, fmt.Errorf("lexical pairwise: %w", err)
	}
	if err := validateText("text B", textB, c.maxTextLen); err != nil {
		return 0, fmt.Errorf("lexical pairwise: %w", err)
	}
	return c.score(textA, textB)
}

// Matrix computes pairwise scores over all unordered document pairs.
func (c *LexicalCalculator) Matrix(ctx context.Context, docs []domain.Document, threshold float64) (*domain.Matrix, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("lexical matrix: %w", err)
	}
	if err := validateDocs(docs, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("lexical matrix: %w", err)
	}

	upper, err := scanPairs(ctx, len(docs), c.workers, func(i, j int) (float64, error) {
		return c.score(docs[i].Content, docs[j].Content)
	})
	if err != nil {
		return nil, fmt.Errorf("lexical matrix: %w", err)
	}
	return buildMatrix(docLabels(docs), upper, threshold), nil
}

// FindSimilar cross-compares queries against candidates.
func (c *LexicalCalculator) FindSimilar(ctx context.Context, queries, candidates []domain.Document, threshold float64) ([]domain.SimilarityResult, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("lexical find similar: %w", err)
	}
	if err := validateDocs(queries, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("lexical find similar: queries: %w", err)
	}
	if err := validateDocs(candidates, c.maxTextLen); err != nil {
		return nil, fmt.Errorf("lexical find similar: candidates: %w", err)
	}
	return crossCompare(ctx, queries, candidates, threshold, domain.TechniqueLexical, c.workers,
		func(qi, ci int) (float64, error) {
			return c.score(queries[qi].Content, candidates[ci].Content)
		})
}

// score dispatches to the configured algorithm and clamps to [0,1].
func (c *LexicalCalculator) score(a, b string) (float64, error) {
	if a == b {
		return 1.0, nil
	}
	switch c.algorithm {
	case AlgorithmTokenOverlap:
		return tokenOverlap(a, b), nil
	case AlgorithmLevenshtein:
		return edlibScore(a, b, edlib.Levenshtein)
	case AlgorithmJaroWinkler:
		return edlibScore(a, b, edlib.JaroWinkler)
	case AlgorithmSorensenDice:
		return edlibScore(a, b, edlib.SorensenDice)
	default:
		return 0, fmt.Errorf("unknown lexical algorithm %q: %w", c.algorithm, domain.ErrInvalidConfig)
	}
}

// edlibScore runs a go-edlib algorithm and clamps the result.
func edlibScore(a, b string, algorithm edlib.Algorithm) (float64, error) {
	score, err := edlib.StringsSimilarity(a, b, algorithm)
	if err != nil {
		return 0, fmt.Errorf("string similarity: %w", err)
	}
	return clampScore(float64(score)), nil
}

// tokenOverlap computes the multiset overlap ratio of whitespace-delimited
// tokens, normalized to [0,1]. Token order does not matter.
func tokenOverlap(a, b string) float64 {
	tokensA := strings.Fields(strings.ToLower(a))
	tokensB := strings.Fields(strings.ToLower(b))
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0.0
	}

	counts := make(map[string]int, len(tokensA))
	for _, tok := range tokensA {
		counts[tok]++
	}
	common := 0
	for _, tok := range tokensB {
		if counts[tok] > 0 {
			counts[tok]--
			common++
		}
	}

	return clampScore(2.0 * float64(common) / float64(len(tokensA)+len(tokensB)))
}
