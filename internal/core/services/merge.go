package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure MergeService implements the interface.
var _ driving.Merger = (*MergeService)(nil)

// Merge defaults. The match threshold uses a 0-100 scale.
const (
	DefaultMatchThreshold = 85.0

	// mergeSeparator divides the original target text from appended
	// sections. Re-merging the same inputs reproduces the same output up
	// to separator duplication, which chaining callers de-duplicate.
	mergeSeparator = "\n\n---\n\n"
)

// MergeService absorbs unique content from a near-duplicate source
// document into a target document. It splits both texts into blank-line
// sections, skips source sections that closely match a target section,
// and appends the rest after the unaltered target text.
type MergeService struct {
	calculator       driving.SimilarityCalculator
	minSectionLength int
	matchThreshold   float64 // 0-100 scale
	annotate         bool
}

// MergeOption configures the merge service.
type MergeOption func(*MergeService)

// WithMinSectionLength sets the minimum section length in characters.
func WithMinSectionLength(minLength int) MergeOption {
	return func(s *MergeService) {
		s.minSectionLength = minLength
	}
}

// WithMatchThreshold sets the section match threshold on a 0-100 scale.
func WithMatchThreshold(threshold float64) MergeOption {
	return func(s *MergeService) {
		s.matchThreshold = threshold
	}
}

// WithProvenanceMarkers toggles the comment markers identifying the
// originating document of each appended section.
func WithProvenanceMarkers(annotate bool) MergeOption {
	return func(s *MergeService) {
		s.annotate = annotate
	}
}

// NewMergeService creates a merge service. Section matching typically
// uses the lexical calculator for speed. It fails with
// domain.ErrInvalidConfig when the minimum section length is negative or
// the match threshold is outside the 0-100 scale.
func NewMergeService(calculator driving.SimilarityCalculator, opts ...MergeOption) (*MergeService, error) {
	s := &MergeService{
		calculator:       calculator,
		minSectionLength: domain.DefaultMinSectionLength,
		matchThreshold:   DefaultMatchThreshold,
		annotate:         true,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.calculator == nil {
		return nil, fmt.Errorf("merge service: nil calculator: %w", domain.ErrInvalidConfig)
	}
	if s.minSectionLength < 0 {
		return nil, fmt.Errorf("merge service: negative minimum section length %d: %w",
			s.minSectionLength, domain.ErrInvalidConfig)
	}
	if s.matchThreshold < 0 || s.matchThreshold > 100 {
		return nil, fmt.Errorf("merge service: match threshold %v outside [0,100]: %w",
			s.matchThreshold, domain.ErrInvalidConfig)
	}
	return s, nil
}

// Merge appends source sections with no close match in the target. The
// output always starts with the full original target text, followed by a
// separator and the appended sections in source order. Finding no match
// for a section is the expected common case, never an error.
func (s *MergeService) Merge(ctx context.Context, source, target domain.Document) (domain.MergeResult, error) {
	logger.Section("Section Merge")
	logger.Debug("Merging %s into %s", source.ID, target.ID)

	sourceSections := domain.SplitSections(source.Content, s.minSectionLength)
	targetSections := domain.SplitSections(target.Content, s.minSectionLength)
	logger.Debug("Sections: %d source, %d target (min length %d)",
		len(sourceSections), len(targetSections), s.minSectionLength)

	threshold := s.matchThreshold / 100.0

	var appended []string
	for _, section := range sourceSections {
		if err := ctx.Err(); err != nil {
			return domain.MergeResult{}, fmt.Errorf("merge %s into %s: %w",
				source.ID, target.ID, domain.ErrCancelled)
		}

		best := s.bestMatch(ctx, section, targetSections)
		if best >= threshold {
			logger.Debug("Section %d already present (similarity %.2f), skipping", section.Index, best)
			continue
		}

		if s.annotate {
			appended = append(appended, fmt.Sprintf("<!-- merged from %s (max similarity %.2f) -->\n%s",
				source.ID, best, section.Content))
		} else {
			appended = append(appended, section.Content)
		}
	}

	if len(appended) == 0 {
		logger.Info("No unique sections in %s, target unchanged", source.ID)
		return domain.MergeResult{MergedText: target.Content, SectionsAdded: 0}, nil
	}

	logger.Info("Appending %d unique sections from %s", len(appended), source.ID)
	return domain.MergeResult{
		MergedText:    target.Content + mergeSeparator + strings.Join(appended, "\n\n"),
		SectionsAdded: len(appended),
	}, nil
}

// bestMatch returns the maximum similarity between a source section and
// any target section. A failing comparison counts as no match, so the
// section is appended rather than silently dropped.
func (s *MergeService) bestMatch(ctx context.Context, section domain.TextSection, targets []domain.TextSection) float64 {
	best := 0.0
	for _, target := range targets {
		score, err := s.calculator.Pairwise(ctx, section.Content, target.Content)
		if err != nil {
			logger.Warn("Section comparison failed, treating as no match: %v", err)
			continue
		}
		if score > best {
			best = score
		}
	}
	return best
}
