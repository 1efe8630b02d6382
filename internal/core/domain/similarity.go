package domain

import "fmt"

// Technique identifies which comparison technique produced a score.
type Technique string

// Comparison techniques.
const (
	TechniqueLexical   Technique = "lexical"
	TechniqueSemantic  Technique = "semantic"
	TechniqueComposite Technique = "composite"
)

// SimilarityResult is a scored comparison between two documents.
// Source and Target always differ; self-pairs are never emitted by
// calculators and exist only implicitly as 1.0 on a matrix diagonal.
type SimilarityResult struct {
	// Source is the ID of the query-side document.
	Source string

	// Target is the ID of the candidate-side document.
	Target string

	// Score is the similarity in [0,1].
	Score float64

	// Technique identifies the comparison technique used.
	Technique Technique

	// Metadata carries technique-specific details, e.g. which
	// sub-calculators contributed to a composite score.
	Metadata map[string]string
}

// NewSimilarityResult builds a validated SimilarityResult.
// It fails with ErrInvalidInput when the score is outside [0,1] or when
// source and target name the same document.
func NewSimilarityResult(source, target string, score float64, technique Technique) (SimilarityResult, error) {
	if score < 0 || score > 1 {
		return SimilarityResult{}, fmt.Errorf("similarity result %s/%s: score %v outside [0,1]: %w",
			source, target, score, ErrInvalidInput)
	}
	if source == target {
		return SimilarityResult{}, fmt.Errorf("similarity result: source and target are both %q: %w",
			source, ErrInvalidInput)
	}
	return SimilarityResult{
		Source:    source,
		Target:    target,
		Score:     score,
		Technique: technique,
		Metadata:  make(map[string]string),
	}, nil
}

// Relationship is a presentation-layer classification of a score.
// Its boundaries are configured independently of clustering thresholds;
// clustering never consults relationship bands.
type Relationship string

// Relationship bands.
const (
	RelationshipNearDuplicate Relationship = "near-duplicate"
	RelationshipHigh          Relationship = "high"
	RelationshipModerate      Relationship = "moderate"
	RelationshipLow           Relationship = "low"
)

// Relationship band boundaries.
const (
	nearDuplicateBound = 0.9
	highBound          = 0.7
	moderateBound      = 0.5
)

// ClassifyRelationship maps a similarity score to its presentation band.
func ClassifyRelationship(score float64) Relationship {
	switch {
	case score >= nearDuplicateBound:
		return RelationshipNearDuplicate
	case score >= highBound:
		return RelationshipHigh
	case score >= moderateBound:
		return RelationshipModerate
	default:
		return RelationshipLow
	}
}
