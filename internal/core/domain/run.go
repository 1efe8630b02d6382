package domain

import "time"

// AnalysisRun is the recorded outcome of one corpus-wide analysis:
// the pairwise scores above threshold, the duplicate clusters, and the
// matrix statistics. Persistence of runs is the caller's responsibility;
// the engine itself holds no state between calls.
type AnalysisRun struct {
	// ID uniquely identifies the run.
	ID string

	// CreatedAt is when the run completed.
	CreatedAt time.Time

	// Technique is the comparison technique used.
	Technique Technique

	// Threshold is the similarity threshold applied to the matrix.
	Threshold float64

	// Documents is the number of documents analyzed.
	Documents int

	// Results are the above-threshold pairs, sorted by score descending.
	Results []SimilarityResult

	// Clusters are the duplicate groups found.
	Clusters []Cluster

	// Stats summarizes the similarity matrix.
	Stats MatrixStats
}
