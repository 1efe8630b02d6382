package mcp

import (
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Calculator scores document similarity.
	Calculator driving.SimilarityCalculator

	// Clusterer groups near-duplicates.
	Clusterer driving.ClusterFinder

	// Merger merges document sections.
	Merger driving.Merger
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Calculator == nil {
		return ErrMissingCalculator
	}
	if p.Clusterer == nil {
		return ErrMissingClusterer
	}
	if p.Merger == nil {
		return ErrMissingMerger
	}
	return nil
}
