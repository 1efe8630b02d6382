package mcp

import "errors"

// Port validation errors.
var (
	ErrMissingCalculator = errors.New("mcp: similarity calculator is required")
	ErrMissingClusterer  = errors.New("mcp: cluster finder is required")
	ErrMissingMerger     = errors.New("mcp: merger is required")
)
