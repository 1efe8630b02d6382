package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
)

// DocumentInput is one document passed to a tool.
type DocumentInput struct {
	ID      string `json:"id" jsonschema:"unique document identifier"`
	Content string `json:"content" jsonschema:"full document text"`
}

// MatrixInput is the input schema for the similarity_matrix tool.
type MatrixInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"documents to compare pairwise"`
	Threshold float64         `json:"threshold,omitempty" jsonschema:"scores below this value are reported as 0.0 (default 0)"`
}

// MatrixOutput is the output schema for the similarity_matrix tool.
type MatrixOutput struct {
	Labels []string    `json:"labels"`
	Rows   [][]float64 `json:"rows"`
	Stats  StatsOutput `json:"stats"`
}

// StatsOutput summarises a score distribution.
type StatsOutput struct {
	Pairs  int     `json:"pairs"`
	Mean   float64 `json:"mean"`
	Max    float64 `json:"max"`
	Min    float64 `json:"min"`
	Median float64 `json:"median"`
}

// DuplicatesInput is the input schema for the find_duplicates tool.
type DuplicatesInput struct {
	Documents []DocumentInput `json:"documents" jsonschema:"documents to scan for near-duplicates"`
	Threshold float64         `json:"threshold,omitempty" jsonschema:"similarity threshold in [0,1] (default 0.9)"`
}

// DuplicatesOutput is the output schema for the find_duplicates tool.
type DuplicatesOutput struct {
	Clusters [][]string   `json:"clusters"`
	Pairs    []PairOutput `json:"pairs"`
}

// PairOutput is one above-threshold document pair.
type PairOutput struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Score  float64 `json:"score"`
}

// MergeInput is the input schema for the merge_documents tool.
type MergeInput struct {
	SourceID      string `json:"source_id" jsonschema:"identifier of the source document"`
	SourceContent string `json:"source_content" jsonschema:"text of the source document"`
	TargetID      string `json:"target_id" jsonschema:"identifier of the target document"`
	TargetContent string `json:"target_content" jsonschema:"text of the target document"`
}

// MergeOutput is the output schema for the merge_documents tool.
type MergeOutput struct {
	MergedText    string `json:"merged_text"`
	SectionsAdded int    `json:"sections_added"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "similarity_matrix",
		Description: "Compute a pairwise similarity matrix over a set of documents",
	}, s.handleMatrix)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_duplicates",
		Description: "Group near-duplicate documents into clusters",
	}, s.handleDuplicates)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "merge_documents",
		Description: "Merge unique sections of a source document into a target document",
	}, s.handleMerge)
}

// handleMatrix handles the similarity_matrix tool invocation.
func (s *Server) handleMatrix(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MatrixInput,
) (*mcp.CallToolResult, MatrixOutput, error) {
	docs, err := toDocuments(input.Documents)
	if err != nil {
		return nil, MatrixOutput{}, err
	}

	matrix, err := s.ports.Calculator.Matrix(ctx, docs, input.Threshold)
	if err != nil {
		return nil, MatrixOutput{}, err
	}

	stats := matrix.Stats()
	output := MatrixOutput{
		Labels: matrix.Labels(),
		Rows:   matrix.Rows(),
		Stats: StatsOutput{
			Pairs:  stats.Pairs,
			Mean:   stats.Mean,
			Max:    stats.Max,
			Min:    stats.Min,
			Median: stats.Median,
		},
	}
	return nil, output, nil
}

// handleDuplicates handles the find_duplicates tool invocation.
func (s *Server) handleDuplicates(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DuplicatesInput,
) (*mcp.CallToolResult, DuplicatesOutput, error) {
	docs, err := toDocuments(input.Documents)
	if err != nil {
		return nil, DuplicatesOutput{}, err
	}

	threshold := input.Threshold
	if threshold == 0 {
		threshold = 0.9
	}

	matrix, err := s.ports.Calculator.Matrix(ctx, docs, threshold)
	if err != nil {
		return nil, DuplicatesOutput{}, err
	}

	clusters, err := s.ports.Clusterer.FindClusters(matrix, threshold)
	if err != nil {
		return nil, DuplicatesOutput{}, err
	}

	output := DuplicatesOutput{
		Clusters: make([][]string, len(clusters)),
		Pairs:    collectPairs(matrix, threshold),
	}
	for i, cluster := range clusters {
		output.Clusters[i] = cluster.Members
	}
	return nil, output, nil
}

// handleMerge handles the merge_documents tool invocation.
func (s *Server) handleMerge(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeInput,
) (*mcp.CallToolResult, MergeOutput, error) {
	if input.SourceID == "" || input.TargetID == "" {
		return nil, MergeOutput{}, fmt.Errorf("source_id and target_id are required: %w", domain.ErrInvalidInput)
	}

	source := domain.Document{ID: input.SourceID, Content: input.SourceContent}
	target := domain.Document{ID: input.TargetID, Content: input.TargetContent}

	result, err := s.ports.Merger.Merge(ctx, source, target)
	if err != nil {
		return nil, MergeOutput{}, err
	}

	return nil, MergeOutput{
		MergedText:    result.MergedText,
		SectionsAdded: result.SectionsAdded,
	}, nil
}

// toDocuments converts tool inputs to domain documents.
func toDocuments(inputs []DocumentInput) ([]domain.Document, error) {
	if len(inputs) < 2 {
		return nil, fmt.Errorf("at least two documents are required: %w", domain.ErrInvalidInput)
	}
	docs := make([]domain.Document, len(inputs))
	for i, input := range inputs {
		if input.ID == "" {
			return nil, fmt.Errorf("document %d is missing an id: %w", i, domain.ErrInvalidInput)
		}
		docs[i] = domain.Document{ID: input.ID, Content: input.Content}
	}
	return docs, nil
}

// collectPairs extracts the above-threshold upper triangle.
func collectPairs(matrix *domain.Matrix, threshold float64) []PairOutput {
	labels := matrix.Labels()
	n := matrix.Dim()

	var pairs []PairOutput
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			score := matrix.At(i, j)
			if score < threshold || score == 0 {
				continue
			}
			pairs = append(pairs, PairOutput{Source: labels[i], Target: labels[j], Score: score})
		}
	}
	return pairs
}
