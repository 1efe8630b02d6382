package services

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driving"
	"github.com/custodia-labs/docdup-cli/internal/logger"
)

// Ensure ClusterService implements the interface.
var _ driving.ClusterFinder = (*ClusterService)(nil)

// ClusterService finds groups of near-duplicate documents as connected
// components of the thresholded similarity graph.
type ClusterService struct{}

// NewClusterService creates a cluster finder.
func NewClusterService() *ClusterService {
	return &ClusterService{}
}

// FindClusters returns the connected components over the implicit graph
// where an edge (i, j) exists iff matrix[i][j] >= threshold. Traversal is
// deterministic: indices are visited in ascending order and each
// component absorbs its unvisited neighbours breadth-first. Components
// with fewer than two members are discarded. Clusters are disjoint by
// construction and their members sorted.
func (s *ClusterService) FindClusters(matrix *domain.Matrix, threshold float64) ([]domain.Cluster, error) {
	if err := validateThreshold(threshold); err != nil {
		return nil, fmt.Errorf("find clusters: %w", err)
	}
	if matrix == nil {
		return nil, fmt.Errorf("find clusters: nil matrix: %w", domain.ErrInvalidInput)
	}

	n := matrix.Dim()
	labels := matrix.Labels()
	visited := make([]bool, n)
	var clusters []domain.Cluster

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true

		// Breadth-first absorption of above-threshold neighbours.
		component := []int{start}
		queue := []int{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for next := 0; next < n; next++ {
				if visited[next] || next == current {
					continue
				}
				if matrix.At(current, next) >= threshold {
					visited[next] = true
					component = append(component, next)
					queue = append(queue, next)
				}
			}
		}

		// Singleton components are not duplicates.
		if len(component) < 2 {
			continue
		}

		members := make([]string, len(component))
		for i, idx := range component {
			members[i] = labels[idx]
		}
		sort.Strings(members)
		clusters = append(clusters, domain.Cluster{Members: members})
	}

	logger.Debug("Found %d clusters at threshold %.2f over %d documents", len(clusters), threshold, n)
	return clusters, nil
}
