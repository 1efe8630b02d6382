package domain

// Cluster is a group of two or more documents connected, directly or
// transitively, by above-threshold similarity. Clusters returned by the
// cluster finder are disjoint and their members sorted for determinism.
type Cluster struct {
	// Members are the document IDs in the cluster, in ascending order.
	Members []string
}

// Size returns the number of documents in the cluster.
func (c Cluster) Size() int {
	return len(c.Members)
}

// Contains reports whether the cluster includes the given document ID.
func (c Cluster) Contains(id string) bool {
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return false
}
