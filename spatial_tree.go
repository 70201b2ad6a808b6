package optics

import "sort"

// NodeData describes a single node in a spatial tree.
type NodeData struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           float64 // ball tree radius; 0 for KD-tree
}

// SpatialTree is the read interface for the spatial indexes (KD-tree,
// ball tree, brute force). It is built once per point set and read-only
// afterwards, so a single tree may be shared across concurrent requests.
//
// Tie-breaking: when two points are equidistant from a query, both
// QueryKNN and QueryRadius order them by original index ascending, so
// that every downstream computation is reproducible for a fixed input.
type SpatialTree interface {
	// QueryKNN finds the k nearest neighbors for each row in queryData.
	// queryData is flat row-major with queryRows rows.
	// Returns per-query neighbor indices and distances, both sorted by
	// (distance, original index) ascending.
	QueryKNN(queryData []float64, queryRows, k int) (indices [][]int, distances [][]float64)

	// QueryRadius finds all points within distance r of the query point,
	// sorted by (distance, original index) ascending. r may be +Inf to
	// return every point.
	QueryRadius(point []float64, r float64) (indices []int, distances []float64)

	// Data returns the flat row-major point data owned by the tree.
	Data() []float64

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int

	// IdxArray returns the permutation array mapping tree-order positions
	// back to original point indices.
	IdxArray() []int

	// NodeDataArray returns the metadata for every node in the tree.
	NodeDataArray() []NodeData
}

// neighborResult is a (index, distance) pair collected during queries,
// sorted by (distance, index) ascending before being returned.
type neighborResult struct {
	index int
	dist  float64
}

func sortNeighborResults(res []neighborResult) ([]int, []float64) {
	sort.Slice(res, func(i, j int) bool { return less(res[i], res[j]) })
	idx := make([]int, len(res))
	dist := make([]float64, len(res))
	for i, r := range res {
		idx[i] = r.index
		dist[i] = r.dist
	}
	return idx, dist
}

func less(a, b neighborResult) bool {
	if a.dist != b.dist {
		return a.dist < b.dist
	}
	return a.index < b.index
}
