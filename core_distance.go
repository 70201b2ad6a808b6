package optics

import "math"

// Undefined is the sentinel for an undefined core or reachability
// distance: a point with fewer than MinPts neighbors within Epsilon has
// no core distance, and the first point of a traversal chain has no
// reachability distance.
func Undefined() float64 { return math.Inf(1) }

// IsUndefined reports whether v is the Undefined sentinel.
func IsUndefined(v float64) bool { return math.IsInf(v, 1) }

// ComputeCoreDistances computes the core distance of every point in the
// tree: the distance to its minPts-th nearest non-self neighbor, or
// Undefined when fewer than minPts non-self neighbors lie within epsilon.
// epsilon may be +Inf for an unbounded search radius.
//
// The returned slice has length tree.NumPoints().
func ComputeCoreDistances(tree SpatialTree, minPts int, epsilon float64) []float64 {
	n := tree.NumPoints()
	if n == 0 {
		return nil
	}

	core := make([]float64, n)
	coreDistanceRows(tree, minPts, epsilon, 0, n, core)
	return core
}

// coreDistanceRows fills core[start:end] for points start..end-1.
// Shared by the sequential and parallel paths; both produce identical
// results for identical inputs.
func coreDistanceRows(tree SpatialTree, minPts int, epsilon float64, start, end int, core []float64) {
	n := tree.NumPoints()
	dims := tree.NumFeatures()

	if minPts > n-1 {
		// Not enough non-self neighbors exist for any point.
		for i := start; i < end; i++ {
			core[i] = Undefined()
		}
		return
	}

	// Query k = minPts+1 neighbors (the +1 accounts for the point itself).
	k := minPts + 1
	if k > n {
		k = n
	}

	data := tree.Data()
	indices, distances := tree.QueryKNN(data[start*dims:end*dims], end-start, k)

	for i := start; i < end; i++ {
		row := i - start
		core[i] = Undefined()

		// The KNN result includes the point itself (distance 0). Take the
		// minPts-th non-self neighbor.
		neighborCount := 0
		for j := 0; j < len(distances[row]); j++ {
			if indices[row][j] == i {
				continue // skip self
			}
			neighborCount++
			if neighborCount == minPts {
				if distances[row][j] <= epsilon {
					core[i] = distances[row][j]
				}
				break
			}
		}
	}
}
