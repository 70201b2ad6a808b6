package optics

import "fmt"

// OrderedPoint is one entry of the Ordered Profile produced by the
// traversal: the original point index annotated with its reachability
// distance, core distance, and the predecessor that set the final
// reachability (-1 for the first point of a chain).
type OrderedPoint struct {
	Index        int
	Reachability float64
	CoreDistance float64
	Predecessor  int
}

// Ordering is the Ordered Profile: the full processing order of one
// traversal over one point set. It is immutable once built and may be
// shared read-only across goroutines; extraction with different
// parameters never mutates it.
type Ordering struct {
	points  []OrderedPoint
	minPts  int
	epsilon float64
}

// Len returns the number of profile entries (one per input point).
func (o *Ordering) Len() int { return len(o.points) }

// At returns the profile entry at position i.
func (o *Ordering) At(i int) OrderedPoint { return o.points[i] }

// MinPts returns the MinPts value the profile was built with.
func (o *Ordering) MinPts() int { return o.minPts }

// Epsilon returns the search radius the profile was built with
// (+Inf when unbounded).
func (o *Ordering) Epsilon() float64 { return o.epsilon }

// ReachabilityPlot returns the reachability distances in processing
// order with Undefined values mapped to ceiling, suitable for direct
// rendering by downstream collaborators.
func (o *Ordering) ReachabilityPlot(ceiling float64) []float64 {
	plot := make([]float64, len(o.points))
	for i, p := range o.points {
		if IsUndefined(p.Reachability) {
			plot[i] = ceiling
		} else {
			plot[i] = p.Reachability
		}
	}
	return plot
}

// BuildOrdering runs the density-based traversal over the indexed points
// and returns the Ordered Profile. coreDists must come from
// ComputeCoreDistances with the same minPts and epsilon.
//
// The traversal repeatedly pops the pending point with the smallest
// (reachability, index) key; when no point is pending it starts a new
// chain at the smallest unprocessed index with Undefined reachability.
// A popped point with a defined core distance offers each unprocessed
// neighbor within epsilon the candidate reachability
// max(coreDistance, distance), keeping the smaller of candidate and the
// neighbor's current key. Exactly n entries are emitted.
func BuildOrdering(tree SpatialTree, coreDists []float64, minPts int, epsilon float64) (*Ordering, error) {
	n := tree.NumPoints()
	o := &Ordering{points: make([]OrderedPoint, 0, n), minPts: minPts, epsilon: epsilon}
	if n == 0 {
		return o, nil
	}

	dims := tree.NumFeatures()
	data := tree.Data()

	processed := make([]bool, n)
	reach := make([]float64, n)
	pred := make([]int, n)
	for i := range reach {
		reach[i] = Undefined()
		pred[i] = -1
	}

	queue := newSeedQueue(n)
	nextStart := 0

	for len(o.points) < n {
		var p int
		if queue.Len() > 0 {
			p = queue.popMin().point
		} else {
			// Start a new chain at the smallest unprocessed index.
			for processed[nextStart] {
				nextStart++
			}
			p = nextStart
		}

		processed[p] = true
		o.points = append(o.points, OrderedPoint{
			Index:        p,
			Reachability: reach[p],
			CoreDistance: coreDists[p],
			Predecessor:  pred[p],
		})

		// A point without a core distance is not dense enough to extend
		// any neighbor's reachability.
		if IsUndefined(coreDists[p]) {
			continue
		}

		point := data[p*dims : (p+1)*dims]
		neighbors, dists := tree.QueryRadius(point, epsilon)
		for j, nb := range neighbors {
			if processed[nb] || nb == p {
				continue
			}
			d := dists[j]
			if d < 0 {
				return nil, fmt.Errorf("%w: metric returned negative distance %v between points %d and %d",
					ErrComputation, d, p, nb)
			}
			candidate := d
			if coreDists[p] > candidate {
				candidate = coreDists[p]
			}
			if queue.decreaseKey(nb, candidate) {
				reach[nb] = candidate
				pred[nb] = p
			}
		}
	}

	return o, nil
}
