package optics

import "fmt"

// ExtractDBSCAN extracts a flat clustering from the Ordered Profile with
// a single cut distance, equivalent to a DBSCAN run at that radius.
// A point whose reachability exceeds epsilonCut (or is Undefined) ends
// the active cluster; it starts a new one if its own core distance is
// within epsilonCut, otherwise it is noise. Points with reachability
// within epsilonCut extend the active cluster. Runs smaller than the
// profile's MinPts are demoted to noise.
//
// The resulting tree has a single level (no children). Extraction never
// mutates the profile; re-running with the same cut yields an equal tree.
func ExtractDBSCAN(o *Ordering, epsilonCut float64) (*ClusterTree, error) {
	if epsilonCut <= 0 {
		return nil, fmt.Errorf("%w: EpsilonCut must be > 0, got %v", ErrInvalidConfig, epsilonCut)
	}
	if epsilonCut > o.epsilon {
		return nil, fmt.Errorf("%w: EpsilonCut %v exceeds the profile's Epsilon %v",
			ErrInvalidConfig, epsilonCut, o.epsilon)
	}

	var cands []interval
	active := -1

	closeActive := func(end int) {
		if active >= 0 && end-active+1 >= o.minPts {
			cands = append(cands, interval{start: active, end: end})
		}
		active = -1
	}

	for pos := 0; pos < o.Len(); pos++ {
		p := o.points[pos]
		if IsUndefined(p.Reachability) || p.Reachability > epsilonCut {
			closeActive(pos - 1)
			if p.CoreDistance <= epsilonCut {
				active = pos
			}
			// Otherwise the point is noise.
		}
		// reachability <= epsilonCut extends the active cluster; if no
		// cluster is active the point stays noise (its seed was not dense
		// enough to open one).
	}
	closeActive(o.Len() - 1)

	return buildClusterTree(cands), nil
}
