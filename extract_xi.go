package optics

import (
	"fmt"
	"math"
)

// steepDownArea is an open steep-down area awaiting a matching steep-up
// area. maximum is the reachability at its start; mib is the maximum
// reachability seen between the area and the current scan position.
type steepDownArea struct {
	start, end int
	maximum    float64
	mib        float64
}

// ExtractXi extracts a hierarchy of clusters from the Ordered Profile by
// detecting steep density transitions. A reachability drop by a factor
// of at least xi opens a steep-down area; a matching steep-up area
// closes candidate clusters for every still-valid open area. Candidates
// smaller than the profile's MinPts are discarded; surviving ranges are
// nested by containment, with the level increasing per nesting step.
//
// xi must lie in (0, 1). The extraction is deterministic and never
// mutates the profile.
func ExtractXi(o *Ordering, xi float64) (*ClusterTree, error) {
	if xi <= 0 || xi >= 1 {
		return nil, fmt.Errorf("%w: Xi must be in (0, 1), got %v", ErrInvalidConfig, xi)
	}
	r := make([]float64, o.Len())
	for i := range r {
		r[i] = o.points[i].Reachability
	}
	return buildClusterTree(xiCandidates(r, xi, o.minPts)), nil
}

// xiCandidates scans the reachability values for steep-down/steep-up
// area pairs and returns the candidate cluster ranges.
func xiCandidates(r []float64, xi float64, minPts int) []interval {
	n := len(r)
	if n == 0 {
		return nil
	}
	xc := 1 - xi

	// The position one past the profile acts as an infinitely high wall
	// so trailing clusters can close.
	rAt := func(i int) float64 {
		if i >= n {
			return math.Inf(1)
		}
		return r[i]
	}
	downPoint := func(i int) bool { return r[i]*xc >= rAt(i+1) }
	upPoint := func(i int) bool { return r[i] <= rAt(i+1)*xc }

	// extendArea grows a steep area from start: transitions must stay
	// monotonic, and at most minPts consecutive non-steep transitions
	// are tolerated. Returns the last steep point of the area.
	extendArea := func(start int, steep func(int) bool, mono func(int) bool) int {
		end := start
		nonSteep := 0
		for i := start + 1; i < n; i++ {
			if !mono(i) {
				break
			}
			if steep(i) {
				end = i
				nonSteep = 0
			} else {
				nonSteep++
				if nonSteep > minPts {
					break
				}
			}
		}
		return end
	}
	downward := func(i int) bool { return r[i] >= rAt(i+1) }
	upward := func(i int) bool { return r[i] <= rAt(i+1) }

	var sdas []steepDownArea
	var cands []interval
	index := 0
	mib := 0.0

	for index < n {
		if v := r[index]; v > mib {
			mib = v
		}

		switch {
		case downPoint(index):
			sdas = filterSteepDownAreas(sdas, mib, xc)
			end := extendArea(index, downPoint, downward)
			sdas = append(sdas, steepDownArea{start: index, end: end, maximum: r[index]})
			index = end + 1
			mib = rAt(index)

		case upPoint(index):
			sdas = filterSteepDownAreas(sdas, mib, xc)
			upStart := index
			upEnd := extendArea(index, upPoint, upward)
			endVal := rAt(upEnd + 1)
			index = upEnd + 1
			mib = rAt(index)

			for _, d := range sdas {
				// Significant separation: everything between the areas
				// must sit a factor of xi below both shoulders.
				if d.mib > math.Min(d.maximum, endVal)*xc {
					continue
				}

				cs, ce := d.start, upEnd
				switch {
				case d.maximum*xc >= endVal:
					// Left shoulder far higher: shift the start down to
					// where the drop reaches the right shoulder's level.
					for cs < d.end && r[cs+1] > endVal {
						cs++
					}
				case endVal*xc >= d.maximum:
					// Right shoulder far higher: pull the end back to
					// where the climb passes the left shoulder's level.
					for ce > upStart && r[ce] > d.maximum {
						ce--
					}
				}

				if ce < upStart || ce-cs+1 < minPts {
					continue
				}
				cands = append(cands, interval{start: cs, end: ce})
			}

		default:
			index++
		}
	}

	return cands
}

// filterSteepDownAreas drops open areas that can no longer yield a valid
// cluster (the scan has risen above their start, scaled by xi) and folds
// the running maximum into the survivors.
func filterSteepDownAreas(sdas []steepDownArea, mib, xc float64) []steepDownArea {
	if math.IsInf(mib, 1) {
		return nil
	}
	kept := sdas[:0]
	for _, d := range sdas {
		if d.maximum*xc >= mib {
			if mib > d.mib {
				d.mib = mib
			}
			kept = append(kept, d)
		}
	}
	return kept
}
