package optics

import (
	"math"
	"testing"
)

// buildTestOrdering is a helper that runs the full profile pipeline on
// raw 2D points with an unbounded search radius.
func buildTestOrdering(t *testing.T, pts [][2]float64, minPts int) *Ordering {
	t.Helper()
	data := make([]float64, 0, len(pts)*2)
	for _, p := range pts {
		data = append(data, p[0], p[1])
	}
	tree := NewKDTree(data, len(pts), 2, EuclideanMetric{}, 4)
	core := ComputeCoreDistances(tree, minPts, math.Inf(1))
	o, err := BuildOrdering(tree, core, minPts, math.Inf(1))
	if err != nil {
		t.Fatalf("BuildOrdering failed: %v", err)
	}
	return o
}

func TestBuildOrdering_Empty(t *testing.T) {
	tree := NewKDTree(nil, 0, 2, EuclideanMetric{}, 4)
	o, err := BuildOrdering(tree, nil, 2, math.Inf(1))
	if err != nil {
		t.Fatalf("BuildOrdering failed: %v", err)
	}
	if o.Len() != 0 {
		t.Errorf("Len() = %d, want 0", o.Len())
	}
}

func TestBuildOrdering_SinglePoint(t *testing.T) {
	o := buildTestOrdering(t, [][2]float64{{1, 1}}, 2)
	if o.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", o.Len())
	}
	p := o.At(0)
	if p.Index != 0 {
		t.Errorf("Index = %d, want 0", p.Index)
	}
	if !IsUndefined(p.Reachability) {
		t.Errorf("Reachability = %v, want Undefined", p.Reachability)
	}
	if !IsUndefined(p.CoreDistance) {
		t.Errorf("CoreDistance = %v, want Undefined", p.CoreDistance)
	}
	if p.Predecessor != -1 {
		t.Errorf("Predecessor = %d, want -1", p.Predecessor)
	}
}

func TestBuildOrdering_IsPermutation(t *testing.T) {
	pts := make([][2]float64, 0, 60)
	data := randomPoints(60, 2, 9)
	for i := 0; i < 60; i++ {
		pts = append(pts, [2]float64{data[i*2], data[i*2+1]})
	}
	o := buildTestOrdering(t, pts, 4)

	if o.Len() != 60 {
		t.Fatalf("Len() = %d, want 60", o.Len())
	}
	seen := make([]bool, 60)
	for i := 0; i < o.Len(); i++ {
		idx := o.At(i).Index
		if idx < 0 || idx >= 60 {
			t.Fatalf("position %d: index %d out of range", i, idx)
		}
		if seen[idx] {
			t.Fatalf("index %d appears twice in the profile", idx)
		}
		seen[idx] = true
	}
}

func TestBuildOrdering_ChainStartsUndefined(t *testing.T) {
	// Two well-separated triples with a bounded search radius: the
	// traversal exhausts the first group, then restarts at the second.
	// Each chain start has Undefined reachability and no predecessor.
	data := []float64{
		0, 0, 0, 1, 1, 0,
		100, 100, 100, 101, 101, 100,
	}
	tree := NewKDTree(data, 6, 2, EuclideanMetric{}, 4)
	core := ComputeCoreDistances(tree, 2, 5.0)
	o, err := BuildOrdering(tree, core, 2, 5.0)
	if err != nil {
		t.Fatalf("BuildOrdering failed: %v", err)
	}

	first := o.At(0)
	if first.Index != 0 || !IsUndefined(first.Reachability) || first.Predecessor != -1 {
		t.Errorf("first entry = %+v, want index 0 with Undefined reachability", first)
	}

	starts := 0
	for i := 0; i < o.Len(); i++ {
		if IsUndefined(o.At(i).Reachability) {
			starts++
			if o.At(i).Predecessor != -1 {
				t.Errorf("chain start at position %d has predecessor %d, want -1",
					i, o.At(i).Predecessor)
			}
		}
	}
	if starts != 2 {
		t.Errorf("found %d chain starts, want 2", starts)
	}
	// The second chain starts at the smallest index of the far group.
	if got := o.At(3).Index; got != 3 {
		t.Errorf("position 3 holds index %d, want 3 (start of second chain)", got)
	}
}

func TestBuildOrdering_ReachabilityMatchesPredecessor(t *testing.T) {
	data := randomPoints(80, 2, 31)
	pts := make([][2]float64, 80)
	for i := range pts {
		pts[i] = [2]float64{data[i*2], data[i*2+1]}
	}
	o := buildTestOrdering(t, pts, 5)

	tree := NewKDTree(data, 80, 2, EuclideanMetric{}, 4)
	core := ComputeCoreDistances(tree, 5, math.Inf(1))

	m := EuclideanMetric{}
	for i := 0; i < o.Len(); i++ {
		p := o.At(i)
		if p.Predecessor == -1 {
			continue
		}
		a := data[p.Index*2 : p.Index*2+2]
		b := data[p.Predecessor*2 : p.Predecessor*2+2]
		d := m.Distance(a, b)
		want := d
		if core[p.Predecessor] > want {
			want = core[p.Predecessor]
		}
		if p.Reachability != want {
			t.Errorf("point %d: reachability %v, want max(core(pred), dist) = %v",
				p.Index, p.Reachability, want)
		}
	}
}

func TestBuildOrdering_KnownScenario(t *testing.T) {
	// Four corners of a unit square plus one far outlier. With minPts=2
	// the cluster is traversed first and the outlier comes last with
	// Undefined reachability.
	pts := [][2]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {50, 50}}
	o := buildTestOrdering(t, pts, 2)

	wantOrder := []int{0, 1, 2, 3, 4}
	for i, want := range wantOrder {
		if got := o.At(i).Index; got != want {
			t.Fatalf("position %d: index %d, want %d", i, got, want)
		}
	}

	if !IsUndefined(o.At(0).Reachability) {
		t.Errorf("first point reachability = %v, want Undefined", o.At(0).Reachability)
	}
	for i := 1; i <= 3; i++ {
		if o.At(i).Reachability != 1 {
			t.Errorf("position %d: reachability %v, want 1", i, o.At(i).Reachability)
		}
	}
	// The outlier is reached from the cluster at a large distance.
	last := o.At(4)
	if last.Index != 4 {
		t.Fatalf("last position holds index %d, want 4", last.Index)
	}
	if IsUndefined(last.Reachability) || last.Reachability < 49 {
		t.Errorf("outlier reachability = %v, want the large cluster-to-outlier distance",
			last.Reachability)
	}
}

func TestBuildOrdering_EpsilonLimitsReach(t *testing.T) {
	// With a small epsilon the far point is never offered a reachability.
	pts := [][2]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {50, 50}}
	data := make([]float64, 0, 10)
	for _, p := range pts {
		data = append(data, p[0], p[1])
	}
	tree := NewKDTree(data, 5, 2, EuclideanMetric{}, 4)
	core := ComputeCoreDistances(tree, 2, 2.0)
	o, err := BuildOrdering(tree, core, 2, 2.0)
	if err != nil {
		t.Fatalf("BuildOrdering failed: %v", err)
	}

	if o.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", o.Len())
	}
	last := o.At(4)
	if last.Index != 4 {
		t.Fatalf("last position holds index %d, want 4", last.Index)
	}
	if !IsUndefined(last.Reachability) {
		t.Errorf("outlier reachability = %v, want Undefined under bounded epsilon",
			last.Reachability)
	}
	if !IsUndefined(last.CoreDistance) {
		t.Errorf("outlier core distance = %v, want Undefined", last.CoreDistance)
	}
}

func TestBuildOrdering_DeterministicAcrossIndexes(t *testing.T) {
	n := 120
	data := randomPoints(n, 3, 77)

	trees := []SpatialTree{
		NewKDTree(data, n, 3, EuclideanMetric{}, 6),
		NewBallTree(data, n, 3, EuclideanMetric{}, 6),
		newBruteTree(data, n, 3, EuclideanMetric{}),
	}

	var ref *Ordering
	for ti, tree := range trees {
		core := ComputeCoreDistances(tree, 5, math.Inf(1))
		o, err := BuildOrdering(tree, core, 5, math.Inf(1))
		if err != nil {
			t.Fatalf("tree %d: BuildOrdering failed: %v", ti, err)
		}
		if ref == nil {
			ref = o
			continue
		}
		if o.Len() != ref.Len() {
			t.Fatalf("tree %d: Len() = %d, want %d", ti, o.Len(), ref.Len())
		}
		for i := 0; i < o.Len(); i++ {
			if o.At(i) != ref.At(i) {
				t.Fatalf("tree %d: profile diverges at position %d: %+v vs %+v",
					ti, i, o.At(i), ref.At(i))
			}
		}
	}
}

func TestOrdering_ReachabilityPlot(t *testing.T) {
	pts := [][2]float64{{0, 0}, {0, 1}, {1, 0}, {1, 1}, {50, 50}}
	o := buildTestOrdering(t, pts, 2)

	plot := o.ReachabilityPlot(99)
	if len(plot) != o.Len() {
		t.Fatalf("plot length %d, want %d", len(plot), o.Len())
	}
	if plot[0] != 99 {
		t.Errorf("plot[0] = %v, want ceiling 99 for Undefined", plot[0])
	}
	for i := 1; i <= 3; i++ {
		if plot[i] != 1 {
			t.Errorf("plot[%d] = %v, want 1", i, plot[i])
		}
	}
}

func TestOrdering_Accessors(t *testing.T) {
	pts := [][2]float64{{0, 0}, {0, 1}, {1, 0}}
	data := []float64{0, 0, 0, 1, 1, 0}
	tree := NewKDTree(data, len(pts), 2, EuclideanMetric{}, 4)
	core := ComputeCoreDistances(tree, 2, 5.0)
	o, err := BuildOrdering(tree, core, 2, 5.0)
	if err != nil {
		t.Fatalf("BuildOrdering failed: %v", err)
	}
	if o.MinPts() != 2 {
		t.Errorf("MinPts() = %d, want 2", o.MinPts())
	}
	if o.Epsilon() != 5.0 {
		t.Errorf("Epsilon() = %v, want 5", o.Epsilon())
	}
}
