package optics

import (
	"errors"
	"strings"
	"testing"
)

func TestBuildClusterTree_Empty(t *testing.T) {
	tree := buildClusterTree(nil)
	if !tree.Empty() || tree.Len() != 0 {
		t.Errorf("expected an empty tree, got Len() = %d", tree.Len())
	}
	if got := tree.TopLevel(); len(got) != 0 {
		t.Errorf("TopLevel() = %v, want empty", got)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("empty tree failed validation: %v", err)
	}
}

func TestBuildClusterTree_Nesting(t *testing.T) {
	cands := []interval{{0, 4}, {0, 10}, {5, 10}}
	tree := buildClusterTree(cands)

	if tree.Len() != 3 {
		t.Fatalf("Len() = %d, want 3:\n%s", tree.Len(), tree)
	}
	top := tree.TopLevel()
	if len(top) != 1 || top[0].Start != 0 || top[0].End != 10 {
		t.Fatalf("unexpected top level:\n%s", tree)
	}
	kids := tree.Children(top[0])
	if len(kids) != 2 {
		t.Fatalf("root has %d children, want 2", len(kids))
	}
	if kids[0].Start != 0 || kids[0].End != 4 || kids[1].Start != 5 || kids[1].End != 10 {
		t.Errorf("children out of profile order: %s, %s", kids[0], kids[1])
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestBuildClusterTree_IDAssignment(t *testing.T) {
	// Ids follow finalization order: ascending end, then descending
	// length, starting from 1.
	tree := buildClusterTree([]interval{{0, 4}, {0, 10}, {5, 10}})

	for id, want := range map[int]interval{
		1: {0, 4},
		2: {0, 10},
		3: {5, 10},
	} {
		c := tree.ByID(id)
		if c == nil {
			t.Fatalf("ByID(%d) = nil:\n%s", id, tree)
		}
		if c.Start != want.start || c.End != want.end {
			t.Errorf("id %d has range [%d..%d], want [%d..%d]",
				id, c.Start, c.End, want.start, want.end)
		}
	}
	if tree.ByID(0) != nil {
		t.Error("id 0 is reserved for noise and must not be assigned")
	}
	if tree.ByID(4) != nil {
		t.Error("ByID(4) should be nil for a three-cluster tree")
	}
}

func TestBuildClusterTree_DuplicatesCollapsed(t *testing.T) {
	tree := buildClusterTree([]interval{{0, 5}, {0, 5}, {0, 5}})
	if tree.Len() != 1 {
		t.Errorf("Len() = %d, want 1 after collapsing duplicates:\n%s", tree.Len(), tree)
	}
}

func TestBuildClusterTree_PartialOverlapDiscarded(t *testing.T) {
	// [3..8] partially overlaps the already-placed [0..5] and is dropped.
	tree := buildClusterTree([]interval{{0, 5}, {3, 8}})
	if tree.Len() != 1 {
		t.Fatalf("Len() = %d, want 1:\n%s", tree.Len(), tree)
	}
	c := tree.TopLevel()[0]
	if c.Start != 0 || c.End != 5 {
		t.Errorf("kept cluster [%d..%d], want the larger [0..5]", c.Start, c.End)
	}
	if err := tree.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestCluster_SizeExcludesChildRanges(t *testing.T) {
	tree := buildClusterTree([]interval{{0, 9}, {1, 3}, {6, 8}})
	root := tree.TopLevel()[0]

	if root.Length() != 10 {
		t.Errorf("Length() = %d, want 10", root.Length())
	}
	// 10 positions minus two 3-wide children.
	if root.Size() != 4 {
		t.Errorf("Size() = %d, want 4", root.Size())
	}
	for _, k := range tree.Children(root) {
		if k.Size() != 3 {
			t.Errorf("child %s Size() = %d, want 3", k, k.Size())
		}
	}
}

func TestClusterTree_Walk(t *testing.T) {
	tree := buildClusterTree([]interval{{0, 10}, {0, 4}, {5, 10}, {6, 9}})

	var order []int
	tree.Walk(func(c *Cluster) bool {
		order = append(order, c.Start)
		return true
	})
	// Depth-first, parents before children, siblings in profile order.
	want := []int{0, 0, 5, 6}
	if len(order) != len(want) {
		t.Fatalf("visited %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("visited %v, want %v", order, want)
		}
	}

	// Early stop.
	visits := 0
	tree.Walk(func(*Cluster) bool {
		visits++
		return false
	})
	if visits != 1 {
		t.Errorf("early-stopping walk visited %d clusters, want 1", visits)
	}
}

func TestClusterTree_LabelsDeepestWins(t *testing.T) {
	o := profileFromReach(make([]float64, 11), nil, 2)
	tree := buildClusterTree([]interval{{0, 10}, {2, 5}})

	labels := tree.Labels(o)
	root, child := tree.TopLevel()[0], tree.Children(tree.TopLevel()[0])[0]
	for pos := 0; pos <= 10; pos++ {
		want := root.ID
		if pos >= 2 && pos <= 5 {
			want = child.ID
		}
		if labels[pos] != want {
			t.Errorf("labels[%d] = %d, want %d", pos, labels[pos], want)
		}
	}
}

func TestClusterTree_Equal(t *testing.T) {
	a := buildClusterTree([]interval{{0, 10}, {0, 4}})
	b := buildClusterTree([]interval{{0, 4}, {0, 10}}) // order must not matter
	c := buildClusterTree([]interval{{0, 10}, {0, 5}})

	if !a.Equal(b) {
		t.Errorf("trees from reordered candidates differ:\n%s\nvs\n%s", a, b)
	}
	if a.Equal(c) {
		t.Errorf("trees with different ranges compare equal:\n%s\nvs\n%s", a, c)
	}
}

func TestClusterTree_String(t *testing.T) {
	tree := buildClusterTree([]interval{{0, 10}, {0, 4}})
	s := tree.String()
	if !strings.Contains(s, "[0..10]") || !strings.Contains(s, "[0..4]") {
		t.Errorf("String() missing cluster ranges:\n%s", s)
	}
	// Child lines are indented under the root.
	if !strings.Contains(s, "\n  C") {
		t.Errorf("String() missing child indentation:\n%s", s)
	}
}

func TestClusterTree_ValidateCatchesCorruption(t *testing.T) {
	tree := buildClusterTree([]interval{{0, 10}, {0, 4}})
	if err := tree.Validate(); err != nil {
		t.Fatalf("valid tree failed validation: %v", err)
	}

	// Corrupt a range and expect a computation error.
	tree.clusters[1].Start = 20
	if err := tree.Validate(); !errors.Is(err, ErrComputation) {
		t.Errorf("err = %v, want ErrComputation for a corrupted range", err)
	}
}
