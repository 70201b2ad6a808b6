package optics

import (
	"fmt"
	"sort"
	"strings"
)

// Cluster is one node of a ClusterTree: a contiguous range of positions
// in the Ordered Profile, a stable id (1-based; 0 is reserved for
// noise), a nesting level (0 = top), and child clusters whose ranges
// are disjoint proper subranges of this one. Clusters are immutable
// once the tree is built.
type Cluster struct {
	Start int // first profile position (inclusive)
	End   int // last profile position (inclusive)
	ID    int
	Level int

	children []int // arena indices of child clusters
	size     int   // points at this level, excluding child ranges
}

// ClusterID returns the stable cluster id (0 is never used; it marks noise).
func (c *Cluster) ClusterID() int { return c.ID }

// Length returns the width of the profile range, End - Start + 1.
func (c *Cluster) Length() int { return c.End - c.Start + 1 }

// Size returns the number of points belonging to the cluster at its own
// level: Length minus the points covered by child ranges.
func (c *Cluster) Size() int { return c.size }

// GetLevel returns the nesting level (0 = top).
func (c *Cluster) GetLevel() int { return c.Level }

// NumberOfChildren returns the number of direct child clusters.
func (c *Cluster) NumberOfChildren() int { return len(c.children) }

func (c *Cluster) String() string {
	return fmt.Sprintf("C%d [%d..%d] size=%d level=%d", c.ID, c.Start, c.End, c.size, c.Level)
}

// ClusterTree is the result of one extraction pass: an arena of cluster
// records plus the indices of the top-level clusters. The arena layout
// avoids parent/child ownership cycles and keeps traversal allocation-free.
// An extraction that finds no clusters returns a valid empty tree.
type ClusterTree struct {
	clusters []Cluster
	roots    []int
}

// Len returns the total number of clusters in the tree, all levels included.
func (t *ClusterTree) Len() int { return len(t.clusters) }

// Empty reports whether the tree holds no clusters.
func (t *ClusterTree) Empty() bool { return len(t.clusters) == 0 }

// TopLevel returns the level-0 clusters in profile order.
func (t *ClusterTree) TopLevel() []*Cluster {
	out := make([]*Cluster, len(t.roots))
	for i, r := range t.roots {
		out[i] = &t.clusters[r]
	}
	return out
}

// Children returns the direct children of c in profile order.
func (t *ClusterTree) Children(c *Cluster) []*Cluster {
	out := make([]*Cluster, len(c.children))
	for i, idx := range c.children {
		out[i] = &t.clusters[idx]
	}
	return out
}

// ByID returns the cluster with the given id, or nil if absent.
func (t *ClusterTree) ByID(id int) *Cluster {
	for i := range t.clusters {
		if t.clusters[i].ID == id {
			return &t.clusters[i]
		}
	}
	return nil
}

// Walk visits every cluster depth-first in profile order, parents before
// children. Traversal stops early if fn returns false.
func (t *ClusterTree) Walk(fn func(*Cluster) bool) {
	var visit func(idx int) bool
	visit = func(idx int) bool {
		c := &t.clusters[idx]
		if !fn(c) {
			return false
		}
		for _, ch := range c.children {
			if !visit(ch) {
				return false
			}
		}
		return true
	}
	for _, r := range t.roots {
		if !visit(r) {
			return
		}
	}
}

// Labels maps each original point index to the id of the deepest cluster
// containing its profile position, or 0 (noise) when no cluster does.
func (t *ClusterTree) Labels(o *Ordering) []int {
	labels := make([]int, o.Len())
	t.Walk(func(c *Cluster) bool {
		// Children are visited after their parent and overwrite it.
		for pos := c.Start; pos <= c.End; pos++ {
			labels[o.At(pos).Index] = c.ID
		}
		return true
	})
	return labels
}

// Equal reports whether two trees contain the same clusters with the
// same ranges, ids, levels, and child structure.
func (t *ClusterTree) Equal(other *ClusterTree) bool {
	if t.Len() != other.Len() || len(t.roots) != len(other.roots) {
		return false
	}
	for i := range t.clusters {
		a, b := &t.clusters[i], &other.clusters[i]
		if a.Start != b.Start || a.End != b.End || a.ID != b.ID ||
			a.Level != b.Level || a.size != b.size || len(a.children) != len(b.children) {
			return false
		}
		for j := range a.children {
			if a.children[j] != b.children[j] {
				return false
			}
		}
	}
	for i := range t.roots {
		if t.roots[i] != other.roots[i] {
			return false
		}
	}
	return true
}

func (t *ClusterTree) String() string {
	var b strings.Builder
	t.Walk(func(c *Cluster) bool {
		b.WriteString(strings.Repeat("  ", c.Level))
		b.WriteString(c.String())
		b.WriteByte('\n')
		return true
	})
	return b.String()
}

// Validate re-checks the structural invariants: start <= end, parents
// strictly contain children, sibling ranges are disjoint, levels
// increase by one per nesting step. Violations indicate a defect in the
// extraction and are reported as ErrComputation wraps.
func (t *ClusterTree) Validate() error {
	var check func(idx, level int) error
	check = func(idx, level int) error {
		c := &t.clusters[idx]
		if c.Start > c.End {
			return fmt.Errorf("%w: cluster %d has start %d > end %d", ErrComputation, c.ID, c.Start, c.End)
		}
		if c.Level != level {
			return fmt.Errorf("%w: cluster %d has level %d, expected %d", ErrComputation, c.ID, c.Level, level)
		}
		prevEnd := c.Start - 1
		for _, chIdx := range c.children {
			ch := &t.clusters[chIdx]
			if ch.Start < c.Start || ch.End > c.End || ch.Length() >= c.Length() {
				return fmt.Errorf("%w: cluster %d range [%d..%d] not strictly inside parent %d [%d..%d]",
					ErrComputation, ch.ID, ch.Start, ch.End, c.ID, c.Start, c.End)
			}
			if ch.Start <= prevEnd {
				return fmt.Errorf("%w: cluster %d overlaps its preceding sibling", ErrComputation, ch.ID)
			}
			prevEnd = ch.End
			if err := check(chIdx, level+1); err != nil {
				return err
			}
		}
		return nil
	}

	prevEnd := -1
	for _, r := range t.roots {
		c := &t.clusters[r]
		if c.Start <= prevEnd {
			return fmt.Errorf("%w: top-level cluster %d overlaps its predecessor", ErrComputation, c.ID)
		}
		prevEnd = c.End
		if err := check(r, 0); err != nil {
			return err
		}
	}
	return nil
}

// --- construction (extractors only) ---

// interval is a candidate cluster range over profile positions.
type interval struct {
	start, end int
}

func (iv interval) length() int { return iv.end - iv.start + 1 }

func (iv interval) contains(other interval) bool {
	return iv.start <= other.start && other.end <= iv.end
}

func (iv interval) disjoint(other interval) bool {
	return iv.end < other.start || other.end < iv.start
}

// buildClusterTree turns candidate intervals into a ClusterTree.
// Exact duplicates are collapsed; a candidate partially overlapping an
// already-placed one is discarded (larger candidates are placed first).
// Ids are assigned in finalization order: ascending end, then
// descending length, starting from 1.
func buildClusterTree(cands []interval) *ClusterTree {
	t := &ClusterTree{}
	if len(cands) == 0 {
		return t
	}

	// Dedupe.
	seen := make(map[interval]bool, len(cands))
	uniq := cands[:0]
	for _, iv := range cands {
		if !seen[iv] {
			seen[iv] = true
			uniq = append(uniq, iv)
		}
	}

	// Place larger intervals first so parents exist before children.
	sort.Slice(uniq, func(i, j int) bool {
		if uniq[i].length() != uniq[j].length() {
			return uniq[i].length() > uniq[j].length()
		}
		return uniq[i].start < uniq[j].start
	})

	type node struct {
		iv       interval
		children []*node
	}
	var forest []*node

	var place func(siblings *[]*node, iv interval) bool
	place = func(siblings *[]*node, iv interval) bool {
		for _, s := range *siblings {
			if s.iv.contains(iv) {
				return place(&s.children, iv)
			}
			if !s.iv.disjoint(iv) {
				return false // partial overlap: discard
			}
		}
		*siblings = append(*siblings, &node{iv: iv})
		return true
	}

	var placed []interval
	for _, iv := range uniq {
		if place(&forest, iv) {
			placed = append(placed, iv)
		}
	}

	// Assign ids in finalization order.
	sort.Slice(placed, func(i, j int) bool {
		if placed[i].end != placed[j].end {
			return placed[i].end < placed[j].end
		}
		return placed[i].length() > placed[j].length()
	})
	ids := make(map[interval]int, len(placed))
	for i, iv := range placed {
		ids[iv] = i + 1
	}

	// Flatten into the arena, children sorted by profile order.
	var flatten func(n *node, level int) int
	flatten = func(n *node, level int) int {
		idx := len(t.clusters)
		t.clusters = append(t.clusters, Cluster{
			Start: n.iv.start,
			End:   n.iv.end,
			ID:    ids[n.iv],
			Level: level,
		})
		sort.Slice(n.children, func(i, j int) bool {
			return n.children[i].iv.start < n.children[j].iv.start
		})
		covered := 0
		for _, ch := range n.children {
			chIdx := flatten(ch, level+1)
			t.clusters[idx].children = append(t.clusters[idx].children, chIdx)
			covered += ch.iv.length()
		}
		t.clusters[idx].size = n.iv.length() - covered
		return idx
	}

	sort.Slice(forest, func(i, j int) bool { return forest[i].iv.start < forest[j].iv.start })
	for _, root := range forest {
		t.roots = append(t.roots, flatten(root, 0))
	}

	return t
}
