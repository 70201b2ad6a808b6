package optics

import (
	"testing"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// makeBlobs samples perBlob points around each center from an isotropic
// Gaussian with the given sigma. The fixed seed keeps the dataset
// identical across runs.
func makeBlobs(centers [][2]float64, perBlob int, sigma float64, seed uint64) [][]float64 {
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: rand.NewSource(seed)}
	data := make([][]float64, 0, len(centers)*perBlob)
	for _, c := range centers {
		for i := 0; i < perBlob; i++ {
			data = append(data, []float64{c[0] + noise.Rand(), c[1] + noise.Rand()})
		}
	}
	return data
}

var blobCenters = [][2]float64{{0, 0}, {12, 0}, {0, 12}}

func TestRun_FlatThreeBlobs(t *testing.T) {
	data := makeBlobs(blobCenters, 40, 0.3, 1)

	cfg := DefaultConfig()
	cfg.MinPts = 5
	cfg.ExtractionMode = ModeFlat
	cfg.EpsilonCut = 1.5

	res, err := Run(data, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	top := res.Tree.TopLevel()
	if len(top) != 3 {
		t.Fatalf("got %d top-level clusters, want 3:\n%s", len(top), res.Tree)
	}
	for _, c := range top {
		if c.Size() < 35 {
			t.Errorf("cluster %s unexpectedly small", c)
		}
		if c.NumberOfChildren() != 0 {
			t.Errorf("flat extraction produced children: %s", c)
		}
	}

	noise := 0
	for _, l := range res.Labels {
		if l == 0 {
			noise++
		}
	}
	if noise > 5 {
		t.Errorf("%d noise points out of %d, want at most 5", noise, len(res.Labels))
	}

	// Points of the same blob that are non-noise share a label, and no
	// label crosses blobs.
	for blob := 0; blob < 3; blob++ {
		seen := map[int]bool{}
		for i := blob * 40; i < (blob+1)*40; i++ {
			if res.Labels[i] != 0 {
				seen[res.Labels[i]] = true
			}
		}
		if len(seen) != 1 {
			t.Errorf("blob %d spans labels %v, want exactly one", blob, seen)
		}
	}
}

func TestRun_XiThreeBlobs(t *testing.T) {
	data := makeBlobs(blobCenters, 40, 0.3, 1)

	cfg := DefaultConfig()
	cfg.MinPts = 5

	res, err := Run(data, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := res.Tree.Validate(); err != nil {
		t.Fatalf("Validate failed: %v\n%s", err, res.Tree)
	}
	if res.Tree.Len() < 3 {
		t.Fatalf("got %d clusters, want at least one per blob:\n%s", res.Tree.Len(), res.Tree)
	}

	// Deepest labels never cross blob boundaries.
	labelBlob := map[int]int{}
	for blob := 0; blob < 3; blob++ {
		for i := blob * 40; i < (blob+1)*40; i++ {
			l := res.Labels[i]
			if l == 0 {
				continue
			}
			if prev, ok := labelBlob[l]; ok && prev != blob {
				t.Fatalf("label %d appears in blobs %d and %d", l, prev, blob)
			}
			labelBlob[l] = blob
		}
	}
}

func TestRun_GoldenDeterminism(t *testing.T) {
	data := makeBlobs(blobCenters, 30, 0.3, 7)

	cfg := DefaultConfig()
	cfg.MinPts = 5
	cfg.Workers = 4

	first, err := Run(data, cfg)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	for run := 0; run < 3; run++ {
		res, err := Run(data, cfg)
		if err != nil {
			t.Fatalf("run %d failed: %v", run, err)
		}
		if !res.Tree.Equal(first.Tree) {
			t.Fatalf("run %d produced a different tree:\n%s\nvs\n%s", run, res.Tree, first.Tree)
		}
		for i := 0; i < res.Ordering.Len(); i++ {
			if res.Ordering.At(i) != first.Ordering.At(i) {
				t.Fatalf("run %d: profile diverges at position %d", run, i)
			}
		}
	}
}
