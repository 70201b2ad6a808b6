package optics

import (
	"fmt"
	"math"
	"runtime"
)

// IndexKind selects the spatial index implementation.
type IndexKind string

const (
	IndexAuto     IndexKind = "auto"
	IndexKDTree   IndexKind = "kdtree"
	IndexBallTree IndexKind = "balltree"
	IndexBrute    IndexKind = "brute"
)

// Mode selects how clusters are extracted from the Ordered Profile.
type Mode string

const (
	// ModeFlat cuts the profile at a single distance (EpsilonCut),
	// producing one flat level of clusters, equivalent to DBSCAN.
	ModeFlat Mode = "flat"

	// ModeXi detects steep density transitions (controlled by Xi) and
	// produces a hierarchy of nested clusters.
	ModeXi Mode = "xi"
)

// Config controls clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// MinPts is the number of neighbors a point needs within Epsilon to
	// have a defined core distance, and the minimum cluster size during
	// extraction. Must be >= 1. Default: 5.
	MinPts int

	// Epsilon is the maximum neighborhood radius considered by the
	// traversal. 0 or +Inf means unbounded. Smaller values speed up the
	// traversal but flatten the profile above the cutoff. Default: unbounded.
	Epsilon float64

	// Metric is the distance function used to measure point similarity.
	// Built-in: EuclideanMetric, ManhattanMetric, ChebyshevMetric,
	// MinkowskiMetric. Use DistanceFunc to wrap a custom function.
	// Default: EuclideanMetric.
	Metric DistanceMetric

	// Index selects the spatial index. "auto" picks a KD-tree for
	// axis-decomposable metrics, a ball tree for other triangle-inequality
	// metrics, and brute force for custom DistanceFunc metrics.
	// Default: "auto".
	Index IndexKind

	// LeafSize controls the maximum number of points in a spatial tree
	// leaf node. Larger values trade query precision for faster tree
	// construction. Only used with tree indexes. Default: 40.
	LeafSize int

	// ExtractionMode chooses between the flat (DBSCAN-equivalent) cut
	// and the hierarchical steep-transition extraction. Default: ModeXi.
	ExtractionMode Mode

	// EpsilonCut is the cut distance for ModeFlat. Must be > 0 and, when
	// Epsilon is bounded, <= Epsilon.
	EpsilonCut float64

	// Xi is the steepness ratio for ModeXi. Must be in (0, 1).
	// Default: 0.05.
	Xi float64

	// Workers controls the number of goroutines used for the core
	// distance stage. 0 means use runtime.NumCPU(). The traversal itself
	// is sequential. Default: 0 (auto).
	Workers int
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		MinPts:         5,
		Epsilon:        math.Inf(1),
		Metric:         EuclideanMetric{},
		Index:          IndexAuto,
		LeafSize:       40,
		ExtractionMode: ModeXi,
		Xi:             0.05,
	}
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = math.Inf(1)
	}
	if cfg.Metric == nil {
		cfg.Metric = EuclideanMetric{}
	}
	if cfg.Index == "" {
		cfg.Index = IndexAuto
	}
	if cfg.LeafSize == 0 {
		cfg.LeafSize = 40
	}
	if cfg.ExtractionMode == "" {
		cfg.ExtractionMode = ModeXi
	}
	if cfg.ExtractionMode == ModeXi && cfg.Xi == 0 {
		cfg.Xi = 0.05
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
}

// validateConfig checks that cfg fields are valid and returns a
// descriptive ErrInvalidConfig wrap if not.
func validateConfig(cfg *Config) error {
	if cfg.MinPts < 1 {
		return fmt.Errorf("%w: MinPts must be >= 1, got %d", ErrInvalidConfig, cfg.MinPts)
	}
	switch cfg.ExtractionMode {
	case ModeFlat:
		if cfg.EpsilonCut <= 0 {
			return fmt.Errorf("%w: EpsilonCut must be > 0 in flat mode, got %v", ErrInvalidConfig, cfg.EpsilonCut)
		}
		if cfg.EpsilonCut > cfg.Epsilon {
			return fmt.Errorf("%w: EpsilonCut %v exceeds Epsilon %v", ErrInvalidConfig, cfg.EpsilonCut, cfg.Epsilon)
		}
	case ModeXi:
		if cfg.Xi <= 0 || cfg.Xi >= 1 {
			return fmt.Errorf("%w: Xi must be in (0, 1), got %v", ErrInvalidConfig, cfg.Xi)
		}
	default:
		return fmt.Errorf("%w: invalid ExtractionMode %q", ErrInvalidConfig, cfg.ExtractionMode)
	}
	switch cfg.Index {
	case IndexAuto, IndexKDTree, IndexBallTree, IndexBrute:
		// valid
	default:
		return fmt.Errorf("%w: invalid Index %q", ErrInvalidConfig, cfg.Index)
	}
	if cfg.LeafSize < 1 {
		return fmt.Errorf("%w: LeafSize must be >= 1, got %d", ErrInvalidConfig, cfg.LeafSize)
	}
	return nil
}

// Result contains the output of one clustering request.
type Result struct {
	// Ordering is the Ordered Profile produced by the traversal. It may
	// be re-extracted with different parameters via ExtractDBSCAN or
	// ExtractXi without re-running the traversal.
	Ordering *Ordering

	// Tree is the extracted cluster hierarchy (a single level in
	// ModeFlat). Never nil; an extraction that finds no clusters yields
	// a valid empty tree.
	Tree *ClusterTree

	// Labels assigns each input point the id of the deepest cluster
	// containing it, or 0 for noise.
	Labels []int
}

// Run clusters the given points. Each element of data is one point; all
// points must have the same dimensionality and finite coordinates.
// An empty data slice yields an empty profile and an empty tree.
func Run(data [][]float64, cfg Config) (*Result, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	o, err := buildProfile(data, cfg)
	if err != nil {
		return nil, err
	}

	var tree *ClusterTree
	switch cfg.ExtractionMode {
	case ModeFlat:
		tree, err = ExtractDBSCAN(o, cfg.EpsilonCut)
	default:
		tree, err = ExtractXi(o, cfg.Xi)
	}
	if err != nil {
		return nil, err
	}

	return &Result{Ordering: o, Tree: tree, Labels: tree.Labels(o)}, nil
}

// BuildProfile validates the input, builds the spatial index, computes
// core distances, and runs the traversal, returning the Ordered Profile
// without extracting clusters. Use it when the same profile will be
// re-extracted with several parameter sets (the profile is read-only,
// so re-extractions may run concurrently).
func BuildProfile(data [][]float64, cfg Config) (*Ordering, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return buildProfile(data, cfg)
}

func buildProfile(data [][]float64, cfg Config) (*Ordering, error) {
	n := len(data)
	if n == 0 {
		return &Ordering{minPts: cfg.MinPts, epsilon: cfg.Epsilon}, nil
	}

	dims := len(data[0])
	if dims == 0 {
		return nil, fmt.Errorf("%w: zero-dimensional points", ErrInvalidInput)
	}
	flatData := make([]float64, n*dims)
	for i, row := range data {
		if len(row) != dims {
			return nil, fmt.Errorf("%w: point %d has %d coordinates, expected %d",
				ErrInvalidInput, i, len(row), dims)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: point %d has non-finite coordinate %v at dimension %d",
					ErrInvalidInput, i, v, j)
			}
		}
		copy(flatData[i*dims:], row)
	}

	tree, err := buildIndex(flatData, n, dims, cfg)
	if err != nil {
		return nil, err
	}

	core := ComputeCoreDistancesParallel(tree, cfg.MinPts, cfg.Epsilon, cfg.Workers)
	return BuildOrdering(tree, core, cfg.MinPts, cfg.Epsilon)
}

// buildIndex resolves IndexAuto into a concrete index based on the
// metric, and validates that user-forced choices are compatible with it.
func buildIndex(flatData []float64, n, dims int, cfg Config) (SpatialTree, error) {
	kind := cfg.Index
	if kind == IndexAuto {
		switch {
		case KDTreeValidMetric(cfg.Metric):
			kind = IndexKDTree
		case BallTreeValidMetric(cfg.Metric):
			kind = IndexBallTree
		default:
			kind = IndexBrute
		}
	}

	switch kind {
	case IndexKDTree:
		if !KDTreeValidMetric(cfg.Metric) {
			return nil, fmt.Errorf("%w: metric %T is not supported by the KD-tree index", ErrInvalidConfig, cfg.Metric)
		}
		return NewKDTree(flatData, n, dims, cfg.Metric, cfg.LeafSize), nil
	case IndexBallTree:
		if !BallTreeValidMetric(cfg.Metric) {
			return nil, fmt.Errorf("%w: metric %T is not supported by the ball tree index", ErrInvalidConfig, cfg.Metric)
		}
		return NewBallTree(flatData, n, dims, cfg.Metric, cfg.LeafSize), nil
	default:
		return newBruteTree(flatData, n, dims, cfg.Metric), nil
	}
}
