// Package optics implements OPTICS (Ordering Points To Identify the
// Clustering Structure) with hierarchical cluster extraction.
//
// OPTICS computes a density-based ordering of the input points, the
// Ordered Profile, annotating each point with its reachability and core
// distances. Clusters are then extracted from the profile either by a
// flat distance cut (equivalent to a DBSCAN run at that radius) or by
// the steepness-based xi method, which detects valleys in the
// reachability profile and produces a tree of nested clusters.
//
// Basic usage:
//
//	cfg := optics.DefaultConfig()
//	cfg.MinPts = 10
//	result, err := optics.Run(points, cfg)
//	// result.Labels[i] is the cluster ID for point i (0 = noise)
//	// result.Tree is the cluster hierarchy
//	// result.Ordering is the reachability profile
//
// The profile can be re-extracted with different parameters without
// re-running the traversal:
//
//	o, err := optics.BuildProfile(points, cfg)
//	flat, err := optics.ExtractDBSCAN(o, 0.5)
//	deep, err := optics.ExtractXi(o, 0.03)
//
// The spatial index and the profile are immutable once built, so
// independent extractions may run concurrently on the same profile.
//
// # Index selection
//
// By default (Index: "auto"), Run picks the spatial index based on the
// metric: a KD-tree for axis-decomposable metrics, a ball tree for
// other triangle-inequality metrics, and a brute-force scan for custom
// DistanceFunc metrics. Set Config.Index to force a specific index:
//
//	cfg.Index = optics.IndexKDTree
//	cfg.Index = optics.IndexBallTree
//	cfg.Index = optics.IndexBrute
package optics
