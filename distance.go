package optics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// DistanceMetric provides distance computation with optional reduced distance
// for tree-pruning optimizations (e.g., squared Euclidean skips sqrt).
// DistToRdist and RdistToDist convert between the two spaces.
type DistanceMetric interface {
	Distance(a, b []float64) float64
	ReducedDistance(a, b []float64) float64
	DistToRdist(d float64) float64
	RdistToDist(r float64) float64
}

// DistanceFunc adapts a plain function into a DistanceMetric.
// ReducedDistance delegates to the same function; the reduced space is
// the distance space itself.
type DistanceFunc func(a, b []float64) float64

func (f DistanceFunc) Distance(a, b []float64) float64        { return f(a, b) }
func (f DistanceFunc) ReducedDistance(a, b []float64) float64 { return f(a, b) }
func (DistanceFunc) DistToRdist(d float64) float64            { return d }
func (DistanceFunc) RdistToDist(r float64) float64            { return r }

// EuclideanMetric computes the Euclidean (L2) distance.
// ReducedDistance returns squared Euclidean distance (skips sqrt).
type EuclideanMetric struct{}

func (EuclideanMetric) Distance(a, b []float64) float64 {
	return math.Sqrt(euclideanSumOfSquares(a, b))
}

func (EuclideanMetric) ReducedDistance(a, b []float64) float64 {
	return euclideanSumOfSquares(a, b)
}

func (EuclideanMetric) DistToRdist(d float64) float64 { return d * d }
func (EuclideanMetric) RdistToDist(r float64) float64 { return math.Sqrt(r) }

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// ManhattanMetric computes the Manhattan (L1 / city-block) distance.
type ManhattanMetric struct{}

func (ManhattanMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

func (m ManhattanMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (ManhattanMetric) DistToRdist(d float64) float64            { return d }
func (ManhattanMetric) RdistToDist(r float64) float64            { return r }

// ChebyshevMetric computes the Chebyshev (L-infinity) distance.
type ChebyshevMetric struct{}

func (ChebyshevMetric) Distance(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

func (m ChebyshevMetric) ReducedDistance(a, b []float64) float64 { return m.Distance(a, b) }
func (ChebyshevMetric) DistToRdist(d float64) float64            { return d }
func (ChebyshevMetric) RdistToDist(r float64) float64            { return r }

// MinkowskiMetric computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
// ReducedDistance returns sum(|a[i]-b[i]|^P) without the final root.
type MinkowskiMetric struct {
	P float64
}

func (m MinkowskiMetric) Distance(a, b []float64) float64 {
	if m.P < 1 {
		panic("MinkowskiMetric: P must be >= 1")
	}
	return floats.Distance(a, b, m.P)
}

func (m MinkowskiMetric) ReducedDistance(a, b []float64) float64 {
	return m.DistToRdist(m.Distance(a, b))
}

func (m MinkowskiMetric) DistToRdist(d float64) float64 { return math.Pow(d, m.P) }
func (m MinkowskiMetric) RdistToDist(r float64) float64 { return math.Pow(r, 1.0/m.P) }

// metricP returns the Minkowski exponent for the metric, defaulting to
// 2 for Euclidean and 1 for Manhattan.
func metricP(m DistanceMetric) float64 {
	switch v := m.(type) {
	case EuclideanMetric:
		return 2.0
	case ManhattanMetric:
		return 1.0
	case MinkowskiMetric:
		return v.P
	case ChebyshevMetric:
		return math.Inf(1)
	default:
		return 2.0 // fallback; Euclidean-like
	}
}
