package neighbors

import "math"

// Metric provides distance computation with a reduced distance for
// tree-pruning optimizations (e.g., squared Euclidean skips sqrt).
// DistToRdist and RdistToDist convert between the two scales; they are
// identity functions for metrics whose reduced distance equals the
// true distance.
type Metric[T Float] interface {
	Distance(a, b []T) T
	ReducedDistance(a, b []T) T
	DistToRdist(d T) T
	RdistToDist(rd T) T
}

// MetricFunc adapts a plain function into a Metric.
// ReducedDistance delegates to the same function and the scale
// conversions are identities.
type MetricFunc[T Float] func(a, b []T) T

func (f MetricFunc[T]) Distance(a, b []T) T        { return f(a, b) }
func (f MetricFunc[T]) ReducedDistance(a, b []T) T { return f(a, b) }
func (f MetricFunc[T]) DistToRdist(d T) T          { return d }
func (f MetricFunc[T]) RdistToDist(rd T) T         { return rd }

// Euclidean computes the Euclidean (L2) distance.
// ReducedDistance returns squared Euclidean distance (skips sqrt).
type Euclidean[T Float] struct{}

func (Euclidean[T]) Distance(a, b []T) T {
	return T(math.Sqrt(float64(euclideanSumOfSquares(a, b))))
}

func (Euclidean[T]) ReducedDistance(a, b []T) T { return euclideanSumOfSquares(a, b) }
func (Euclidean[T]) DistToRdist(d T) T          { return d * d }
func (Euclidean[T]) RdistToDist(rd T) T         { return T(math.Sqrt(float64(rd))) }

func euclideanSumOfSquares[T Float](a, b []T) T {
	var sum T
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// Manhattan computes the Manhattan (L1 / city-block) distance.
type Manhattan[T Float] struct{}

func (Manhattan[T]) Distance(a, b []T) T {
	var sum T
	for i := range a {
		sum += absDiff(a[i], b[i])
	}
	return sum
}

func (m Manhattan[T]) ReducedDistance(a, b []T) T { return m.Distance(a, b) }
func (Manhattan[T]) DistToRdist(d T) T            { return d }
func (Manhattan[T]) RdistToDist(rd T) T           { return rd }

// Chebyshev computes the Chebyshev (L-infinity) distance.
type Chebyshev[T Float] struct{}

func (Chebyshev[T]) Distance(a, b []T) T {
	var maxVal T
	for i := range a {
		if v := absDiff(a[i], b[i]); v > maxVal {
			maxVal = v
		}
	}
	return maxVal
}

func (m Chebyshev[T]) ReducedDistance(a, b []T) T { return m.Distance(a, b) }
func (Chebyshev[T]) DistToRdist(d T) T            { return d }
func (Chebyshev[T]) RdistToDist(rd T) T           { return rd }

// Minkowski computes the Minkowski distance parameterized by P.
// P must be >= 1. Panics if P < 1.
// ReducedDistance returns sum(|a[i]-b[i]|^P) without the final root.
type Minkowski[T Float] struct {
	P float64
}

func (m Minkowski[T]) Distance(a, b []T) T {
	return T(math.Pow(float64(m.rawSum(a, b)), 1.0/m.P))
}

func (m Minkowski[T]) ReducedDistance(a, b []T) T { return m.rawSum(a, b) }

func (m Minkowski[T]) DistToRdist(d T) T {
	return T(math.Pow(float64(d), m.P))
}

func (m Minkowski[T]) RdistToDist(rd T) T {
	return T(math.Pow(float64(rd), 1.0/m.P))
}

func (m Minkowski[T]) rawSum(a, b []T) T {
	if m.P < 1 {
		panic("Minkowski: P must be >= 1")
	}
	var sum T
	for i := range a {
		sum += T(math.Pow(float64(absDiff(a[i], b[i])), m.P))
	}
	return sum
}

func absDiff[T Float](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}

// KDTreeValidMetric reports whether the metric supports KD-tree
// acceleration. KD-trees require metrics that decompose along coordinate
// axes: Euclidean, Manhattan, Chebyshev, Minkowski. Metrics that fail
// this test belong in a ball tree, which only assumes the triangle
// inequality.
func KDTreeValidMetric[T Float](m Metric[T]) bool {
	switch m.(type) {
	case Euclidean[T], Manhattan[T], Chebyshev[T], Minkowski[T]:
		return true
	default:
		return false
	}
}
