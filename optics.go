package clustering

import (
	"runtime"

	"github.com/TrevorS/clustering/neighbors"
)

// Optics performs OPTICS (Ordering Points To Identify the Clustering
// Structure) density clustering.
//
// A fit visits every density-reachable point once and records, per point,
// the smallest reachability distance at which it was reached. Clusters
// and outliers are then read off that ordering by thresholding, which is
// cheap enough to repeat at different thresholds via Extract without
// recomputing the ordering.
//
// Configuration is fixed at construction. The metric is assumed
// symmetric, non-negative, and (for the spatial index pruning) to satisfy
// the triangle inequality; eps must be >= 0 and minSamples >= 1.
// Violations yield undefined but non-panicking results.
type Optics[T Float] struct {
	eps        T
	minSamples int
	metric     neighbors.Metric[T]

	ordered       []int
	reachability  []T
	neighborhoods []Neighborhood[T]
}

// NewOptics returns an Optics clusterer with the given build radius,
// minimum neighbor count for a core point, and metric. A nil metric
// defaults to Euclidean.
func NewOptics[T Float](eps T, minSamples int, metric neighbors.Metric[T]) *Optics[T] {
	if metric == nil {
		metric = neighbors.Euclidean[T]{}
	}
	return &Optics[T]{
		eps:        eps,
		minSamples: minSamples,
		metric:     metric,
	}
}

// DefaultOptics returns an Optics clusterer with eps 0.5, minSamples 5,
// and the Euclidean metric.
func DefaultOptics[T Float]() *Optics[T] {
	return NewOptics[T](0.5, 5, neighbors.Euclidean[T]{})
}

// Fit clusters the given points and returns the clusters found at the
// build radius, as a map from sequential cluster id to member point
// indices, plus the indices classified as outliers.
//
// Each element of points is one point; all points must share the same
// dimensionality. The rows are copied into a flat canonical layout
// before indexing, so the caller's slices are never retained. An empty
// point set yields empty clusters and outliers immediately, leaving any
// previously fitted ordering untouched.
func (o *Optics[T]) Fit(points [][]T) (map[int][]int, []int) {
	n := len(points)
	if n == 0 {
		return map[int][]int{}, []int{}
	}

	dims := len(points[0])
	data := make([]T, n*dims)
	for i, row := range points {
		copy(data[i*dims:(i+1)*dims], row)
	}

	o.run(data, n, dims)
	return o.extractAt(o.eps)
}

// Extract reruns only the extraction pass against the ordering and
// reachability values of the most recent Fit, at a caller-chosen
// threshold. eps must be <= the build radius for the neighborhood data
// to remain valid. Before any successful Fit it returns empty results.
func (o *Optics[T]) Extract(eps T) (map[int][]int, []int) {
	return o.extractAt(eps)
}

// run computes the neighborhoods and the reachability ordering for the
// flat row-major data.
func (o *Optics[T]) run(data []T, n, dims int) {
	tree := newIndex(data, n, dims, o.metric)
	o.neighborhoods = BuildNeighborhoods(tree, o.eps, runtime.NumCPU())

	o.ordered = make([]int, 0, n)
	o.reachability = make([]T, n)
	for i := range o.reachability {
		o.reachability[i] = nan[T]()
	}

	visited := make([]bool, n)
	for i := 0; i < n; i++ {
		if visited[i] || len(o.neighborhoods[i].Neighbors) < o.minSamples {
			continue
		}
		o.expand(i, data, dims, visited)
	}
}
