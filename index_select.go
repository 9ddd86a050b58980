package clustering

import "github.com/TrevorS/clustering/neighbors"

// defaultLeafSize balances construction cost against per-leaf scan cost
// for both tree types.
const defaultLeafSize = 40

// newIndex selects a spatial index for the metric. Axis-decomposable
// metrics get a KD-tree; anything else gets a ball tree, which relies
// only on the triangle inequality.
func newIndex[T Float](data []T, n, dims int, metric neighbors.Metric[T]) neighbors.Index[T] {
	if neighbors.KDTreeValidMetric(metric) {
		return neighbors.NewKDTree(data, n, dims, metric, defaultLeafSize)
	}
	return neighbors.NewBallTree(data, n, dims, metric, defaultLeafSize)
}
