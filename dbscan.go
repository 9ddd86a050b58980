package clustering

import (
	"runtime"

	"github.com/TrevorS/clustering/neighbors"
)

// DBSCAN clusters points by direct density connectivity: core points
// within eps of each other share a cluster, and non-core points within
// eps of a core point join that core point's cluster as border points.
//
// Unlike Optics, every input index appears in the result, either in a
// cluster or in the outlier list. Border points reachable from several
// clusters are claimed by whichever cluster's expansion reaches them
// first.
type DBSCAN[T Float] struct {
	eps        T
	minSamples int
	metric     neighbors.Metric[T]
}

// NewDBSCAN returns a DBSCAN clusterer with the given neighborhood
// radius, core-point threshold, and metric. A nil metric defaults to
// Euclidean.
func NewDBSCAN[T Float](eps T, minSamples int, metric neighbors.Metric[T]) *DBSCAN[T] {
	if metric == nil {
		metric = neighbors.Euclidean[T]{}
	}
	return &DBSCAN[T]{eps: eps, minSamples: minSamples, metric: metric}
}

// DefaultDBSCAN returns a DBSCAN clusterer with eps 0.5, minSamples 5,
// and the Euclidean metric.
func DefaultDBSCAN[T Float]() *DBSCAN[T] {
	return NewDBSCAN[T](0.5, 5, nil)
}

// Fit clusters points and returns the clusters keyed by order of
// discovery plus the outliers in ascending index order. Empty input
// yields an empty cluster map and an empty outlier list.
func (d *DBSCAN[T]) Fit(points [][]T) (map[int][]int, []int) {
	n := len(points)
	if n == 0 {
		return map[int][]int{}, []int{}
	}
	dims := len(points[0])

	data := make([]T, 0, n*dims)
	for _, p := range points {
		data = append(data, p...)
	}

	tree := newIndex(data, n, dims, d.metric)
	nbs := BuildNeighborhoods(tree, d.eps, runtime.NumCPU())

	clusters := map[int][]int{}
	visited := make([]bool, n)

	for i := 0; i < n; i++ {
		if visited[i] || len(nbs[i].Neighbors) < d.minSamples {
			continue
		}

		cid := len(clusters)
		cluster := []int{}
		stack := []int{i}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if visited[cur] {
				continue
			}
			visited[cur] = true
			cluster = append(cluster, cur)

			// Border points join the cluster but contribute no
			// further neighbors.
			if len(nbs[cur].Neighbors) < d.minSamples {
				continue
			}
			for _, q := range nbs[cur].Neighbors {
				if !visited[q] {
					stack = append(stack, q)
				}
			}
		}
		clusters[cid] = cluster
	}

	// Every visited point was appended to a cluster, so the unvisited
	// remainder is exactly the outlier set.
	outliers := []int{}
	for i := 0; i < n; i++ {
		if !visited[i] {
			outliers = append(outliers, i)
		}
	}

	return clusters, outliers
}
