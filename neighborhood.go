package clustering

import (
	"sync"

	"github.com/TrevorS/clustering/neighbors"
)

// Neighborhood holds the per-point output of the neighborhood
// construction step, indexed identically to the point set and immutable
// once built.
type Neighborhood[T Float] struct {
	// Neighbors lists the indices within the build radius of the point,
	// including the point's own index (it is at distance 0 from itself).
	Neighbors []int

	// CoreDistance is the distance from the point to its second-nearest
	// neighbor counting itself, i.e. to its nearest other point, when
	// the point has more than one neighbor; otherwise 0. It estimates
	// local sparsity and does not depend on the core-point threshold.
	CoreDistance T
}

// BuildNeighborhoods computes the Neighborhood of every point in the
// tree using radius queries at eps. The per-point computations share no
// mutable state, so they are split across numWorkers goroutines, each
// covering a contiguous range of indices and writing to private output
// slots. Falls back to a single-threaded pass if numWorkers <= 1.
//
// The result is identical for any worker count.
func BuildNeighborhoods[T Float](tree neighbors.Index[T], eps T, numWorkers int) []Neighborhood[T] {
	n := tree.NumPoints()
	out := make([]Neighborhood[T], n)
	if n == 0 {
		return out
	}

	if numWorkers <= 1 || n <= 1 {
		buildNeighborhoodRange(tree, eps, 0, n, out)
		return out
	}

	var wg sync.WaitGroup
	rowsPerWorker := (n + numWorkers - 1) / numWorkers

	for w := 0; w < numWorkers; w++ {
		startRow := w * rowsPerWorker
		endRow := startRow + rowsPerWorker
		if endRow > n {
			endRow = n
		}
		if startRow >= n {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			buildNeighborhoodRange(tree, eps, start, end, out)
		}(startRow, endRow)
	}

	wg.Wait()
	return out
}

// buildNeighborhoodRange fills out[start:end] with the neighborhoods of
// the points in [start, end).
func buildNeighborhoodRange[T Float](tree neighbors.Index[T], eps T, start, end int, out []Neighborhood[T]) {
	data := tree.Data()
	dims := tree.NumFeatures()

	for i := start; i < end; i++ {
		pt := data[i*dims : (i+1)*dims]
		nb := tree.QueryRadius(pt, eps)

		var core T
		if len(nb) > 1 {
			// The nearest result is the point itself at distance 0; the
			// second is the nearest other point.
			_, dists := tree.QueryKNN(pt, 2)
			core = dists[1]
		}

		out[i] = Neighborhood[T]{Neighbors: nb, CoreDistance: core}
	}
}
