// Package neighbors provides the spatial indexes and distance metrics
// used by the clustering algorithms: KD-trees and ball trees over flat
// row-major point data, answering radius and k-nearest queries on a
// fixed point set.
//
// Both trees copy the point data at build time and are read-only
// afterward, so a single tree may serve queries from any number of
// goroutines concurrently.
//
// Metrics are generic over the scalar type (float32 or float64). The
// built-in metrics (Euclidean, Manhattan, Chebyshev, Minkowski) satisfy
// the triangle inequality the trees rely on for pruning; MetricFunc
// adapts a custom distance function, in which case that property is the
// caller's responsibility.
//
//	data := []float64{0, 0, 1, 0, 0, 1} // three 2-D points
//	tree := neighbors.NewKDTree(data, 3, 2, neighbors.Euclidean[float64]{}, 40)
//	within := tree.QueryRadius([]float64{0, 0}, 1.0)
//	idx, dist := tree.QueryKNN([]float64{0, 0}, 2)
package neighbors
