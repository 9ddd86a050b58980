// Package clustering implements density-based clustering over point
// sets: OPTICS (Ordering Points To Identify the Clustering Structure)
// and DBSCAN (Density-Based Spatial Clustering of Applications with
// Noise).
//
// OPTICS computes a density ordering of the input once and then cuts it
// into flat clusters at any threshold up to the fit radius, so one fit
// supports extraction at many densities. DBSCAN produces a single flat
// clustering directly and, unlike OPTICS, accounts for every input
// point in either a cluster or the outlier list.
//
// Basic usage:
//
//	o := clustering.NewOptics[float64](1.0, 5, nil)
//	clusters, outliers := o.Fit(points)
//	// clusters[c] holds the point indices of cluster c
//	// tighter cut of the same ordering, no refit:
//	clusters, outliers = o.Extract(0.25)
//
// # Metrics and indexing
//
// Both clusterers accept any neighbors.Metric. Axis-decomposable
// metrics (Euclidean, Manhattan, Chebyshev, Minkowski) are indexed with
// a KD-tree; other metrics fall back to a ball tree, which assumes only
// the triangle inequality. A nil metric selects Euclidean.
package clustering
