package neighbors

// Float is the scalar type constraint for point coordinates and distances.
type Float interface {
	float32 | float64
}

// NodeData describes a single node in a spatial tree.
type NodeData[T Float] struct {
	IdxStart, IdxEnd int
	IsLeaf           bool
	Radius           T // ball tree radius; 0 for KD-tree
}

// Index is the query interface shared by KDTree and BallTree: radius and
// k-nearest queries over a fixed point set copied at build time.
type Index[T Float] interface {
	// QueryRadius returns the indices of all points within distance r of
	// query (inclusive). The result order is deterministic for a given
	// tree but otherwise unspecified.
	QueryRadius(query []T, r T) []int

	// QueryKNN finds the k nearest neighbors of query, sorted by distance
	// (ascending). Fewer than k results are returned when the tree holds
	// fewer than k points. k must be >= 1.
	QueryKNN(query []T, k int) (indices []int, distances []T)

	// Data returns the flat row-major point data owned by the tree.
	Data() []T

	// NumPoints returns the number of points in the tree.
	NumPoints() int

	// NumFeatures returns the dimensionality of each point.
	NumFeatures() int
}
