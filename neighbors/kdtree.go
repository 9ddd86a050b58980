package neighbors

import (
	"container/heap"
	"math"
	"sort"
)

// KDTree is a KD-tree spatial index answering radius and k-nearest
// queries. Points are stored in a flat row-major array and reordered
// internally via an index permutation array.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
//   - node bounds are stored as min/max per dimension per node
//
// Only metrics that decompose along coordinate axes produce correct
// results (see KDTreeValidMetric); use a BallTree for anything else.
type KDTree[T Float] struct {
	data     []T // flat row-major point data (n * dims)
	n        int // number of points
	dims     int // dimensionality
	leafSize int
	metric   Metric[T]
	idxArray []int         // permutation: tree-order position → original index
	nodes    []NodeData[T] // one entry per tree node
	// nodeBoundsMin[node*dims + j] = min value of feature j in node
	nodeBoundsMin []T
	// nodeBoundsMax[node*dims + j] = max value of feature j in node
	nodeBoundsMax []T
	numNodes      int
}

// NewKDTree builds a KD-tree from flat row-major data with n points of
// dimensionality dims. leafSize controls the max points per leaf node.
func NewKDTree[T Float](data []T, n, dims int, metric Metric[T], leafSize int) *KDTree[T] {
	if leafSize < 1 {
		leafSize = 1
	}

	// Copy data and build identity index array.
	dataCopy := make([]T, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	// Pre-allocate tree arrays. A complete binary tree with n leaves of
	// size leafSize needs at most 2*ceil(n/leafSize) nodes, but we use
	// a generous upper bound since the median split may not be perfectly balanced.
	maxNodes := treeMaxNodes(n, leafSize)

	t := &KDTree[T]{
		data:          dataCopy,
		n:             n,
		dims:          dims,
		leafSize:      leafSize,
		metric:        metric,
		idxArray:      idxArray,
		nodes:         make([]NodeData[T], maxNodes),
		nodeBoundsMin: make([]T, maxNodes*dims),
		nodeBoundsMax: make([]T, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = countTreeNodes(t.nodes, 0, maxNodes)
	}

	return t
}

// treeMaxNodes returns an upper bound on the number of nodes needed for a
// binary tree with n points and the given leaf size.
func treeMaxNodes(n, leafSize int) int {
	if n == 0 {
		return 1
	}
	// Depth of tree: ceil(log2(ceil(n/leafSize))) + 1.
	// Number of nodes in a complete binary tree of depth d = 2^(d+1) - 1.
	leaves := (n + leafSize - 1) / leafSize
	depth := 0
	v := 1
	for v < leaves {
		v *= 2
		depth++
	}
	return (1 << (depth + 1)) - 1 + 2 // +2 for safety margin
}

// countTreeNodes counts how many nodes were actually initialized by the build.
func countTreeNodes[T Float](nodes []NodeData[T], nodeID, maxNodes int) int {
	if nodeID >= maxNodes {
		return 0
	}
	if nodes[nodeID].IdxStart == 0 && nodes[nodeID].IdxEnd == 0 && nodeID != 0 {
		return 0
	}
	count := 1
	if !nodes[nodeID].IsLeaf {
		count += countTreeNodes(nodes, 2*nodeID+1, maxNodes)
		count += countTreeNodes(nodes, 2*nodeID+2, maxNodes)
	}
	return count
}

// buildNode recursively builds the tree for points in idxArray[start:end].
func (t *KDTree[T]) buildNode(nodeID, start, end int) {
	// Grow arrays if needed (shouldn't happen with good upper bound).
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData[T]{})
		t.nodeBoundsMin = append(t.nodeBoundsMin, make([]T, t.dims)...)
		t.nodeBoundsMax = append(t.nodeBoundsMax, make([]T, t.dims)...)
	}

	// Compute bounds for this node.
	t.computeNodeBounds(nodeID, start, end)

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData[T]{IdxStart: start, IdxEnd: end, IsLeaf: true}
		return
	}

	// Find dimension with greatest spread.
	splitDim := 0
	maxSpread := T(math.Inf(-1))
	for d := 0; d < t.dims; d++ {
		spread := t.nodeBoundsMax[nodeID*t.dims+d] - t.nodeBoundsMin[nodeID*t.dims+d]
		if spread > maxSpread {
			maxSpread = spread
			splitDim = d
		}
	}

	// Sort by the split dimension and split at the median.
	t.sortByDimension(start, end, splitDim)
	mid := start + count/2

	t.nodes[nodeID] = NodeData[T]{IdxStart: start, IdxEnd: end, IsLeaf: false}

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeNodeBounds computes min/max per dimension for points idxArray[start:end].
func (t *KDTree[T]) computeNodeBounds(nodeID, start, end int) {
	base := nodeID * t.dims
	for d := 0; d < t.dims; d++ {
		t.nodeBoundsMin[base+d] = T(math.Inf(1))
		t.nodeBoundsMax[base+d] = T(math.Inf(-1))
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			v := t.data[ptIdx*t.dims+d]
			if v < t.nodeBoundsMin[base+d] {
				t.nodeBoundsMin[base+d] = v
			}
			if v > t.nodeBoundsMax[base+d] {
				t.nodeBoundsMax[base+d] = v
			}
		}
	}
}

// sortByDimension sorts idxArray[start:end] by the given dimension.
func (t *KDTree[T]) sortByDimension(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// --- Index interface ---

func (t *KDTree[T]) Data() []T                    { return t.data }
func (t *KDTree[T]) NumPoints() int               { return t.n }
func (t *KDTree[T]) NumFeatures() int             { return t.dims }
func (t *KDTree[T]) IdxArray() []int              { return t.idxArray }
func (t *KDTree[T]) NodeDataArray() []NodeData[T] { return t.nodes[:t.numNodes] }
func (t *KDTree[T]) NumNodes() int                { return t.numNodes }

// QueryKNN finds the k nearest neighbors of query, sorted by distance
// (ascending). k must be >= 1.
func (t *KDTree[T]) QueryKNN(query []T, k int) ([]int, []T) {
	h := &knnHeap[T]{}
	heap.Init(h)
	t.knnSearch(0, query, k, h)

	// Extract results sorted by distance (ascending).
	nResults := h.Len()
	idx := make([]int, nResults)
	dist := make([]T, nResults)
	for i := nResults - 1; i >= 0; i-- {
		item := heap.Pop(h).(knnItem[T])
		idx[i] = item.index
		dist[i] = item.dist
	}
	return idx, dist
}

// knnSearch performs a single-tree KNN traversal using a max-heap of size k.
func (t *KDTree[T]) knnSearch(nodeID int, query []T, k int, h *knnHeap[T]) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return // uninitialized node
	}

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			d := t.metric.Distance(query, pt)
			if h.Len() < k {
				heap.Push(h, knnItem[T]{index: ptIdx, dist: d})
			} else if d < (*h)[0].dist {
				(*h)[0] = knnItem[T]{index: ptIdx, dist: d}
				heap.Fix(h, 0)
			}
		}
		return
	}

	// Determine which child to visit first (nearer child first).
	left := 2*nodeID + 1
	right := 2*nodeID + 2

	leftRdist := t.minRdistPoint(left, query)
	rightRdist := t.minRdistPoint(right, query)

	nearChild, farChild := left, right
	farRdist := rightRdist
	if rightRdist < leftRdist {
		nearChild, farChild = right, left
		farRdist = leftRdist
	}

	t.knnSearch(nearChild, query, k, h)

	// Prune far child if its lower bound exceeds the current k-th distance.
	if h.Len() < k || t.metric.DistToRdist((*h)[0].dist) > farRdist {
		t.knnSearch(farChild, query, k, h)
	}
}

// QueryRadius returns the indices of all points within distance r of
// query (inclusive).
func (t *KDTree[T]) QueryRadius(query []T, r T) []int {
	out := []int{}
	t.radiusSearch(0, query, r, t.metric.DistToRdist(r), &out)
	return out
}

// radiusSearch collects every point within radius r of query, pruning
// subtrees whose bounding box lies entirely beyond r.
func (t *KDTree[T]) radiusSearch(nodeID int, query []T, r, rBound T, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return
	}
	if t.minRdistPoint(nodeID, query) > rBound {
		return
	}

	if node.IsLeaf {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			ptIdx := t.idxArray[i]
			pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
			if t.metric.Distance(query, pt) <= r {
				*out = append(*out, ptIdx)
			}
		}
		return
	}

	t.radiusSearch(2*nodeID+1, query, r, rBound, out)
	t.radiusSearch(2*nodeID+2, query, r, rBound, out)
}

// minRdistPoint returns a lower bound in reduced-distance space on the
// distance between a point and any point in the given node.
func (t *KDTree[T]) minRdistPoint(node int, point []T) T {
	if node >= len(t.nodes) {
		return T(math.Inf(1))
	}
	dims := t.dims
	base := node * dims

	switch m := t.metric.(type) {
	case Chebyshev[T]:
		var rdist T
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d T
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			if d > rdist {
				rdist = d
			}
		}
		return rdist

	case Minkowski[T]:
		var rdist T
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d T
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			rdist += T(math.Pow(float64(d), m.P))
		}
		return rdist

	default:
		// Euclidean, Manhattan, and others that decompose along axes.
		// For Euclidean: sum of squared per-dim gaps (reduced distance).
		// For Manhattan: sum of per-dim gaps (same as distance).
		var rdist T
		p := metricP(t.metric)
		for j := 0; j < dims; j++ {
			lo := t.nodeBoundsMin[base+j]
			hi := t.nodeBoundsMax[base+j]
			var d T
			if point[j] < lo {
				d = lo - point[j]
			} else if point[j] > hi {
				d = point[j] - hi
			}
			rdist += T(math.Pow(float64(d), p))
		}
		return rdist
	}
}

// metricP returns the Minkowski exponent for the metric, defaulting to
// 2 for Euclidean and 1 for Manhattan.
func metricP[T Float](m Metric[T]) float64 {
	switch v := m.(type) {
	case Euclidean[T]:
		return 2.0
	case Manhattan[T]:
		return 1.0
	case Minkowski[T]:
		return v.P
	case Chebyshev[T]:
		return math.Inf(1)
	default:
		return 2.0 // fallback; Euclidean-like
	}
}

// --- max-heap for KNN queries ---

type knnItem[T Float] struct {
	index int
	dist  T
}

// knnHeap is a max-heap of knnItem (largest distance on top) used as a
// bounded priority queue for KNN queries.
type knnHeap[T Float] []knnItem[T]

func (h knnHeap[T]) Len() int            { return len(h) }
func (h knnHeap[T]) Less(i, j int) bool  { return h[i].dist > h[j].dist } // max-heap
func (h knnHeap[T]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *knnHeap[T]) Push(x interface{}) { *h = append(*h, x.(knnItem[T])) }
func (h *knnHeap[T]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
