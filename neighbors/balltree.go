package neighbors

import (
	"container/heap"
	"math"
	"sort"
)

// BallTree is a ball tree spatial index answering radius and k-nearest
// queries. Each node stores a centroid and radius defining the smallest
// enclosing ball for its points, so any metric satisfying the triangle
// inequality works.
//
// The tree is stored as a complete binary tree in array form:
//   - node i has children at 2*i+1 and 2*i+2
type BallTree[T Float] struct {
	data     []T // flat row-major point data (n * dims)
	n        int // number of points
	dims     int // dimensionality
	leafSize int
	metric   Metric[T]
	idxArray []int         // permutation: tree-order position → original index
	nodes    []NodeData[T] // one entry per tree node; Radius is used
	// centroids[node*dims .. (node+1)*dims) = centroid of node
	centroids []T
	numNodes  int
}

// NewBallTree builds a ball tree from flat row-major data with n points
// of dimensionality dims. leafSize controls the max points per leaf node.
func NewBallTree[T Float](data []T, n, dims int, metric Metric[T], leafSize int) *BallTree[T] {
	if leafSize < 1 {
		leafSize = 1
	}

	dataCopy := make([]T, len(data))
	copy(dataCopy, data)
	idxArray := make([]int, n)
	for i := range idxArray {
		idxArray[i] = i
	}

	maxNodes := treeMaxNodes(n, leafSize) // same upper bound as the KD-tree
	t := &BallTree[T]{
		data:      dataCopy,
		n:         n,
		dims:      dims,
		leafSize:  leafSize,
		metric:    metric,
		idxArray:  idxArray,
		nodes:     make([]NodeData[T], maxNodes),
		centroids: make([]T, maxNodes*dims),
	}

	if n > 0 {
		t.buildNode(0, 0, n)
		t.numNodes = countTreeNodes(t.nodes, 0, maxNodes)
	}

	return t
}

// buildNode recursively builds the ball tree for points in idxArray[start:end].
func (t *BallTree[T]) buildNode(nodeID, start, end int) {
	for nodeID >= len(t.nodes) {
		t.nodes = append(t.nodes, NodeData[T]{})
		t.centroids = append(t.centroids, make([]T, t.dims)...)
	}

	// Compute centroid.
	t.computeCentroid(nodeID, start, end)

	// Compute radius: max distance from centroid to any point in this node.
	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	var radius T
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		pt := t.data[ptIdx*t.dims : (ptIdx+1)*t.dims]
		d := t.metric.Distance(centroid, pt)
		if d > radius {
			radius = d
		}
	}

	count := end - start
	if count <= t.leafSize {
		t.nodes[nodeID] = NodeData[T]{IdxStart: start, IdxEnd: end, IsLeaf: true, Radius: radius}
		return
	}

	t.nodes[nodeID] = NodeData[T]{IdxStart: start, IdxEnd: end, IsLeaf: false, Radius: radius}

	// Partition by the dimension with greatest spread (simple strategy
	// that works well in practice for moderate dimensionality).
	splitDim := t.findSpreadDim(start, end)
	t.sortByDim(start, end, splitDim)
	mid := start + count/2

	t.buildNode(2*nodeID+1, start, mid)
	t.buildNode(2*nodeID+2, mid, end)
}

// computeCentroid computes the mean of points idxArray[start:end] and stores
// it in the centroids array.
func (t *BallTree[T]) computeCentroid(nodeID, start, end int) {
	base := nodeID * t.dims
	count := T(end - start)
	for d := 0; d < t.dims; d++ {
		t.centroids[base+d] = 0
	}
	for i := start; i < end; i++ {
		ptIdx := t.idxArray[i]
		for d := 0; d < t.dims; d++ {
			t.centroids[base+d] += t.data[ptIdx*t.dims+d]
		}
	}
	for d := 0; d < t.dims; d++ {
		t.centroids[base+d] /= count
	}
}

// findSpreadDim returns the dimension with the greatest spread among
// points in idxArray[start:end].
func (t *BallTree[T]) findSpreadDim(start, end int) int {
	bestDim := 0
	bestSpread := T(math.Inf(-1))
	for d := 0; d < t.dims; d++ {
		minVal := T(math.Inf(1))
		maxVal := T(math.Inf(-1))
		for i := start; i < end; i++ {
			v := t.data[t.idxArray[i]*t.dims+d]
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
		}
		spread := maxVal - minVal
		if spread > bestSpread {
			bestSpread = spread
			bestDim = d
		}
	}
	return bestDim
}

// sortByDim sorts idxArray[start:end] by the given dimension.
func (t *BallTree[T]) sortByDim(start, end, dim int) {
	sub := t.idxArray[start:end]
	dims := t.dims
	data := t.data
	sort.Slice(sub, func(i, j int) bool {
		return data[sub[i]*dims+dim] < data[sub[j]*dims+dim]
	})
}

// --- Index interface ---

func (t *BallTree[T]) Data() []T                    { return t.data }
func (t *BallTree[T]) NumPoints() int               { return t.n }
func (t *BallTree[T]) NumFeatures() int             { return t.dims }
func (t *BallTree[T]) IdxArray() []int              { return t.idxArray }
func (t *BallTree[T]) NodeDataArray() []NodeData[T] { return t.nodes[:t.numNodes] }
func (t *BallTree[T]) NumNodes() int                { return t.numNodes }

// QueryKNN finds the k nearest neighbors of query, sorted by distance
// (ascending). k must be >= 1.
func (t *BallTree[T]) QueryKNN(query []T, k int) ([]int, []T) {
	// An empty tree has no leaf to scan; its zero-value root would
	// otherwise be descended as an interior node.
	if t.n == 0 {
		return []int{}, []T{}
	}

	h := &knnHeap[T]{}
	heap.Init(h)
	t.knnSearch(0, query, k, h)

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

// knnSearch performs a single-tree KNN traversal for the ball tree.
func (t *BallTree[T]) knnSearch(nodeID int, query []T, k int, h *knnHeap[T]) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return
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

	left := 2*nodeID + 1
	right := 2*nodeID + 2

	// Use centroid distance to query minus radius as lower bound.
	centroidL := t.centroids[left*t.dims : (left+1)*t.dims]
	centroidR := t.centroids[right*t.dims : (right+1)*t.dims]
	leftDist := t.metric.Distance(query, centroidL) - t.nodes[left].Radius
	rightDist := t.metric.Distance(query, centroidR) - t.nodes[right].Radius
	if leftDist < 0 {
		leftDist = 0
	}
	if rightDist < 0 {
		rightDist = 0
	}

	nearChild, farChild := left, right
	farDist := rightDist
	if rightDist < leftDist {
		nearChild, farChild = right, left
		farDist = leftDist
	}

	t.knnSearch(nearChild, query, k, h)

	if h.Len() < k || farDist < (*h)[0].dist {
		t.knnSearch(farChild, query, k, h)
	}
}

// QueryRadius returns the indices of all points within distance r of
// query (inclusive).
func (t *BallTree[T]) QueryRadius(query []T, r T) []int {
	out := []int{}
	t.radiusSearch(0, query, r, &out)
	return out
}

// radiusSearch collects every point within radius r of query. A subtree
// is skipped when its ball lies entirely beyond r and taken whole when
// its ball lies entirely within r.
func (t *BallTree[T]) radiusSearch(nodeID int, query []T, r T, out *[]int) {
	if nodeID >= len(t.nodes) {
		return
	}
	node := t.nodes[nodeID]
	if node.IdxStart == node.IdxEnd && nodeID != 0 {
		return
	}

	centroid := t.centroids[nodeID*t.dims : (nodeID+1)*t.dims]
	d := t.metric.Distance(query, centroid)
	if d-node.Radius > r {
		return
	}
	if d+node.Radius <= r {
		for i := node.IdxStart; i < node.IdxEnd; i++ {
			*out = append(*out, t.idxArray[i])
		}
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

	t.radiusSearch(2*nodeID+1, query, r, out)
	t.radiusSearch(2*nodeID+2, query, r, out)
}
