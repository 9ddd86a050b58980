package neighbors

import (
	"math"
	"testing"
)

// --- Construction tests ---

func TestBallTree_Construction_BasicProperties(t *testing.T) {
	data := []float64{
		0, 0,
		1, 0,
		2, 0,
		0, 3,
		1, 3,
		2, 3,
	}
	n, dims := 6, 2
	tree := NewBallTree(data, n, dims, Euclidean[float64]{}, 2)

	if tree.NumPoints() != n {
		t.Errorf("NumPoints() = %d, want %d", tree.NumPoints(), n)
	}
	if tree.NumFeatures() != dims {
		t.Errorf("NumFeatures() = %d, want %d", tree.NumFeatures(), dims)
	}
	if tree.NumNodes() < 1 {
		t.Errorf("NumNodes() = %d, want >= 1", tree.NumNodes())
	}

	// IdxArray should be a permutation of 0..n-1.
	idx := tree.IdxArray()
	seen := make(map[int]bool)
	for _, v := range idx {
		if v < 0 || v >= n {
			t.Errorf("IdxArray contains out-of-range index %d", v)
		}
		if seen[v] {
			t.Errorf("IdxArray contains duplicate index %d", v)
		}
		seen[v] = true
	}
}

func TestBallTree_Construction_LeafSize1(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2, 3, 3}
	tree := NewBallTree(data, 4, 2, Euclidean[float64]{}, 1)

	for _, nd := range tree.NodeDataArray() {
		if nd.IsLeaf && (nd.IdxEnd-nd.IdxStart) != 1 {
			t.Errorf("leaf has %d points, want 1", nd.IdxEnd-nd.IdxStart)
		}
	}
}

func TestBallTree_Construction_LeafSizeLargerThanN(t *testing.T) {
	data := []float64{1, 2, 3, 4}
	tree := NewBallTree(data, 2, 2, Euclidean[float64]{}, 100)

	nodes := tree.NodeDataArray()
	if len(nodes) != 1 {
		t.Errorf("expected 1 node for leafSize > n, got %d", len(nodes))
	}
	if !nodes[0].IsLeaf {
		t.Error("root should be a leaf when leafSize > n")
	}
}

func TestBallTree_Construction_SinglePoint(t *testing.T) {
	data := []float64{5, 5}
	tree := NewBallTree(data, 1, 2, Euclidean[float64]{}, 10)

	if tree.NumPoints() != 1 {
		t.Errorf("NumPoints() = %d, want 1", tree.NumPoints())
	}
	if tree.NumNodes() != 1 {
		t.Errorf("NumNodes() = %d, want 1", tree.NumNodes())
	}
}

func TestBallTree_Construction_Empty(t *testing.T) {
	tree := NewBallTree[float64](nil, 0, 2, Euclidean[float64]{}, 40)

	if tree.NumPoints() != 0 {
		t.Errorf("NumPoints() = %d, want 0", tree.NumPoints())
	}
	idx, dist := tree.QueryKNN([]float64{0, 0}, 2)
	if len(idx) != 0 || len(dist) != 0 {
		t.Errorf("QueryKNN on empty tree = %v, %v, want empty results", idx, dist)
	}
	if got := tree.QueryRadius([]float64{0, 0}, 1.0); len(got) != 0 {
		t.Errorf("QueryRadius on empty tree = %v, want empty", got)
	}
}

func TestBallTree_Construction_RadiusNonNegative(t *testing.T) {
	data := []float64{0, 0, 1, 1, 5, 5, 6, 6}
	tree := NewBallTree(data, 4, 2, Euclidean[float64]{}, 2)

	for i, nd := range tree.NodeDataArray() {
		if nd.Radius < 0 {
			t.Errorf("node %d has negative radius %v", i, nd.Radius)
		}
	}
}

// --- KNN query tests ---

func TestBallTree_KNN_BruteForceMatch(t *testing.T) {
	data := []float64{
		0, 0,
		3, 0,
		0, 4,
		3, 4,
		1.5, 2,
	}
	n, dims := 5, 2

	for _, metric := range []Metric[float64]{
		Euclidean[float64]{},
		Manhattan[float64]{},
	} {
		tree := NewBallTree(data, n, dims, metric, 1)
		for k := 1; k <= n; k++ {
			for q := 0; q < n; q++ {
				query := data[q*dims : (q+1)*dims]
				indices, distances := tree.QueryKNN(query, k)
				bruteIdx, bruteDist := bruteForceKNN(data, n, dims, q, k, metric)
				if !knnResultsMatch(indices, distances, bruteIdx, bruteDist, floatTol) {
					t.Errorf("metric=%T k=%d query=%d: tree KNN doesn't match brute force.\n  tree: idx=%v dist=%v\n  brute: idx=%v dist=%v",
						metric, k, q, indices, distances, bruteIdx, bruteDist)
				}
			}
		}
	}
}

func TestBallTree_KNN_CustomMetric(t *testing.T) {
	// MetricFunc has no reduced-distance shortcut; the ball tree only
	// relies on the triangle inequality.
	scaled := MetricFunc[float64](func(a, b []float64) float64 {
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return 2 * math.Sqrt(sum)
	})

	data := []float64{
		0, 0,
		1, 0,
		0, 2,
		4, 4,
		5, 5,
	}
	n, dims := 5, 2
	tree := NewBallTree(data, n, dims, scaled, 1)

	for k := 1; k <= n; k++ {
		for q := 0; q < n; q++ {
			query := data[q*dims : (q+1)*dims]
			indices, distances := tree.QueryKNN(query, k)
			bruteIdx, bruteDist := bruteForceKNN(data, n, dims, q, k, scaled)
			if !knnResultsMatch(indices, distances, bruteIdx, bruteDist, floatTol) {
				t.Errorf("k=%d query=%d: tree KNN doesn't match brute force", k, q)
			}
		}
	}
}

func TestBallTree_KNN_AllSamePoints(t *testing.T) {
	data := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	n, dims := 4, 2
	tree := NewBallTree(data, n, dims, Euclidean[float64]{}, 2)

	for q := 0; q < n; q++ {
		indices, distances := tree.QueryKNN(data[q*dims:(q+1)*dims], 3)
		for j := range distances {
			if distances[j] != 0 {
				t.Errorf("query %d: expected all distances 0, got %v", q, distances[j])
			}
		}
		if len(indices) != 3 {
			t.Errorf("query %d: expected 3 results, got %d", q, len(indices))
		}
	}
}

// --- Radius query tests ---

func TestBallTree_QueryRadius_BruteForceMatch(t *testing.T) {
	data := []float64{
		0, 0,
		3, 0,
		0, 4,
		3, 4,
		1.5, 2,
		10, 10,
	}
	n, dims := 6, 2

	for _, metric := range []Metric[float64]{
		Euclidean[float64]{},
		Manhattan[float64]{},
	} {
		tree := NewBallTree(data, n, dims, metric, 1)
		for _, r := range []float64{0.5, 1.5, 2.5, 5.0, 20.0} {
			for q := 0; q < n; q++ {
				query := data[q*dims : (q+1)*dims]
				got := sortedInts(tree.QueryRadius(query, r))
				want := bruteForceRadius(data, n, dims, q, r, metric)
				if !intSlicesEqual(got, want) {
					t.Errorf("metric=%T r=%v query=%d: radius = %v, want %v", metric, r, q, got, want)
				}
			}
		}
	}
}

func TestBallTree_QueryRadius_CustomMetric(t *testing.T) {
	scaled := MetricFunc[float64](func(a, b []float64) float64 {
		sum := 0.0
		for i := range a {
			d := a[i] - b[i]
			sum += d * d
		}
		return 2 * math.Sqrt(sum)
	})

	data := []float64{
		0, 0,
		1, 0,
		0, 2,
		4, 4,
		5, 5,
	}
	n, dims := 5, 2
	tree := NewBallTree(data, n, dims, scaled, 2)

	for _, r := range []float64{1.0, 3.0, 6.0} {
		for q := 0; q < n; q++ {
			query := data[q*dims : (q+1)*dims]
			got := sortedInts(tree.QueryRadius(query, r))
			want := bruteForceRadius(data, n, dims, q, r, scaled)
			if !intSlicesEqual(got, want) {
				t.Errorf("r=%v query=%d: radius = %v, want %v", r, q, got, want)
			}
		}
	}
}

func TestBallTree_QueryRadius_CoversAll(t *testing.T) {
	// A radius enclosing every ball takes whole subtrees without
	// per-point distance checks.
	data := []float64{0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5}
	n, dims := 6, 2
	tree := NewBallTree(data, n, dims, Euclidean[float64]{}, 2)

	got := sortedInts(tree.QueryRadius([]float64{2.5, 2.5}, 100))
	want := []int{0, 1, 2, 3, 4, 5}
	if !intSlicesEqual(got, want) {
		t.Errorf("radius 100 = %v, want all indices", got)
	}
}

func TestBallTree_QueryRadius_ZeroRadius(t *testing.T) {
	data := []float64{1, 1, 1, 1, 5, 5}
	tree := NewBallTree(data, 3, 2, Euclidean[float64]{}, 1)

	got := sortedInts(tree.QueryRadius([]float64{1, 1}, 0))
	if !intSlicesEqual(got, []int{0, 1}) {
		t.Errorf("zero radius = %v, want [0 1] (coincident points only)", got)
	}
}

func TestBallTree_QueryRadius_NoMatches(t *testing.T) {
	data := []float64{0, 0, 1, 1, 2, 2}
	tree := NewBallTree(data, 3, 2, Euclidean[float64]{}, 1)

	got := tree.QueryRadius([]float64{100, 100}, 1)
	if got == nil {
		t.Fatal("expected empty non-nil result")
	}
	if len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

// --- Cross-tree consistency ---

func TestBallTree_AgreesWithKDTree(t *testing.T) {
	data := []float64{
		0.5, 0.1,
		1.2, 0.9,
		2.4, 2.2,
		3.1, 2.8,
		0.2, 3.7,
		4.4, 0.6,
		2.0, 2.0,
	}
	n, dims := 7, 2
	metric := Euclidean[float64]{}

	kd := NewKDTree(data, n, dims, metric, 2)
	ball := NewBallTree(data, n, dims, metric, 2)

	for q := 0; q < n; q++ {
		query := data[q*dims : (q+1)*dims]

		for k := 1; k <= n; k++ {
			_, kdDist := kd.QueryKNN(query, k)
			_, ballDist := ball.QueryKNN(query, k)
			for i := range kdDist {
				if !almostEqual(kdDist[i], ballDist[i], floatTol) {
					t.Errorf("query=%d k=%d: KD dist %v != ball dist %v", q, k, kdDist, ballDist)
					break
				}
			}
		}

		for _, r := range []float64{0.5, 1.5, 3.0} {
			kdIdx := sortedInts(kd.QueryRadius(query, r))
			ballIdx := sortedInts(ball.QueryRadius(query, r))
			if !intSlicesEqual(kdIdx, ballIdx) {
				t.Errorf("query=%d r=%v: KD %v != ball %v", q, r, kdIdx, ballIdx)
			}
		}
	}
}
