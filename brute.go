package optics

import (
	"container/heap"
)

// bruteTree is a linear-scan SpatialTree used as a fallback for metrics
// no tree index supports. Queries cost O(n) per point, which matches the
// worst-case cost model of the traversal anyway.
type bruteTree struct {
	data   []float64
	n      int
	dims   int
	idx    []int
	metric DistanceMetric
}

func newBruteTree(data []float64, n, dims int, metric DistanceMetric) *bruteTree {
	dataCopy := make([]float64, len(data))
	copy(dataCopy, data)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return &bruteTree{data: dataCopy, n: n, dims: dims, idx: idx, metric: metric}
}

func (t *bruteTree) Data() []float64  { return t.data }
func (t *bruteTree) NumPoints() int   { return t.n }
func (t *bruteTree) NumFeatures() int { return t.dims }
func (t *bruteTree) IdxArray() []int  { return t.idx }

func (t *bruteTree) NodeDataArray() []NodeData {
	return []NodeData{{IdxStart: 0, IdxEnd: t.n, IsLeaf: true}}
}

func (t *bruteTree) QueryKNN(queryData []float64, queryRows, k int) ([][]int, [][]float64) {
	indices := make([][]int, queryRows)
	distances := make([][]float64, queryRows)

	for q := 0; q < queryRows; q++ {
		query := queryData[q*t.dims : (q+1)*t.dims]
		h := &knnHeap{}
		heap.Init(h)
		for i := 0; i < t.n; i++ {
			pt := t.data[i*t.dims : (i+1)*t.dims]
			d := t.metric.Distance(query, pt)
			if h.Len() < k {
				heap.Push(h, knnItem{index: i, dist: d})
			} else if knnBetter(d, i, (*h)[0]) {
				(*h)[0] = knnItem{index: i, dist: d}
				heap.Fix(h, 0)
			}
		}

		nResults := h.Len()
		idx := make([]int, nResults)
		dist := make([]float64, nResults)
		for i := nResults - 1; i >= 0; i-- {
			item := heap.Pop(h).(knnItem)
			idx[i] = item.index
			dist[i] = item.dist
		}
		indices[q] = idx
		distances[q] = dist
	}

	return indices, distances
}

func (t *bruteTree) QueryRadius(point []float64, r float64) ([]int, []float64) {
	if t.n == 0 {
		return nil, nil
	}
	var res []neighborResult
	for i := 0; i < t.n; i++ {
		pt := t.data[i*t.dims : (i+1)*t.dims]
		d := t.metric.Distance(point, pt)
		if d <= r {
			res = append(res, neighborResult{index: i, dist: d})
		}
	}
	return sortNeighborResults(res)
}
