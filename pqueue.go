package optics

import "container/heap"

// seedItem is one pending point in the traversal seed queue.
type seedItem struct {
	point int     // original point index
	reach float64 // current best-known reachability distance
}

// seedQueue is an indexed binary min-heap over pending points, keyed by
// (reachability distance, original index). The position index enables
// decrease-key updates when a shorter reachability is found, and the
// index tie-break makes pop order deterministic.
type seedQueue struct {
	items []seedItem
	pos   []int // pos[point] = heap position, or -1 if not queued
}

func newSeedQueue(n int) *seedQueue {
	pos := make([]int, n)
	for i := range pos {
		pos[i] = -1
	}
	return &seedQueue{pos: pos}
}

func (q *seedQueue) Len() int { return len(q.items) }

func (q *seedQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.reach != b.reach {
		return a.reach < b.reach
	}
	return a.point < b.point
}

func (q *seedQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.pos[q.items[i].point] = i
	q.pos[q.items[j].point] = j
}

func (q *seedQueue) Push(x interface{}) {
	item := x.(seedItem)
	q.pos[item.point] = len(q.items)
	q.items = append(q.items, item)
}

func (q *seedQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	q.items = old[:n-1]
	q.pos[item.point] = -1
	return item
}

// popMin removes and returns the pending point with the smallest
// (reachability, index) key. The queue must be non-empty.
func (q *seedQueue) popMin() seedItem {
	return heap.Pop(q).(seedItem)
}

// decreaseKey inserts point with the given reachability, or lowers its
// key if it is already queued with a larger one. Returns true if the
// queue changed.
func (q *seedQueue) decreaseKey(point int, reach float64) bool {
	p := q.pos[point]
	if p == -1 {
		heap.Push(q, seedItem{point: point, reach: reach})
		return true
	}
	if reach >= q.items[p].reach {
		return false
	}
	q.items[p].reach = reach
	heap.Fix(q, p)
	return true
}

// contains reports whether the point is currently queued.
func (q *seedQueue) contains(point int) bool { return q.pos[point] != -1 }
