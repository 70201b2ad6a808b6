package optics

import "sync"

// ComputeCoreDistancesParallel computes core distances using multiple
// goroutines. Each worker handles a contiguous range of points
// independently; the tree is only read, so no synchronization is needed
// beyond the final wait. Falls back to the sequential
// ComputeCoreDistances if numWorkers <= 1.
//
// The result is bitwise identical to ComputeCoreDistances.
func ComputeCoreDistancesParallel(tree SpatialTree, minPts int, epsilon float64, numWorkers int) []float64 {
	n := tree.NumPoints()
	if numWorkers <= 1 || n <= 1 {
		return ComputeCoreDistances(tree, minPts, epsilon)
	}

	core := make([]float64, n)

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
			coreDistanceRows(tree, minPts, epsilon, start, end, core)
		}(startRow, endRow)
	}

	wg.Wait()
	return core
}
