package raster

import "sync"

// minRowsPerWorker keeps small regions (a single stamp, a short segment)
// on the calling goroutine.
const minRowsPerWorker = 16

// forRows calls fn(y) for every y in [y0, y1). With more than one worker the
// rows are handed out over a channel to a fixed pool of goroutines. fn must
// only touch pixels of its own row.
func forRows(y0, y1, workers int, fn func(y int)) {
	n := y1 - y0
	if n <= 0 {
		return
	}
	if workers > n/minRowsPerWorker {
		workers = n / minRowsPerWorker
	}
	if workers <= 1 {
		for y := y0; y < y1; y++ {
			fn(y)
		}
		return
	}

	rows := make(chan int, workers*2)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for y := range rows {
				fn(y)
			}
		}()
	}

	for y := y0; y < y1; y++ {
		rows <- y
	}
	close(rows)

	wg.Wait()
}
