package compute

import (
	"runtime"
	"sync"
)

// Serial evaluates the loop body in index order on the calling goroutine.
type Serial struct{}

func NewSerial() *Serial { return &Serial{} }

func (*Serial) Name() string    { return "serial" }
func (*Serial) Available() bool { return true }

func (*Serial) Map(n int, fn func(i int)) {
	for i := 0; i < n; i++ {
		fn(i)
	}
}

// Parallel chunks the index range over a fixed worker count.
type Parallel struct {
	workers  int
	minChunk int
}

func NewParallel(workers int) *Parallel {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Parallel{workers: workers, minChunk: 8}
}

func (p *Parallel) Name() string    { return "parallel" }
func (p *Parallel) Available() bool { return p.workers > 1 }

func (p *Parallel) Map(n int, fn func(i int)) {
	if n <= p.minChunk || p.workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	workers := p.workers
	if n/p.minChunk < workers {
		workers = n / p.minChunk
	}
	chunkSize := (n + workers - 1) / workers

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
