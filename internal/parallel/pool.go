// Package parallel provides the worker pool that slices per-pixel kernels
// across CPU cores. The grading kernel has no inter-pixel dependency, so a
// frame is just a bag of independent row ranges.
package parallel

import (
	"runtime"
	"sync"
)

// Pool runs row-range jobs on a fixed set of persistent worker goroutines.
// Workers live for the life of the pool; per-frame dispatch is two channel
// operations per slice, no goroutine churn at 30+ fps.
//
// Pool is safe for concurrent use, but ForRows calls are typically issued
// by the single render tick.
type Pool struct {
	workers int
	jobs    chan job
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

type job struct {
	y0, y1 int
	fn     func(y0, y1 int)
	wg     *sync.WaitGroup
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		workers: workers,
		jobs:    make(chan job, workers*4),
		done:    make(chan struct{}),
	}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Workers returns the worker count.
func (p *Pool) Workers() int { return p.workers }

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case j := <-p.jobs:
			j.fn(j.y0, j.y1)
			j.wg.Done()
		}
	}
}

// ForRows splits [0, total) into roughly equal slices, runs fn on the
// workers, and blocks until every slice completes. Small totals run
// inline: spawning across cores for a 16-row thumbnail costs more than
// it saves.
func (p *Pool) ForRows(total int, fn func(y0, y1 int)) {
	if total <= 0 {
		return
	}
	// 2 slices per worker evens out rows of differing cost (effect-heavy
	// regions, cache effects) without meaningful dispatch overhead.
	slices := p.workers * 2
	if total < slices*4 {
		fn(0, total)
		return
	}

	chunk := (total + slices - 1) / slices
	var wg sync.WaitGroup
	for y0 := 0; y0 < total; y0 += chunk {
		y1 := y0 + chunk
		if y1 > total {
			y1 = total
		}
		wg.Add(1)
		p.jobs <- job{y0: y0, y1: y1, fn: fn, wg: &wg}
	}
	wg.Wait()
}

// Close stops the workers. Jobs already dispatched complete; ForRows must
// not be called after Close.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.done) })
	p.wg.Wait()
}
