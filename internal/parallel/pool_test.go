package parallel

import (
	"sync"
	"testing"
)

func TestForRowsCoversEveryRowOnce(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	const total = 1080
	var mu sync.Mutex
	seen := make([]int, total)

	p.ForRows(total, func(y0, y1 int) {
		mu.Lock()
		defer mu.Unlock()
		for y := y0; y < y1; y++ {
			seen[y]++
		}
	})

	for y, n := range seen {
		if n != 1 {
			t.Fatalf("row %d processed %d times, want 1", y, n)
		}
	}
}

func TestForRowsSmallTotalRunsInline(t *testing.T) {
	p := NewPool(8)
	defer p.Close()

	calls := 0
	p.ForRows(3, func(y0, y1 int) {
		calls++
		if y0 != 0 || y1 != 3 {
			t.Fatalf("inline slice = [%d,%d), want [0,3)", y0, y1)
		}
	})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 inline call", calls)
	}
}

func TestForRowsZeroTotal(t *testing.T) {
	p := NewPool(2)
	defer p.Close()
	p.ForRows(0, func(y0, y1 int) {
		t.Fatal("fn must not run for an empty range")
	})
}

func TestDefaultWorkerCount(t *testing.T) {
	p := NewPool(0)
	defer p.Close()
	if p.Workers() < 1 {
		t.Fatalf("Workers() = %d, want >= 1", p.Workers())
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := NewPool(2)
	p.Close()
	p.Close()
}

func TestForRowsReentrantAcrossBatches(t *testing.T) {
	p := NewPool(4)
	defer p.Close()

	for i := 0; i < 50; i++ {
		sum := 0
		var mu sync.Mutex
		p.ForRows(512, func(y0, y1 int) {
			mu.Lock()
			sum += y1 - y0
			mu.Unlock()
		})
		if sum != 512 {
			t.Fatalf("batch %d covered %d rows, want 512", i, sum)
		}
	}
}
