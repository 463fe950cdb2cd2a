package main

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/joshuapare/binalloc/internal/buf"
	"github.com/joshuapare/binalloc/pkg/malloc"
)

// workloadSizes mixes every size class, including class boundaries.
var workloadSizes = []uintptr{1, 8, 9, 24, 64, 65, 200, 512, 513, 3000, 9000}

const pausePoll = 20 * time.Millisecond

// workload runs mixed-class alloc/free cycles on a number of goroutines.
type workload struct {
	goroutines int
	iterations int // per goroutine; 0 runs until ctx is done
	batch      int // live blocks held before a goroutine frees them

	ops    atomic.Uint64
	failed atomic.Uint64
	paused atomic.Bool
}

func newWorkload(goroutines, iterations int) *workload {
	return &workload{goroutines: goroutines, iterations: iterations, batch: 16}
}

func (w *workload) run(ctx context.Context) error {
	if w.goroutines <= 0 {
		return fmt.Errorf("goroutines must be positive, got %d", w.goroutines)
	}

	var wg sync.WaitGroup
	for i := 0; i < w.goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()

	if n := w.failed.Load(); n > 0 {
		return fmt.Errorf("%d allocations failed", n)
	}
	return nil
}

func (w *workload) loop(ctx context.Context, id int) {
	live := make([]unsafe.Pointer, 0, w.batch)
	defer func() {
		for _, p := range live {
			malloc.Free(p)
		}
	}()

	for j := 0; w.iterations == 0 || j < w.iterations; {
		if ctx.Err() != nil {
			return
		}
		if w.paused.Load() {
			time.Sleep(pausePoll)
			continue
		}

		size := workloadSizes[uint(id*7+j)%uint(len(workloadSizes))]
		j++
		p := malloc.Malloc(size)
		if p == nil {
			w.failed.Add(1)
			continue
		}
		b := buf.Bytes(p, size)
		b[0], b[len(b)-1] = byte(id), byte(size)
		live = append(live, p)
		w.ops.Add(1)

		if len(live) == w.batch {
			for _, q := range live {
				malloc.Free(q)
			}
			live = live[:0]
		}
	}
}
