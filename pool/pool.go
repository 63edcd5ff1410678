// Copyright 2025 go-ttmc Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package pool provides the fork-join worker pool used by every TTMc
// parallel region (spec §5: "a single thread pool is shared across
// the call"). It is adapted from the teacher's persistent worker pool
// (github.com/ajroetker/go-highway's hwy/contrib/workerpool package):
// the same persistent-goroutine, channel-dispatched design, narrowed
// to be scoped to a single call instead of a process-wide reusable
// pool, since spec §5 describes fork-join per TTMc call rather than a
// pool that outlives it.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed-size set of persistent worker goroutines, created
// for one TTMc call and closed at the end of it.
type Pool struct {
	numWorkers int
	workC      chan workItem
	closeOnce  sync.Once
	closed     atomic.Bool
}

type workItem struct {
	fn      func(worker int)
	worker  int
	barrier *sync.WaitGroup
}

// New creates a pool with numWorkers persistent goroutines. If
// numWorkers <= 0, GOMAXPROCS is used; the ttmc entry points validate
// NThreads >= 1 before creating a pool, so they never pass 0.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn(item.worker)
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Safe to call multiple times.
func (p *Pool) Close() {
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.workC)
	})
}

// ParallelFor executes fn(workerID, start, end) for a partition of
// [0, n) into p.numWorkers contiguous ranges. Used for the output-clear
// pass (spec §4.10), where every worker touches a disjoint range and no
// scheduling cleverness is needed.
func (p *Pool) ParallelFor(n int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if p.closed.Load() {
		fn(0, 0, n)
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	chunkSize := (n + workers - 1) / workers
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		start := i * chunkSize
		end := min(start+chunkSize, n)
		if start >= n {
			wg.Done()
			continue
		}
		w := i
		p.workC <- workItem{
			fn:      func(worker int) { fn(worker, start, end) },
			worker:  w,
			barrier: &wg,
		}
	}
	wg.Wait()
}

// ParallelForAtomicBatched is the for_each_slice combinator of spec §9:
// work items [0, n) are handed out in batches of batchSize via atomic
// work-stealing, matching the "distributed dynamically in chunks of
// 16... nowait" scheduling required by §4.3/§4.4/§5. fn receives the
// worker's index (so it can index its own Scratch) and the [start,end)
// batch to process. Blocks until every item has been processed — the
// implied end-of-region barrier of §5.
func (p *Pool) ParallelForAtomicBatched(n, batchSize int, fn func(worker, start, end int)) {
	if n <= 0 {
		return
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if p.closed.Load() {
		fn(0, 0, n)
		return
	}

	numBatches := (n + batchSize - 1) / batchSize
	workers := min(p.numWorkers, numBatches)
	if workers == 1 {
		fn(0, 0, n)
		return
	}

	var nextBatch atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for i := range workers {
		w := i
		p.workC <- workItem{
			fn: func(worker int) {
				for {
					batch := int(nextBatch.Add(1)) - 1
					start := batch * batchSize
					if start >= n {
						return
					}
					end := min(start+batchSize, n)
					fn(worker, start, end)
				}
			},
			worker:  w,
			barrier: &wg,
		}
	}
	wg.Wait()
}
