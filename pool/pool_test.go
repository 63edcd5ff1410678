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

package pool

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestNew(t *testing.T) {
	p := New(4)
	defer p.Close()

	if p.NumWorkers() != 4 {
		t.Errorf("NumWorkers() = %d, want 4", p.NumWorkers())
	}
}

func TestNewDefault(t *testing.T) {
	p := New(0)
	defer p.Close()

	if p.NumWorkers() != runtime.GOMAXPROCS(0) {
		t.Errorf("NumWorkers() = %d, want %d", p.NumWorkers(), runtime.GOMAXPROCS(0))
	}
}

func TestParallelFor(t *testing.T) {
	p := New(4)
	defer p.Close()

	n := 100
	results := make([]int, n)

	p.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			results[i] = i * 2
		}
	})

	for i := range n {
		if results[i] != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForAtomicBatched(t *testing.T) {
	p := New(4)
	defer p.Close()

	n := 100
	results := make([]int32, n)

	p.ParallelForAtomicBatched(n, 10, func(_, start, end int) {
		for i := start; i < end; i++ {
			atomic.StoreInt32(&results[i], int32(i*2))
		}
	})

	for i := range n {
		if int(results[i]) != i*2 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i*2)
		}
	}
}

func TestParallelForAtomicBatchedUsesWorkerIndex(t *testing.T) {
	p := New(4)
	defer p.Close()

	n := 64
	seenWorker := make([]int, n)

	p.ParallelForAtomicBatched(n, 16, func(worker, start, end int) {
		for i := start; i < end; i++ {
			seenWorker[i] = worker
		}
	})

	for i, w := range seenWorker {
		if w < 0 || w >= p.NumWorkers() {
			t.Errorf("seenWorker[%d] = %d out of range [0,%d)", i, w, p.NumWorkers())
		}
	}
}

func TestParallelForSmallN(t *testing.T) {
	p := New(8)
	defer p.Close()

	n := 3
	results := make([]int, n)

	p.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			results[i] = i + 1
		}
	})

	for i := range n {
		if results[i] != i+1 {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i+1)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	p := New(2)
	p.Close()
	p.Close()

	// A pool used after Close falls back to running inline.
	n := 10
	results := make([]int, n)
	p.ParallelFor(n, func(_, start, end int) {
		for i := start; i < end; i++ {
			results[i] = i
		}
	})
	for i := range n {
		if results[i] != i {
			t.Errorf("results[%d] = %d, want %d", i, results[i], i)
		}
	}
}
