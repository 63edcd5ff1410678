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

package ttmc

// Scratch holds the three per-thread slabs of spec §3: slot 0
// accumulates one fiber's partial reduction, slot 1 gathers child
// fids for a slice's batch, slot 2 gathers rows for the outer-product
// batch. A Scratch is exclusive to one worker for the duration of a
// parallel region, never aliased or shared, grounded on the
// per-goroutine-exclusive-resource shape of the teacher's
// hwy/contrib/matmul/workerspool.go WorkersPool (each running task
// owns its slot of the pool's capacity for its lifetime).
type Scratch struct {
	// Slot0 holds one fiber's accumulated vector, sized
	// maxFiberLen x maxLeafCols.
	Slot0 []float64
	// Slot1 holds gathered child fids for the current slice's batch.
	Slot1 []int32
	// Slot2 holds whichever of the root traversal's gathered rows
	// (naccum x maxLeafCols, bounded by maxRootCols) or the leaf
	// traversal's single outer product (maxLeafCols x maxLeafCols,
	// i.e. maxOuterLen) is larger — the two traversals never run
	// concurrently on the same worker, so Slot2 only needs to hold
	// whichever one is in use at a time, not both.
	Slot2 []float64
}

// scratchSizes bounds the three slab sizes from the CSF shape and the
// per-mode column counts, per spec §4.2 ("Slot sizes are derived from
// max fiber length... and from max K_m").
type scratchSizes struct {
	maxFiberLen  int
	maxOuterLen  int
	maxLeafCols  int
	maxRootCols  int
}

// newScratch allocates one worker's slabs from sz.
func newScratch(sz scratchSizes) *Scratch {
	return &Scratch{
		Slot0: make([]float64, sz.maxFiberLen*sz.maxLeafCols),
		Slot1: make([]int32, sz.maxFiberLen),
		Slot2: make([]float64, max(sz.maxOuterLen, sz.maxRootCols)),
	}
}

// scratchPool is N_threads worth of per-worker Scratch, allocated
// once at the start of a TTMC call and discarded on return (spec §3
// lifecycle: "scratch is initialized at the beginning of the call and
// freed on return").
type scratchPool struct {
	workers []*Scratch
}

func newScratchPool(nthreads int, sz scratchSizes) *scratchPool {
	p := &scratchPool{workers: make([]*Scratch, nthreads)}
	for w := range p.workers {
		p.workers[w] = newScratch(sz)
	}
	return p
}

func (p *scratchPool) For(worker int) *Scratch {
	return p.workers[worker]
}

// largestFiberLen returns the longest run of children any node at
// level below has, across all tiles — used to size slot 0/1.
func largestFiberLen(csfs []*CSF) int {
	best := 0
	for _, c := range csfs {
		for _, t := range c.Tiles {
			for d := 0; d < len(t.Fptr); d++ {
				fptr := t.Fptr[d]
				for i := 0; i+1 < len(fptr); i++ {
					if n := fptr[i+1] - fptr[i]; n > best {
						best = n
					}
				}
			}
		}
	}
	if best == 0 {
		best = 1
	}
	return best
}
