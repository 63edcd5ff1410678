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

import (
	"sort"

	"github.com/ajroetker/go-ttmc/kernel"
)

// traverseGeneralN implements spec §4.6's N-mode walk, generalized
// (DESIGN.md open-question resolution) to any output depth instead of
// only the root. The source traversal this generalizes from was left
// unfinished in the original (stray `i`, undefined `inds`/`numer`/
// `denom`/`lastmat`, a #if-0'd fast path); the recurrence below is
// derived from the cost model's own downward/upward/join accounting
// (§4.9), which already computes, level by level, the same "remaining
// column product" widths this walk threads as buffers.
//
// The walk descends from the root, folding each contracted level's
// factor row into a running "head" product (levels above the output
// depth), until it reaches the output depth d. There it sums, over
// the node's children, a pure bottom-up "tail" reduction
// (reduceTail) covering every level below d, and combines head⊗tail
// into the output row — unlocked when d is the root (each slice owns
// a distinct row, as in the 3-mode root traversal) and lock-striped
// otherwise. Buffers are strictly nested with the DFS recursion, so
// each level's intermediate is freed as its subtree's call returns.
func traverseGeneralN(c *CSF, tile *Tile, factors []Matrix, y Matrix, run *runState, n, sliceLo, sliceHi int) {
	nonOutputModes := make([]int, 0, c.Nmodes-1)
	for level, m := range c.DimPerm {
		if level != c.DepthOf(n) {
			nonOutputModes = append(nonOutputModes, m)
		}
	}
	w := &generalWalk{
		c:              c,
		tile:           tile,
		factors:        factors,
		y:              y,
		locks:          run.locks,
		depth:          c.DepthOf(n),
		nonOutputModes: nonOutputModes,
	}
	for s := sliceLo; s < sliceHi; s++ {
		w.processLevel(0, s, nil)
	}
}

type generalWalk struct {
	c       *CSF
	tile    *Tile
	factors []Matrix
	y       Matrix
	locks   *lockStripe
	depth   int
	// nonOutputModes is c.DimPerm with the output depth's entry
	// removed, in dim_perm order — the mode order the recurrence below
	// actually builds contrib in. emit re-indexes contrib from this
	// order into ascending mode order before writing to Y.
	nonOutputModes []int
}

func (w *generalWalk) fidAt(level, node int) int {
	if level == 0 {
		return int(w.tile.SliceID(node))
	}
	return int(w.tile.Fids[level][node])
}

func (w *generalWalk) factorRowAt(level, node int) []float64 {
	return w.factors[w.c.DimPerm[level]].Row(w.fidAt(level, node))
}

func (w *generalWalk) children(level, node int) (int, int) {
	fptr := w.tile.Fptr[level]
	return fptr[node], fptr[node+1]
}

// processLevel threads head (the Kronecker product of factor rows for
// levels [0, level), excluding the output depth) down the tree until
// level reaches the output depth, where it combines head with a
// bottom-up tail and writes the result into Y.
func (w *generalWalk) processLevel(level, node int, head []float64) {
	if level == w.depth {
		w.emit(level, node, head)
		return
	}
	newHead := combine(head, w.factorRowAt(level, node))
	lo, hi := w.children(level, node)
	for child := lo; child < hi; child++ {
		w.processLevel(level+1, child, newHead)
	}
}

// emit is reached exactly once per node at the output depth; it
// produces that node's full contribution and writes it to Y.
func (w *generalWalk) emit(level, node int, head []float64) {
	n := w.c.Nmodes
	row := w.fidAt(level, node)

	var contrib []float64
	if level == n-1 {
		contrib = scale(head, w.tile.Vals[node])
	} else {
		tailWidth := w.reduceTailWidth(level + 1)
		sumTail := make([]float64, tailWidth)
		lo, hi := w.children(level, node)
		for child := lo; child < hi; child++ {
			addInto(sumTail, w.reduceTail(level+1, child))
		}
		contrib = combine(head, sumTail)
	}
	contrib = reorderToAscending(contrib, w.nonOutputModes, w.factors)

	if level == 0 {
		addInto(w.y.Row(row), contrib)
		return
	}
	w.locks.withRowLock(row, func() {
		addInto(w.y.Row(row), contrib)
	})
}

// reduceTail is the pure bottom-up combinator below the output depth:
// it returns the sum, over the subtree rooted at (level, node), of
// value * kron(factor rows for every level in [level, N-1]).
func (w *generalWalk) reduceTail(level, node int) []float64 {
	if level == w.c.Nmodes-1 {
		return scale(w.factorRowAt(level, node), w.tile.Vals[node])
	}
	width := w.reduceTailWidth(level + 1)
	childSum := make([]float64, width)
	lo, hi := w.children(level, node)
	for child := lo; child < hi; child++ {
		addInto(childSum, w.reduceTail(level+1, child))
	}
	return combine(w.factorRowAt(level, node), childSum)
}

// reduceTailWidth is prod_{m in dim_perm[level:]} K_m, the width of
// whatever reduceTail(level, *) returns.
func (w *generalWalk) reduceTailWidth(level int) int {
	width := 1
	for d := level; d < w.c.Nmodes; d++ {
		width *= w.factors[w.c.DimPerm[d]].Cols
	}
	return width
}

// reorderToAscending re-indexes a flat Kronecker-product vector built
// in modes order (modes[0] slowest-varying, per combine's convention)
// into the equivalent vector built in ascending mode order — the
// convention ncolumns, productExcept, and the coordinate-streaming
// kernel all assume. dim_perm need not already be ascending for the
// non-output modes, so this runs once per emitted row.
func reorderToAscending(flat []float64, modes []int, factors []Matrix) []float64 {
	k := len(modes)
	if k <= 1 {
		return flat
	}

	ascending := append([]int(nil), modes...)
	sort.Ints(ascending)

	srcToDst := make([]int, k)
	srcSize := make([]int, k)
	dstSize := make([]int, k)
	for i, m := range modes {
		srcSize[i] = factors[m].Cols
		for j, am := range ascending {
			if am == m {
				srcToDst[i] = j
				break
			}
		}
	}
	for j, m := range ascending {
		dstSize[j] = factors[m].Cols
	}

	srcStride := make([]int, k)
	s := 1
	for i := k - 1; i >= 0; i-- {
		srcStride[i] = s
		s *= srcSize[i]
	}
	dstStride := make([]int, k)
	s = 1
	for j := k - 1; j >= 0; j-- {
		dstStride[j] = s
		s *= dstSize[j]
	}

	out := make([]float64, len(flat))
	coord := make([]int, k)
	for lin, v := range flat {
		rem := lin
		for i := 0; i < k; i++ {
			coord[i] = rem / srcStride[i]
			rem %= srcStride[i]
		}
		dstLin := 0
		for i := 0; i < k; i++ {
			dstLin += coord[i] * dstStride[srcToDst[i]]
		}
		out[dstLin] = v
	}
	return out
}

func combine(head, row []float64) []float64 {
	if head == nil {
		return append([]float64(nil), row...)
	}
	out := make([]float64, len(head)*len(row))
	kernel.Outer(head, row, out)
	return out
}

func scale(head []float64, v float64) []float64 {
	if head == nil {
		return []float64{v}
	}
	out := make([]float64, len(head))
	for i, x := range head {
		out[i] = v * x
	}
	return out
}

func addInto(dst, src []float64) {
	for i, v := range src {
		dst[i] += v
	}
}
