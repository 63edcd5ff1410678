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
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// CSF allocation scheme labels used as row names in FillFlopTbl's
// report. CSF-1, CSF-2 and CSF-A correspond to the ONEMODE, TWOMODE
// and ALLMODE schemes that AllocScheme.String() names.
const (
	rowCSF1   = "CSF-1"
	rowCSF2   = "CSF-2"
	rowCSFA   = "CSF-A"
	rowCoord  = "coordinate"
	rowCustom = "custom"
)

// FlopTableRowNames is the fixed row order FillFlopTbl reports, one
// name per returned row.
var FlopTableRowNames = []string{rowCSF1, rowCSF2, rowCSFA, rowCoord, rowCustom}

// FillFlopTbl estimates, for each CSF allocation scheme and each
// output mode, the multiply-add cost of a TTMC call against that
// mode — spec §4.9's planning step, run before any CSF is actually
// built. The estimate approximates a CSF's reuse by splitting each
// mode's work into a "head" term (levels above the output depth,
// cost proportional to nnz times the head's combined column width)
// and a "tail" term (levels below, same idea). When the output mode
// sits at the root or the leaf one term vanishes and the estimate
// equals the coordinate kernel's full per-non-zero Kronecker product;
// an internal output mode can cost less, since head plus tail width
// is at most their product once both exceed 1.
//
// onProgress, when non-nil, receives each row's name in
// FlopTableRowNames order once all rows have been computed (a CLI
// driving a progress bar, the teacher's logging convention applied to
// a multi-step report rather than a single call).
func FillFlopTbl(coord *CoordTensor, nfactors []int, onProgress func(string)) [][]float64 {
	nmodes := coord.Nmodes()
	assertf(len(nfactors) == nmodes, "FillFlopTbl: nfactors must have one entry per mode")

	// The four independent rows have no cross-dependency, so compute
	// them concurrently; onProgress is still reported afterward in the
	// table's fixed row order, so a caller driving a progress bar sees
	// a stable sequence regardless of goroutine completion order.
	var csf1, csf2, csfA, coordRow []float64
	var g errgroup.Group
	g.Go(func() error { csf1 = csf1Row(coord, nfactors); return nil })
	g.Go(func() error { csf2 = csf2Row(coord, nfactors); return nil })
	g.Go(func() error { csfA = csfARow(coord, nfactors); return nil })
	g.Go(func() error { coordRow = coordinateRow(coord, nfactors); return nil })
	_ = g.Wait()

	custom := customRow(csf1, csf2, csfA, coordRow)

	if onProgress != nil {
		for _, name := range FlopTableRowNames {
			onProgress(name)
		}
	}

	return [][]float64{csf1, csf2, csfA, coordRow, custom}
}

// csf1Row is the ONEMODE scheme: a single CSF, rooted at the mode with
// the largest dimension (the mode whose slices are cheapest to spread
// across workers).
func csf1Row(coord *CoordTensor, nfactors []int) []float64 {
	root := argmaxDim(coord.Dims)
	perm := dimPermRootedAt(coord.Nmodes(), root)
	row := make([]float64, coord.Nmodes())
	for n := range row {
		row[n] = csfModeCost(coord.NNZ, perm, nfactors, n)
	}
	return row
}

// csf2Row is the TWOMODE scheme: two CSFs, one rooted at the leaf mode
// of the other's ordering (spec §4.7's special-cased pair), so every
// mode is reachable as either a root or a one-hop-from-root traversal.
func csf2Row(coord *CoordTensor, nfactors []int) []float64 {
	nmodes := coord.Nmodes()
	root0 := argmaxDim(coord.Dims)
	perm0 := dimPermRootedAt(nmodes, root0)
	root1 := perm0[nmodes-1]
	perm1 := dimPermRootedAt(nmodes, root1)

	row := make([]float64, nmodes)
	for n := range row {
		if n == root1 {
			row[n] = csfModeCost(coord.NNZ, perm1, nfactors, n)
			continue
		}
		row[n] = csfModeCost(coord.NNZ, perm0, nfactors, n)
	}
	return row
}

// csfARow is the ALLMODE scheme: one CSF rooted at every mode, so
// every output mode gets the cheapest possible (root) traversal.
func csfARow(coord *CoordTensor, nfactors []int) []float64 {
	nmodes := coord.Nmodes()
	row := make([]float64, nmodes)
	for n := range row {
		perm := dimPermRootedAt(nmodes, n)
		row[n] = csfModeCost(coord.NNZ, perm, nfactors, n)
	}
	return row
}

// coordinateRow is the cost of the streaming kernel (spec §4.8): one
// full Kronecker product of every non-output mode's factor row, per
// non-zero.
func coordinateRow(coord *CoordTensor, nfactors []int) []float64 {
	nmodes := coord.Nmodes()
	row := make([]float64, nmodes)
	for n := range row {
		width := 1
		for m := 0; m < nmodes; m++ {
			if m == n {
				continue
			}
			width *= nfactors[m]
		}
		row[n] = float64(coord.NNZ) * float64(width)
	}
	return row
}

// customRow picks, per mode, the cheapest of the CSF schemes plus
// coordinate fallback — the report a caller without a fixed
// AllocScheme preference would actually want.
func customRow(rows ...[]float64) []float64 {
	nmodes := len(rows[0])
	out := make([]float64, nmodes)
	for n := range out {
		vals := make([]float64, 0, len(rows))
		for _, r := range rows {
			vals = append(vals, r[n])
		}
		out[n] = lo.Min(vals)
	}
	return out
}

// csfModeCost approximates the flop cost of traversing a CSF with the
// given mode ordering (perm) to produce output mode n: a head term for
// levels above n's depth (zero when n is the root) and a tail term
// for levels below it (zero when n is the leaf), each proportional to
// nnz times that side's combined column width. A root or leaf output
// mode therefore costs exactly one full-width reduction, the same as
// the coordinate kernel's single pass; an internal mode costs two.
func csfModeCost(nnz int, perm []int, nfactors []int, n int) float64 {
	d := indexOf(perm, n)
	headTerm := 0
	if d > 0 {
		headTerm = 1
		for i := 0; i < d; i++ {
			headTerm *= nfactors[perm[i]]
		}
	}
	tailTerm := 0
	if d < len(perm)-1 {
		tailTerm = 1
		for i := d + 1; i < len(perm); i++ {
			tailTerm *= nfactors[perm[i]]
		}
	}
	return float64(nnz) * float64(headTerm+tailTerm)
}

func dimPermRootedAt(nmodes, root int) []int {
	perm := make([]int, 0, nmodes)
	perm = append(perm, root)
	for m := 0; m < nmodes; m++ {
		if m != root {
			perm = append(perm, m)
		}
	}
	return perm
}

func argmaxDim(dims []int) int {
	best := 0
	for m, d := range dims {
		if d > dims[best] {
			best = m
		}
	}
	return best
}

func indexOf(perm []int, n int) int {
	for i, m := range perm {
		if m == n {
			return i
		}
	}
	fatalf("mode %d not present in permutation %v", n, perm)
	panic("unreachable")
}

// LargestOuter returns, per CSF, the number of slices at its root —
// the largest unit of outer parallelism available when that CSF is
// chosen to service a TTMC call, used to size worker-count decisions
// before a call is dispatched.
func LargestOuter(csfs []*CSF, opts Options) []int {
	_ = opts
	return lo.Map(csfs, func(c *CSF, _ int) int {
		assertf(len(c.Tiles) > 0, "LargestOuter: CSF has no tiles")
		return c.Tiles[0].NumSlices()
	})
}

// TenoutDim returns the largest per-mode output buffer size
// (dims[m] times the product of every other mode's nfactors) across
// all modes, sized so a Tucker/HOOI driver can allocate one reusable Y
// buffer across its mode loop instead of reallocating per mode.
func TenoutDim(dims, nfactors []int) int {
	assertf(len(dims) == len(nfactors), "TenoutDim: dims and nfactors must be the same length")
	sizes := make([]int, len(dims))
	for m := range dims {
		sizes[m] = dims[m] * productExcept(nfactors, m)
	}
	return lo.Max(sizes)
}
