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

import "github.com/ajroetker/go-ttmc/pool"

// runState bundles the per-call resources every traversal needs:
// scratch slabs indexed by worker id, and the row-lock stripe shared
// by every traversal that writes output rows it doesn't own
// exclusively. It is created once per TTMC/TTMCStream call and
// discarded at the end, mirroring spec §5's fork-join region rather
// than a long-lived pool.
type runState struct {
	scratch *scratchPool
	locks   *lockStripe
	pool    *pool.Pool
}

// TTMC computes Y = X x_{m != n} U_m for one output mode n, where X is
// represented by one or more CSF tensors (per opts.CSFAlloc) and the
// U_m are the dense factor matrices in factors. Y is stored row-major
// in out, with one column per entry of the Kronecker product of every
// other mode's factor columns (the product of ncolumns[m] for m != n).
//
// TTMC returns a non-nil error for caller-avoidable precondition
// violations (mismatched factor counts, a nil CSF list). Internal
// invariant violations and unsupported tiling still panic with
// FatalError, since they indicate a bug rather than bad caller input.
func TTMC(n int, ncolumns []int, csfs []*CSF, factors []Matrix, out []float64, opts Options) error {
	if err := checkTTMCArgs(n, ncolumns, csfs, factors, out); err != nil {
		return err
	}
	opts.validate()

	rt := selectRoute(n, csfs, opts.CSFAlloc)
	c := csfs[rt.csfIndex]
	assertf(len(c.Tiles) == 1, "tiled CSFs are not supported yet, got %d tiles", len(c.Tiles))
	tile := c.Tiles[0]

	nrows := c.Dims[n]
	ncols := productExcept(ncolumns, n)
	y := NewMatrix(out, nrows, ncols)

	run := newRunState(c, factors, opts)
	defer run.pool.Close()

	run.pool.ParallelFor(len(y.Data), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			y.Data[i] = 0
		}
	})

	nslices := tile.NumSlices()
	run.pool.ParallelForAtomicBatched(nslices, 16, func(worker, lo, hi int) {
		switch rt.traversal {
		case TraversalRoot:
			traverseRoot3(c, tile, factors, y, run, worker, lo, hi)
		case TraversalInternal:
			traverseInternal3(c, tile, factors, y, run, worker, lo, hi)
		case TraversalLeaf:
			traverseLeaf3(c, tile, factors, y, run, worker, lo, hi)
		case TraversalGeneralN:
			traverseGeneralN(c, tile, factors, y, run, n, lo, hi)
		default:
			fatalf("unhandled traversal kind %v", rt.traversal)
		}
	})

	return nil
}

// TTMCStream computes the same contraction as TTMC via the
// coordinate-streaming kernel of spec §4.8, bypassing CSF construction
// entirely. It is the fallback path when no CSF allocation scheme
// applies (e.g. a one-off contraction not worth building a CSF for).
func TTMCStream(coord *CoordTensor, factors []Matrix, out []float64, n int, opts Options) error {
	if coord == nil {
		return &FatalError{Msg: "TTMCStream: coord must not be nil"}
	}
	if err := checkFactors(coord.Nmodes(), coord.Dims, factors, n); err != nil {
		return err
	}
	opts.validate()

	nrows := coord.Dims[n]
	ncols := 1
	for m, f := range factors {
		if m != n {
			ncols *= f.Cols
		}
	}
	y := NewMatrix(out, nrows, ncols)

	p := pool.New(opts.NThreads)
	defer p.Close()
	locks := &lockStripe{}

	p.ParallelFor(len(y.Data), func(_, lo, hi int) {
		for i := lo; i < hi; i++ {
			y.Data[i] = 0
		}
	})

	p.ParallelForAtomicBatched(coord.NNZ, 16, func(_, lo, hi int) {
		streamRange(coord, factors, y, locks, n, lo, hi)
	})

	return nil
}

func newRunState(c *CSF, factors []Matrix, opts Options) *runState {
	sz := scratchSizes{
		maxFiberLen: largestFiberLen([]*CSF{c}),
		maxOuterLen: 0,
		maxLeafCols: 0,
		maxRootCols: 0,
	}
	for _, f := range factors {
		if f.Cols > sz.maxLeafCols {
			sz.maxLeafCols = f.Cols
		}
	}
	sz.maxOuterLen = sz.maxLeafCols * sz.maxLeafCols
	sz.maxRootCols = sz.maxFiberLen * sz.maxLeafCols

	return &runState{
		scratch: newScratchPool(opts.NThreads, sz),
		locks:   &lockStripe{},
		pool:    pool.New(opts.NThreads),
	}
}

func checkTTMCArgs(n int, ncolumns []int, csfs []*CSF, factors []Matrix, out []float64) error {
	if len(csfs) == 0 {
		return &FatalError{Msg: "TTMC: no CSF tensors supplied"}
	}
	nmodes := csfs[0].Nmodes
	if n < 0 || n >= nmodes {
		return &FatalError{Msg: "TTMC: output mode out of range"}
	}
	if err := checkFactors(nmodes, csfs[0].Dims, factors, n); err != nil {
		return err
	}
	if len(ncolumns) != nmodes {
		return &FatalError{Msg: "TTMC: ncolumns length must equal the tensor's mode count"}
	}
	for m, f := range factors {
		if m != n && ncolumns[m] != f.Cols {
			return &FatalError{Msg: "TTMC: ncolumns does not match the corresponding factor matrix's column count"}
		}
	}
	want := csfs[0].Dims[n] * productExcept(ncolumns, n)
	if len(out) != want {
		return &FatalError{Msg: "TTMC: out buffer is the wrong size for the output mode"}
	}
	return nil
}

// productExcept returns the product of every entry of ncolumns except
// index n — the output mode's column width, since Y(i_n,:) is indexed
// by the Kronecker product of every other mode's factor columns.
func productExcept(ncolumns []int, n int) int {
	p := 1
	for m, v := range ncolumns {
		if m != n {
			p *= v
		}
	}
	return p
}

func checkFactors(nmodes int, dims []int, factors []Matrix, n int) error {
	if len(factors) != nmodes {
		return &FatalError{Msg: "TTMC: one factor matrix is required per mode"}
	}
	for m, f := range factors {
		if m == n {
			continue
		}
		if f.Rows != dims[m] {
			return &FatalError{Msg: "TTMC: factor matrix row count does not match tensor dimension"}
		}
	}
	return nil
}
