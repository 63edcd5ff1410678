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

// Package ttmc implements parallel tensor-times-matrix-chain (TTMc)
// contraction over an N-mode sparse tensor stored in hierarchical
// compressed sparse fiber (CSF) layout. It is the hot inner loop of
// Tucker decomposition via Higher-Order Orthogonal Iteration (HOOI).
//
// Construction of CSF tensors from coordinate data, file I/O, and
// unrelated factorization kernels are external collaborators; this
// package consumes the CSF data model (this file) and the Options
// bundle (options.go).
package ttmc

// TileTag identifies the tiling scheme a CSF payload was built with.
// This core only executes the untiled path; any other tag is fatal.
type TileTag int

const (
	// NOTILE is the only tiling scheme this core can execute.
	NOTILE TileTag = iota
	// DENSETILE, SYNCTILE, and COOPTILE are declared but always fatal
	// here; a tiling layer that constructs them is an external
	// collaborator (see spec §1 Out of scope).
	DENSETILE
	SYNCTILE
	COOPTILE
)

func (t TileTag) String() string {
	switch t {
	case NOTILE:
		return "NOTILE"
	case DENSETILE:
		return "DENSETILE"
	case SYNCTILE:
		return "SYNCTILE"
	case COOPTILE:
		return "COOPTILE"
	default:
		return "UNKNOWN"
	}
}

// Tile is one sparsity block of a CSF tensor (spec §3 "per-tile
// payload"). For the untiled scheme a CSF has exactly one Tile.
type Tile struct {
	// Nfibs[d] is the number of tree nodes at level d, for d in
	// [0, N).
	Nfibs []int

	// Fptr[d] are CSR-style pointers from level d into level d+1,
	// present for d in [0, N-2]. Fptr[d] has length Nfibs[d]+1.
	Fptr [][]int

	// Fids[d][k] is the tensor index, in mode DimPerm[d], of node k
	// at level d. Fids[0] may be nil, in which case level-0 node s
	// implicitly represents index s of mode DimPerm[0].
	Fids [][]int32

	// Vals holds one value per leaf (level N-1 node); may be nil for
	// an empty tile.
	Vals []float64
}

// NumSlices returns the number of level-0 nodes (slices) in the tile.
func (t *Tile) NumSlices() int {
	if len(t.Nfibs) == 0 {
		return 0
	}
	return t.Nfibs[0]
}

// SliceID returns the tensor index of slice s in mode DimPerm[0],
// honoring the implicit-Fids[0] convention.
func (t *Tile) SliceID(s int) int32 {
	if t.Fids[0] == nil {
		return int32(s)
	}
	return t.Fids[0][s]
}

// CSF is a read-only hierarchical compressed sparse fiber tensor.
type CSF struct {
	// Nmodes is the tensor order N.
	Nmodes int

	// Dims[m] is the logical extent of tensor mode m.
	Dims []int

	// DimPerm[d] is the tensor mode indexed by tree level d. Level 0
	// is the CSF root, level N-1 the leaf.
	DimPerm []int

	// WhichTile tags the tiling scheme; only NOTILE is supported by
	// this core.
	WhichTile TileTag

	// Tiles holds one payload per tile; Ntiles == len(Tiles).
	Tiles []*Tile
}

// Ntiles returns the number of tile payloads.
func (c *CSF) Ntiles() int {
	return len(c.Tiles)
}

// DepthOf returns the tree level at which output mode n is indexed,
// i.e. the position of n in DimPerm. It panics if n is not in DimPerm,
// which is a precondition violation (spec §7).
func (c *CSF) DepthOf(n int) int {
	for d, m := range c.DimPerm {
		if m == n {
			return d
		}
	}
	assertf(false, "mode %d not present in dim_perm %v", n, c.DimPerm)
	return -1
}

// checkNotile is the single gate every traversal and the dispatcher
// call before touching tile payloads; tiling other than NOTILE is
// fatal per spec §4.7/§7, with no partial writes to Y (Y has already
// been zeroed before any traversal starts).
func (c *CSF) checkNotile() {
	if c.WhichTile != NOTILE {
		fatalf("unsupported tiling scheme %s: only NOTILE is implemented", c.WhichTile)
	}
}
