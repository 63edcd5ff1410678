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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPath4Mode builds a 4-mode, 2x2x2x2 CSF with two non-zeros on
// disjoint root-to-leaf paths: (0,1,0,1)=1.0 and (1,0,1,0)=2.0.
func twoPath4Mode() *CSF {
	tile := &Tile{
		Nfibs: []int{2, 2, 2, 2},
		Fptr: [][]int{
			{0, 1, 2},
			{0, 1, 2},
			{0, 1, 2},
		},
		Fids: [][]int32{
			{0, 1},
			{1, 0},
			{0, 1},
			{1, 0},
		},
		Vals: []float64{1.0, 2.0},
	}
	return &CSF{
		Nmodes:    4,
		Dims:      []int{2, 2, 2, 2},
		DimPerm:   []int{0, 1, 2, 3},
		WhichTile: NOTILE,
		Tiles:     []*Tile{tile},
	}
}

func twoPath4ModeAsCoord() *CoordTensor {
	return &CoordTensor{
		Inds: [][]int32{
			{0, 1},
			{1, 0},
			{0, 1},
			{1, 0},
		},
		Vals: []float64{1.0, 2.0},
		Dims: []int{2, 2, 2, 2},
		NNZ:  2,
	}
}

func factorRows2x3() Matrix {
	return NewMatrix([]float64{
		1, 0, 2,
		0, 1, -1,
	}, 2, 3)
}

// TestGeneralNTraversalAgreesWithStreaming covers scenario S4: a
// 4-mode CSF routed entirely through the general N-mode walk
// (routeForSingleCSF always selects TraversalGeneralN once Nmodes!=3)
// agrees with the coordinate-streaming kernel for every output mode,
// including depths other than the root.
func TestGeneralNTraversalAgreesWithStreaming(t *testing.T) {
	factors := []Matrix{factorRows2x3(), factorRows2x3(), factorRows2x3(), factorRows2x3()}
	ncolumns := []int{3, 3, 3, 3}

	for n := 0; n < 4; n++ {
		c := twoPath4Mode()
		rt := selectRoute(n, []*CSF{c}, ONEMODE)
		assert.Equal(t, TraversalGeneralN, rt.traversal, "mode %d", n)

		outCSF := make([]float64, 2*productExcept(ncolumns, n))
		require.NoError(t, TTMC(n, ncolumns, []*CSF{c}, factors, outCSF, DefaultOptions()))

		coord := twoPath4ModeAsCoord()
		outStream := make([]float64, 2*productExcept(ncolumns, n))
		require.NoError(t, TTMCStream(coord, factors, outStream, n, DefaultOptions()))

		assert.InDeltaSlice(t, outStream, outCSF, 1e-9, "mode %d", n)
	}
}

// twoPath4ModeSwappedDimPerm builds the same two-path tree shape as
// twoPath4Mode but under dim_perm [1,0,3,2] (descending in its first
// and last level pairs), so the CSF's non-output modes are never
// already in ascending order for any output mode — unlike the
// identity-dim_perm fixtures in this package, which can't catch a
// traversal writing Y in dim_perm order instead of ascending mode
// order.
func twoPath4ModeSwappedDimPerm() *CSF {
	tile := &Tile{
		Nfibs: []int{2, 2, 2, 2},
		Fptr: [][]int{
			{0, 1, 2},
			{0, 1, 2},
			{0, 1, 2},
		},
		Fids: [][]int32{
			{0, 1},
			{1, 0},
			{0, 1},
			{1, 0},
		},
		Vals: []float64{1.0, 2.0},
	}
	return &CSF{
		Nmodes:    4,
		Dims:      []int{2, 2, 2, 2},
		DimPerm:   []int{1, 0, 3, 2},
		WhichTile: NOTILE,
		Tiles:     []*Tile{tile},
	}
}

// twoPath4ModeSwappedDimPermAsCoord is the physical-coordinate form of
// twoPath4ModeSwappedDimPerm: dim_perm [1,0,3,2] maps each tree level's
// value onto mode 1, 0, 3, 2 respectively, so the level sequences
// (0,1,0,1)=1.0 and (1,0,1,0)=2.0 land at physical coordinates
// (1,0,1,0)=1.0 and (0,1,0,1)=2.0.
func twoPath4ModeSwappedDimPermAsCoord() *CoordTensor {
	return &CoordTensor{
		Inds: [][]int32{
			{1, 0},
			{0, 1},
			{1, 0},
			{0, 1},
		},
		Vals: []float64{1.0, 2.0},
		Dims: []int{2, 2, 2, 2},
		NNZ:  2,
	}
}

// TestGeneralNTraversalAgreesWithStreamingNonAscendingDimPerm guards
// the general N-mode walk against writing Y in dim_perm order instead
// of ascending mode order, using a non-ascending dim_perm and
// alternating, non-symmetric per-mode factor matrices (distinct
// matrices on adjacent modes, so a column swap can't hide behind two
// identical factor rows).
func TestGeneralNTraversalAgreesWithStreamingNonAscendingDimPerm(t *testing.T) {
	factorA := factorRows2x3()
	factorB := NewMatrix([]float64{
		2, 1, 0,
		-1, 0, 3,
	}, 2, 3)
	factors := []Matrix{factorA, factorB, factorA, factorB}
	ncolumns := []int{3, 3, 3, 3}

	for n := 0; n < 4; n++ {
		c := twoPath4ModeSwappedDimPerm()
		rt := selectRoute(n, []*CSF{c}, ONEMODE)
		assert.Equal(t, TraversalGeneralN, rt.traversal, "mode %d", n)

		outCSF := make([]float64, 2*productExcept(ncolumns, n))
		require.NoError(t, TTMC(n, ncolumns, []*CSF{c}, factors, outCSF, DefaultOptions()))

		coord := twoPath4ModeSwappedDimPermAsCoord()
		outStream := make([]float64, 2*productExcept(ncolumns, n))
		require.NoError(t, TTMCStream(coord, factors, outStream, n, DefaultOptions()))

		assert.InDeltaSlice(t, outStream, outCSF, 1e-9, "mode %d", n)
	}
}
