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

// twoNonzero333 builds a 3x3x3 CSF with two non-zeros sharing a slice:
// (0,1,2)=1.5 and (0,2,0)=2.5, plus a third non-zero in another slice:
// (2,0,1)=4.0 — enough structure to exercise real fiber reuse in the
// root/internal/leaf traversals.
func twoNonzero333() *CSF {
	tile := &Tile{
		Nfibs: []int{2, 3, 3},
		Fptr: [][]int{
			{0, 2, 3},
			{0, 1, 2, 3},
		},
		Fids: [][]int32{
			{0, 2},
			{1, 2, 0},
			{2, 0, 1},
		},
		Vals: []float64{1.5, 2.5, 4.0},
	}
	return &CSF{
		Nmodes:    3,
		Dims:      []int{3, 3, 3},
		DimPerm:   []int{0, 1, 2},
		WhichTile: NOTILE,
		Tiles:     []*Tile{tile},
	}
}

func twoNonzero333AsCoord() *CoordTensor {
	return &CoordTensor{
		Inds: [][]int32{
			{0, 0, 2},
			{1, 2, 0},
			{2, 0, 1},
		},
		Vals: []float64{1.5, 2.5, 4.0},
		Dims: []int{3, 3, 3},
		NNZ:  3,
	}
}

func randomish3x3() Matrix {
	return NewMatrix([]float64{
		1, 2,
		0.5, -1,
		3, 0.25,
	}, 3, 2)
}

// TestTraversalsAgreeWithStreaming covers scenario S3: for every
// output mode of a 3-mode tensor, the CSF root/internal/leaf
// traversals and the coordinate-streaming kernel compute identical Y.
func TestTraversalsAgreeWithStreaming(t *testing.T) {
	factors := []Matrix{randomish3x3(), randomish3x3(), randomish3x3()}
	ncolumns := []int{2, 2, 2}

	for n := 0; n < 3; n++ {
		c := twoNonzero333()
		outCSF := make([]float64, 3*productExcept(ncolumns, n))
		require.NoError(t, TTMC(n, ncolumns, []*CSF{c}, factors, outCSF, DefaultOptions()))

		coord := twoNonzero333AsCoord()
		outStream := make([]float64, 3*productExcept(ncolumns, n))
		require.NoError(t, TTMCStream(coord, factors, outStream, n, DefaultOptions()))

		assert.InDeltaSlice(t, outStream, outCSF, 1e-9, "mode %d", n)
	}
}

// nonAscendingDimPermSingleNonzero builds a 2x2x2 CSF with dim_perm
// [0,2,1] (root=mode0, level1=mode2, level2=mode1) and a single
// non-zero at (i0=0,i1=1,i2=0)=1.0 — the one non-zero's two non-root
// modes (1 and 2) appear in descending order in dim_perm, so a
// traversal that wrote Y in dim_perm order instead of ascending mode
// order would silently swap its two output columns.
func nonAscendingDimPermSingleNonzero() *CSF {
	tile := &Tile{
		Nfibs: []int{1, 1, 1},
		Fptr:  [][]int{{0, 1}, {0, 1}},
		Fids:  [][]int32{nil, {0}, {1}},
		Vals:  []float64{1.0},
	}
	return &CSF{
		Nmodes:    3,
		Dims:      []int{2, 2, 2},
		DimPerm:   []int{0, 2, 1},
		WhichTile: NOTILE,
		Tiles:     []*Tile{tile},
	}
}

func nonAscendingDimPermSingleNonzeroAsCoord() *CoordTensor {
	return &CoordTensor{
		Inds: [][]int32{{0}, {1}, {0}},
		Vals: []float64{1.0},
		Dims: []int{2, 2, 2},
		NNZ:  1,
	}
}

// TestTraversalsAgreeWithStreamingNonAscendingDimPerm guards against Y
// being written in dim_perm order instead of ascending mode order:
// the other 3-mode fixtures in this package use an identity dim_perm,
// which happens to mask that bug, so this one deliberately uses a
// non-ascending dim_perm with non-symmetric factor rows that would
// expose a column swap.
func TestTraversalsAgreeWithStreamingNonAscendingDimPerm(t *testing.T) {
	u1 := NewMatrix([]float64{0, 0, 2, 3}, 2, 2) // U1.Row(1) = [2, 3]
	u2 := NewMatrix([]float64{5, 7, 0, 0}, 2, 2) // U2.Row(0) = [5, 7]
	factors := []Matrix{identity2(), u1, u2}
	ncolumns := []int{2, 2, 2}

	c := nonAscendingDimPermSingleNonzero()
	outCSF := make([]float64, 2*productExcept(ncolumns, 0))
	require.NoError(t, TTMC(0, ncolumns, []*CSF{c}, factors, outCSF, DefaultOptions()))

	coord := nonAscendingDimPermSingleNonzeroAsCoord()
	outStream := make([]float64, 2*productExcept(ncolumns, 0))
	require.NoError(t, TTMCStream(coord, factors, outStream, 0, DefaultOptions()))

	assert.InDeltaSlice(t, outStream, outCSF, 1e-9)

	y := NewMatrix(outCSF, 2, 4)
	assert.Equal(t, []float64{10, 14, 15, 21}, y.Row(0))
}
