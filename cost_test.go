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

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestFillFlopTblCustomRowIsPerModeMinimum covers scenario S6: the
// "custom" row must equal, mode by mode, the minimum of the CSF-1,
// CSF-2, CSF-A, and coordinate rows.
func TestFillFlopTblCustomRowIsPerModeMinimum(t *testing.T) {
	coord := &CoordTensor{Dims: []int{10, 20, 30}, NNZ: 500}
	nfactors := []int{4, 6, 8}

	var seen []string
	rows := FillFlopTbl(coord, nfactors, func(name string) { seen = append(seen, name) })
	if diff := cmp.Diff(FlopTableRowNames, seen); diff != "" {
		t.Errorf("progress row names mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, rows, 5)

	csf1, csf2, csfA, coordRow, custom := rows[0], rows[1], rows[2], rows[3], rows[4]
	for n := 0; n < 3; n++ {
		want := csf1[n]
		for _, r := range [][]float64{csf2, csfA, coordRow} {
			if r[n] < want {
				want = r[n]
			}
		}
		assert.Equal(t, want, custom[n], "mode %d", n)
	}
}

// TestFillFlopTblCoordinateRowFormula pins the coordinate row to its
// closed form: nnz times the product of every other mode's column
// count.
func TestFillFlopTblCoordinateRowFormula(t *testing.T) {
	coord := &CoordTensor{Dims: []int{5, 5, 5}, NNZ: 100}
	nfactors := []int{2, 3, 4}

	rows := FillFlopTbl(coord, nfactors, nil)
	coordRow := rows[3]

	assert.Equal(t, float64(100*3*4), coordRow[0])
	assert.Equal(t, float64(100*2*4), coordRow[1])
	assert.Equal(t, float64(100*2*3), coordRow[2])
}

// TestFillFlopTblCSFARowIsRootEverywhere checks that ALLMODE (one CSF
// rooted at every mode) reduces to the pure-tail term: the head term
// is zero at the root.
func TestFillFlopTblCSFARowIsRootEverywhere(t *testing.T) {
	coord := &CoordTensor{Dims: []int{5, 5, 5}, NNZ: 100}
	nfactors := []int{2, 3, 4}

	rows := FillFlopTbl(coord, nfactors, nil)
	csfA := rows[2]

	assert.Equal(t, float64(100*3*4), csfA[0])
	assert.Equal(t, float64(100*2*4), csfA[1])
	assert.Equal(t, float64(100*2*3), csfA[2])
}

func TestLargestOuterReturnsRootSliceCounts(t *testing.T) {
	c1 := single222(1.0)
	c2 := twoNonzero333()

	got := LargestOuter([]*CSF{c1, c2}, DefaultOptions())
	assert.Equal(t, []int{2, 2}, got)
}

func TestTenoutDimReturnsLargestOutputBuffer(t *testing.T) {
	dims := []int{10, 4, 6}
	nfactors := []int{2, 20, 3}
	// mode0 dominates: 10*(20*3) = 600
	assert.Equal(t, 600, TenoutDim(dims, nfactors))
}
