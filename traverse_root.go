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

import "github.com/ajroetker/go-ttmc/kernel"

// traverseRoot3 implements spec §4.3: the output mode n is the CSF
// root (depth 0) of a 3-mode tensor. Each slice owns a distinct Y row,
// so no locking is needed; slices are handed out dynamically in
// chunks of 16 by the caller's parallel region.
//
// Y's columns are always laid out in ascending mode order (matching
// ncolumns and the coordinate-streaming kernel), not CSF dim_perm
// order: dim_perm[1] and dim_perm[2] need not already be ascending, so
// the batched outer product's operand order is chosen per call to
// land in the right orientation instead of always dim_perm order.
func traverseRoot3(c *CSF, tile *Tile, factors []Matrix, y Matrix, run *runState, worker, sliceLo, sliceHi int) {
	dp := c.DimPerm
	u1 := factors[dp[1]]
	u2 := factors[dp[2]]
	ascending := dp[1] < dp[2]
	scratch := run.scratch.For(worker)
	fptr0 := tile.Fptr[0]
	fptr1 := tile.Fptr[1]
	fids1 := tile.Fids[1]
	inds2 := tile.Fids[2]
	vals := tile.Vals

	for s := sliceLo; s < sliceHi; s++ {
		r := int(tile.SliceID(s))
		naccum := 0

		for f := fptr0[s]; f < fptr0[s+1]; f++ {
			acc := scratch.Slot0[naccum*u2.Cols : naccum*u2.Cols+u2.Cols]
			for k := range acc {
				acc[k] = 0
			}
			for jj := fptr1[f]; jj < fptr1[f+1]; jj++ {
				row := u2.Row(int(inds2[jj]))
				v := vals[jj]
				for k, x := range row {
					acc[k] += v * x
				}
			}
			scratch.Slot1[naccum] = fids1[f]
			naccum++
		}

		for i := range naccum {
			copy(scratch.Slot2[i*u1.Cols:i*u1.Cols+u1.Cols], u1.Row(int(scratch.Slot1[i])))
		}

		outRow := y.Row(r)
		if ascending {
			kernel.BatchedOuterAdd(scratch.Slot2, scratch.Slot0, outRow, naccum, u1.Cols, u2.Cols)
		} else {
			kernel.BatchedOuterAdd(scratch.Slot0, scratch.Slot2, outRow, naccum, u2.Cols, u1.Cols)
		}
	}
}
