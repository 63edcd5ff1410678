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

// traverseLeaf3 implements spec §4.5: the output mode n is the CSF
// leaf (depth 2) of a 3-mode tensor. This path trades a larger
// per-non-zero cost (one outer product per fiber, one locked update
// per non-zero) for skipping any per-fiber reduction.
//
// Y's columns are always laid out in ascending mode order regardless
// of dim_perm[0] vs dim_perm[1]'s relative order — see traverse_root.go.
func traverseLeaf3(c *CSF, tile *Tile, factors []Matrix, y Matrix, run *runState, worker, sliceLo, sliceHi int) {
	dp := c.DimPerm
	u0 := factors[dp[0]]
	u1 := factors[dp[1]]
	ascending := dp[0] < dp[1]
	scratch := run.scratch.For(worker)
	outerLen := u0.Cols * u1.Cols
	fptr0 := tile.Fptr[0]
	fptr1 := tile.Fptr[1]
	fids1 := tile.Fids[1]
	inds2 := tile.Fids[2]
	vals := tile.Vals

	for s := sliceLo; s < sliceHi; s++ {
		r := int(tile.SliceID(s))
		aRow := u0.Row(r)

		for f := fptr0[s]; f < fptr0[s+1]; f++ {
			bRow := u1.Row(int(fids1[f]))
			outer := scratch.Slot2[:outerLen]
			if ascending {
				kernel.Outer(aRow, bRow, outer)
			} else {
				kernel.Outer(bRow, aRow, outer)
			}

			for jj := fptr1[f]; jj < fptr1[f+1]; jj++ {
				cIdx := int(inds2[jj])
				v := vals[jj]
				run.locks.withRowLock(cIdx, func() {
					outRow := y.Row(cIdx)
					for k, ov := range outer {
						outRow[k] += v * ov
					}
				})
			}
		}
	}
}
