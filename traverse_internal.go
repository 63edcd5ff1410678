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

// traverseInternal3 implements spec §4.4: the output mode n is the
// middle level (depth 1) of a 3-mode CSF. Multiple slices can target
// the same output row o, so every row update is taken under the
// output row's stripe lock.
//
// Y's columns are always laid out in ascending mode order regardless
// of dim_perm[0] vs dim_perm[2]'s relative order — see traverse_root.go.
func traverseInternal3(c *CSF, tile *Tile, factors []Matrix, y Matrix, run *runState, worker, sliceLo, sliceHi int) {
	dp := c.DimPerm
	u0 := factors[dp[0]]
	u2 := factors[dp[2]]
	ascending := dp[0] < dp[2]
	scratch := run.scratch.For(worker)
	fptr0 := tile.Fptr[0]
	fptr1 := tile.Fptr[1]
	fids1 := tile.Fids[1]
	inds2 := tile.Fids[2]
	vals := tile.Vals

	for s := sliceLo; s < sliceHi; s++ {
		r := int(tile.SliceID(s))
		aRow := u0.Row(r)

		for f := fptr0[s]; f < fptr0[s+1]; f++ {
			o := int(fids1[f])
			acc := scratch.Slot0[:u2.Cols]
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

			run.locks.withRowLock(o, func() {
				if ascending {
					kernel.OuterAdd(aRow, acc, y.Row(o))
				} else {
					kernel.OuterAdd(acc, aRow, y.Row(o))
				}
			})
		}
	}
}
