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

// CoordTensor is the coordinate-form (COO) representation used by the
// streaming kernel of spec §4.8: one int32 index slice per mode plus a
// parallel value slice, the sparse-tensor analogue of the teacher's
// flat triplet inputs. Unlike CSF it needs no construction pass, which
// makes it the right fallback when a tensor is touched only once.
type CoordTensor struct {
	Inds [][]int32
	Vals []float64
	Dims []int
	NNZ  int
}

// Nmodes reports the tensor's order.
func (t *CoordTensor) Nmodes() int {
	return len(t.Dims)
}

// streamRange implements spec §4.8 over the non-zero range [lo, hi):
// for each non-zero, form the Kronecker product of every non-output
// mode's factor row, scale by the stored value, and lock-accumulate
// the result into the output row. No fiber structure means no reuse
// across non-zeros is possible, unlike the CSF traversals.
func streamRange(coord *CoordTensor, factors []Matrix, y Matrix, locks *lockStripe, n, lo, hi int) {
	nmodes := coord.Nmodes()

	for jj := lo; jj < hi; jj++ {
		var vec []float64
		for m := 0; m < nmodes; m++ {
			if m == n {
				continue
			}
			vec = combine(vec, factors[m].Row(int(coord.Inds[m][jj])))
		}
		contrib := scale(vec, coord.Vals[jj])
		row := int(coord.Inds[n][jj])
		locks.withRowLock(row, func() {
			addInto(y.Row(row), contrib)
		})
	}
}
