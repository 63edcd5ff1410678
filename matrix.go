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

// Matrix is a row-major dense view, used both for factor matrices
// U_m (I_m x K_m) and for the flattened output tensor Y (dims[n] x C).
// It never copies: Row returns a slice aliasing Data, matching the
// teacher's flat-buffer convention (hwy/contrib/matmul/matmul_base.go's
// c[i*n+j] indexing) rendered as a named type instead of bare slices.
type Matrix struct {
	Data []float64
	Rows int
	Cols int
}

// NewMatrix wraps data as a Rows x Cols row-major view. It panics if
// data is shorter than Rows*Cols, a precondition violation.
func NewMatrix(data []float64, rows, cols int) Matrix {
	assertf(len(data) >= rows*cols, "matrix data too short: have %d, need %d", len(data), rows*cols)
	return Matrix{Data: data, Rows: rows, Cols: cols}
}

// Row returns row i as a Cols-length slice aliasing m.Data.
func (m Matrix) Row(i int) []float64 {
	off := i * m.Cols
	return m.Data[off : off+m.Cols]
}
