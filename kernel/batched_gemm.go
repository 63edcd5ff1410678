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

//go:build !ttmc_noblas

package kernel

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// batchedOuterAddImpl delegates to a dense GEMM backend when one is
// linked, realizing out += A^T * B as a single rank-update
// (spec §4.1/§2 item 2: "batched outer-product-sum implemented... by
// delegating to a dense GEMM backend... when available"). gonum's
// pure-Go blas64 implementation is the GEMM backend this build is
// probed against; it requires no cgo or external BLAS library, so it
// is the default unless the ttmc_noblas build tag selects the naive
// row-accumulate variant in batched_naive.go.
func batchedOuterAddImpl(a, b, out []float64, f, ka, kb int) {
	if f == 0 {
		return
	}
	am := blas64.General{Rows: f, Cols: ka, Stride: ka, Data: a[:f*ka]}
	bm := blas64.General{Rows: f, Cols: kb, Stride: kb, Data: b[:f*kb]}
	cm := blas64.General{Rows: ka, Cols: kb, Stride: kb, Data: out[:ka*kb]}
	blas64.Gemm(blas.Trans, blas.NoTrans, 1, am, bm, 1, cm)
}
