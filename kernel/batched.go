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

package kernel

// BatchedOuterAdd computes out += A^T * B, where A is F x K_A
// row-major, B is F x K_B row-major, and out is K_A x K_B row-major
// (spec §4.1 batched_outer_add). F is the number of accumulated rows
// (a slice's gathered fiber count, or a fiber's non-zero count).
//
// The actual arithmetic is provided by batchedOuterAddImpl, which has
// two build-time variants (batched_gemm.go / batched_naive.go) per
// spec §9's "GEMM backend presence -> a capability probed at build
// time" design note: both must agree numerically up to floating-point
// tolerance, verified in batched_test.go.
func BatchedOuterAdd(a, b, out []float64, f, ka, kb int) {
	batchedOuterAddImpl(a, b, out, f, ka, kb)
}
