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

//go:build ttmc_noblas

package kernel

// batchedOuterAddImpl is the naive row-at-a-time fallback, used when
// a build opts out of the GEMM backend with the ttmc_noblas build
// tag (spec §4.1/§9: "naive row-accumulate / delegated rank-update...
// correctness is identical; performance differs"). It is exactly a
// loop of OuterAdd over the F accumulated rows.
func batchedOuterAddImpl(a, b, out []float64, f, ka, kb int) {
	for r := range f {
		OuterAdd(a[r*ka:r*ka+ka], b[r*kb:r*kb+kb], out)
	}
}
