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

// Package kernel implements the TTMc micro-kernels of spec §4.1:
// row-times-row outer products and the batched outer-product-sum that
// realizes a single fiber/slice's rank-update into an output row. All
// kernels are free of side effects beyond their designated output
// buffer and may run on disjoint buffers concurrently.
package kernel

// Outer overwrites out[i*len(rowB)+j] = rowA[i] * rowB[j] for all
// i, j. out must have length len(rowA)*len(rowB).
func Outer(rowA, rowB, out []float64) {
	kb := len(rowB)
	for i, a := range rowA {
		row := out[i*kb : i*kb+kb]
		for j, b := range rowB {
			row[j] = a * b
		}
	}
}

// OuterAdd accumulates out[i*len(rowB)+j] += rowA[i] * rowB[j] for all
// i, j. out must have length len(rowA)*len(rowB).
func OuterAdd(rowA, rowB, out []float64) {
	kb := len(rowB)
	for i, a := range rowA {
		row := out[i*kb : i*kb+kb]
		for j, b := range rowB {
			row[j] += a * b
		}
	}
}
