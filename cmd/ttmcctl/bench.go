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

package main

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-ttmc"
)

var (
	benchDims    string
	benchNcols   string
	benchNNZ     int
	benchMode    int
	benchThreads int
	benchSeed    int64
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run the streaming kernel against a synthetic random tensor and report elapsed time",
	Run: func(cmd *cobra.Command, args []string) {
		dims, err := parseIntList(benchDims)
		if err != nil {
			logrus.Fatalf("--dims: %v", err)
		}
		ncols, err := parseIntList(benchNcols)
		if err != nil {
			logrus.Fatalf("--ncols: %v", err)
		}
		if len(dims) != len(ncols) {
			logrus.Fatalf("--dims and --ncols must list the same number of modes")
		}
		if benchMode < 0 || benchMode >= len(dims) {
			logrus.Fatalf("--mode %d out of range for %d modes", benchMode, len(dims))
		}

		coord, factors := synthesize(dims, ncols, benchNNZ, benchSeed)
		opts := ttmc.DefaultOptions()
		opts.NThreads = benchThreads

		outCols := 1
		for m, k := range ncols {
			if m != benchMode {
				outCols *= k
			}
		}
		out := make([]float64, dims[benchMode]*outCols)

		logrus.Infof("streaming %d non-zeros over %d modes with %d workers", coord.NNZ, len(dims), opts.NThreads)
		start := time.Now()
		if err := ttmc.TTMCStream(coord, factors, out, benchMode, opts); err != nil {
			logrus.Fatalf("TTMCStream: %v", err)
		}
		logrus.Infof("done in %s", time.Since(start))
	},
}

func init() {
	benchCmd.Flags().StringVar(&benchDims, "dims", "64,64,64", "comma-separated tensor dimensions")
	benchCmd.Flags().StringVar(&benchNcols, "ncols", "8,8,8", "comma-separated factor-matrix column counts")
	benchCmd.Flags().IntVar(&benchNNZ, "nnz", 10000, "number of synthetic non-zeros")
	benchCmd.Flags().IntVar(&benchMode, "mode", 0, "output mode")
	benchCmd.Flags().IntVar(&benchThreads, "threads", 4, "worker count")
	benchCmd.Flags().Int64Var(&benchSeed, "seed", 1, "random seed")
}

// synthesize builds a random coordinate tensor and a matching set of
// random dense factor matrices, purely for benchmarking; it is never
// used by the library itself.
func synthesize(dims, ncols []int, nnz int, seed int64) (*ttmc.CoordTensor, []ttmc.Matrix) {
	rng := rand.New(rand.NewSource(seed))
	nmodes := len(dims)

	inds := make([][]int32, nmodes)
	for m := range inds {
		inds[m] = make([]int32, nnz)
		for i := range inds[m] {
			inds[m][i] = int32(rng.Intn(dims[m]))
		}
	}
	vals := make([]float64, nnz)
	for i := range vals {
		vals[i] = rng.Float64()
	}
	coord := &ttmc.CoordTensor{Inds: inds, Vals: vals, Dims: dims, NNZ: nnz}

	factors := make([]ttmc.Matrix, nmodes)
	for m := range factors {
		data := make([]float64, dims[m]*ncols[m])
		for i := range data {
			data[i] = rng.Float64()
		}
		factors[m] = ttmc.NewMatrix(data, dims[m], ncols[m])
	}

	return coord, factors
}
