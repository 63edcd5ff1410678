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
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ajroetker/go-ttmc"
)

var (
	flopsDims  string
	flopsNcols string
	flopsNNZ   int
)

var flopsCmd = &cobra.Command{
	Use:   "flops",
	Short: "Print the per-mode flop-cost table for a synthetic tensor shape",
	Run: func(cmd *cobra.Command, args []string) {
		dims, err := parseIntList(flopsDims)
		if err != nil {
			logrus.Fatalf("--dims: %v", err)
		}
		ncols, err := parseIntList(flopsNcols)
		if err != nil {
			logrus.Fatalf("--ncols: %v", err)
		}
		if len(dims) != len(ncols) {
			logrus.Fatalf("--dims and --ncols must list the same number of modes")
		}

		coord := &ttmc.CoordTensor{Dims: dims, NNZ: flopsNNZ}
		rows := ttmc.FillFlopTbl(coord, ncols, func(name string) {
			logrus.Infof("computed row %q", name)
		})

		for i, name := range ttmc.FlopTableRowNames {
			fmt.Printf("%-10s %v\n", name, rows[i])
		}
	},
}

func init() {
	flopsCmd.Flags().StringVar(&flopsDims, "dims", "", "comma-separated tensor dimensions, one per mode")
	flopsCmd.Flags().StringVar(&flopsNcols, "ncols", "", "comma-separated factor-matrix column counts, one per mode")
	flopsCmd.Flags().IntVar(&flopsNNZ, "nnz", 0, "number of non-zeros")
	flopsCmd.MarkFlagRequired("dims")
	flopsCmd.MarkFlagRequired("ncols")
	flopsCmd.MarkFlagRequired("nnz")
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, len(parts))
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%q is not an integer", p)
		}
		out[i] = v
	}
	return out, nil
}
