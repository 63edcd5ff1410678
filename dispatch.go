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

// TraversalKind names which of the mode-specialized traversals (or
// the general N-mode walk) handles a given output mode, mirroring the
// "tagged-variant over... traversal kind. No virtual dispatch is
// needed" design note of spec §9. This plays the same structural role
// in this module as the teacher's DispatchLevel enum
// (github.com/ajroetker/go-highway's hwy/dispatch.go) played for SIMD
// instruction-set selection: a small enum plus a String method, with
// the actual selection logic kept in one place.
type TraversalKind int

const (
	// TraversalRoot is used when the output mode is the CSF root
	// (depth 0): every slice owns a distinct Y row, no locking.
	TraversalRoot TraversalKind = iota
	// TraversalInternal is used when the output mode is an internal
	// level of a 3-mode CSF: writes are locked.
	TraversalInternal
	// TraversalLeaf is used when the output mode is the CSF leaf of a
	// 3-mode CSF: writes are locked, per non-zero.
	TraversalLeaf
	// TraversalGeneralN is the N-mode (N>3) walk of spec §4.6,
	// generalized (DESIGN.md open-question resolution) to handle the
	// output mode at any depth, not only the root: it reuses the
	// coordinate-streaming per-leaf Kronecker recurrence (§4.8) over
	// the CSF tree, locking the output row only when the output mode
	// is not the root.
	TraversalGeneralN
)

func (k TraversalKind) String() string {
	switch k {
	case TraversalRoot:
		return "root"
	case TraversalInternal:
		return "internal"
	case TraversalLeaf:
		return "leaf"
	case TraversalGeneralN:
		return "general-n"
	default:
		return "unknown"
	}
}

// route is the resolved plan for one TTMC call: which CSF (by index
// into the csfs slice) and which traversal to run.
type route struct {
	csfIndex  int
	traversal TraversalKind
}

// selectRoute implements the dispatcher of spec §4.7: it chooses the
// traversal based on (a) the depth of the output mode in the CSF's
// dim_perm and (b) the CSF allocation scheme.
func selectRoute(n int, csfs []*CSF, scheme AllocScheme) route {
	for _, c := range csfs {
		c.checkNotile()
	}

	switch scheme {
	case ONEMODE:
		assertf(len(csfs) == 1, "ONEMODE requires exactly one CSF, got %d", len(csfs))
		return routeForSingleCSF(n, csfs[0], 0)

	case TWOMODE:
		assertf(len(csfs) == 2, "TWOMODE requires exactly two CSFs, got %d", len(csfs))
		c0 := csfs[0]
		if n == c0.DimPerm[c0.Nmodes-1] {
			// n is tensor-0's leaf mode; tensor 1 was built with n as
			// its root, so route to tensor 1's root traversal and
			// never take the leaf path.
			return routeForSingleCSF(n, csfs[1], 1)
		}
		// n is not c0's leaf, so this is a root or internal route for
		// a 3-mode CSF and the general walk otherwise.
		return routeForSingleCSF(n, c0, 0)

	case ALLMODE:
		assertf(len(csfs) > n && n >= 0, "ALLMODE requires a CSF per mode, got %d CSFs for mode %d", len(csfs), n)
		c := csfs[n]
		assertf(c.DimPerm[0] == n, "ALLMODE CSF for mode %d must have it at the root, dim_perm=%v", n, c.DimPerm)
		return route{csfIndex: n, traversal: rootKindFor(c)}

	default:
		fatalf("unsupported CSF allocation scheme %v", scheme)
		panic("unreachable")
	}
}

// routeForSingleCSF resolves a traversal for mode n within a single
// CSF, honoring the 3-mode fast paths and falling back to the general
// N-mode walk for N>3 roots/internals/leaves alike (spec §4.6: the
// general walk subsumes the fast paths' semantics, but the fast paths
// are kept for N==3 because they avoid the recursion's bookkeeping).
func routeForSingleCSF(n int, c *CSF, idx int) route {
	if c.Nmodes != 3 {
		return route{csfIndex: idx, traversal: TraversalGeneralN}
	}
	d := c.DepthOf(n)
	switch d {
	case 0:
		return route{csfIndex: idx, traversal: TraversalRoot}
	case c.Nmodes - 1:
		return route{csfIndex: idx, traversal: TraversalLeaf}
	default:
		return route{csfIndex: idx, traversal: TraversalInternal}
	}
}

func rootKindFor(c *CSF) TraversalKind {
	if c.Nmodes == 3 {
		return TraversalRoot
	}
	return TraversalGeneralN
}
