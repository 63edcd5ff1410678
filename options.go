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

// AllocScheme selects how many CSF representations of the tensor are
// supplied to TTMC and how output modes are routed among them
// (spec §4.7).
type AllocScheme int

const (
	// ONEMODE supplies exactly one CSF for all output modes.
	ONEMODE AllocScheme = iota
	// TWOMODE supplies two CSFs: the second serves the first CSF's
	// leaf mode, so that mode never needs a leaf traversal.
	TWOMODE
	// ALLMODE supplies one CSF per mode, each with that mode as root.
	ALLMODE
)

func (s AllocScheme) String() string {
	switch s {
	case ONEMODE:
		return "ONEMODE"
	case TWOMODE:
		return "TWOMODE"
	case ALLMODE:
		return "ALLMODE"
	default:
		return "UNKNOWN"
	}
}

// Options is the dense numeric option bundle recognized by the core
// (spec §6). It is constructed programmatically by callers; the CLI
// layer (cmd/ttmcctl) is responsible for turning user flags into one.
type Options struct {
	// NThreads is the fixed worker count for the call's parallel
	// region. Must be >= 1.
	NThreads int

	// CSFAlloc selects which dispatcher routing rule applies.
	CSFAlloc AllocScheme

	// Tile must be NOTILE for this core; anything else is fatal.
	Tile TileTag

	// TileDepth is accepted for interface compatibility but ignored
	// by this core (spec §6).
	TileDepth int
}

// DefaultOptions returns an Options bundle with one thread, ONEMODE
// allocation, and no tiling — the smallest valid configuration.
func DefaultOptions() Options {
	return Options{NThreads: 1, CSFAlloc: ONEMODE, Tile: NOTILE}
}

func (o Options) validate() {
	assertf(o.NThreads >= 1, "NThreads must be >= 1, got %d", o.NThreads)
	if o.Tile != NOTILE {
		fatalf("unsupported tiling scheme %s: only NOTILE is implemented", o.Tile)
	}
}
