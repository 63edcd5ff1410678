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

import "sync"

// numLockStripes is LOCKS from spec §3/§4.2: a fixed-size pool of
// locks, one stripe per hashed output row, bounding the memory cost
// of serializing concurrent writes regardless of dims[n].
const numLockStripes = 1024

// cacheLinePad is sized so each stripe lock lives on its own cache
// line; a sync.Mutex is smaller than this on every supported
// architecture, so the padding bytes absorb the rest of the line and
// prevent false sharing between adjacent stripes (spec §4.2/§5:
// "each padded to a cache line... a hash collision causes false
// sharing but not incorrectness" — padding addresses the sharing
// case that isn't already a hash collision).
const cacheLinePad = 64

type paddedMutex struct {
	mu   sync.Mutex
	_pad [cacheLinePad - 8]byte // best-effort pad after the 8-byte-ish mutex
}

// lockStripe is the "hash index -> lock" and "scoped acquisition"
// abstraction called for by spec §9's design notes, replacing a
// process-wide global lock table with an explicit, lazily-initialized
// value embedded in the orchestrator's run state.
type lockStripe struct {
	once  sync.Once
	locks [numLockStripes]paddedMutex
}

func (s *lockStripe) ensureInit() {
	s.once.Do(func() {
		// locks array is zero-value-ready (sync.Mutex zero value is
		// unlocked); ensureInit exists so the idempotent-initialization
		// contract of spec §4.2 is explicit and future stripe state
		// (e.g. per-lock counters) has a single place to initialize.
	})
}

// Lock serializes writers to output row i via i mod LOCKS.
func (s *lockStripe) Lock(i int) {
	s.ensureInit()
	s.locks[stripeIndex(i)].mu.Lock()
}

// Unlock releases the stripe lock for row i.
func (s *lockStripe) Unlock(i int) {
	s.locks[stripeIndex(i)].mu.Unlock()
}

func stripeIndex(i int) int {
	if i < 0 {
		i = -i
	}
	return i % numLockStripes
}

// withRowLock runs fn with row i's stripe lock held.
func (s *lockStripe) withRowLock(i int, fn func()) {
	s.Lock(i)
	defer s.Unlock(i)
	fn()
}
