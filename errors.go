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

import (
	"fmt"
	"os"
)

// FatalError is raised via fatalf for the unsupported-configuration
// and failed-assertion classes of spec §7: the kernel does not
// recover locally, and the diagnostic is also echoed to stderr before
// the panic unwinds. Out-of-memory is left to the Go runtime and does
// not produce a FatalError. TTMC and TTMCStream also return a
// *FatalError as their error value, without a panic or stderr echo,
// for caller-avoidable precondition violations. The stderr echo
// matches the teacher's own fmt.Fprintf(os.Stderr, "Error: %v\n", err) diagnostic style
// (cmd/hwygen/main.go) rather than adopting a logging framework in
// the core.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string { return e.Msg }

// fatalf formats a diagnostic, writes it to stderr, and panics with a
// *FatalError. Callers that need resilience must construct inputs in
// advance; there is no recovery path inside the kernel (spec §7).
func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "ttmc: fatal: %s\n", msg)
	panic(&FatalError{Msg: msg})
}

// assertf is the precondition-violation layer of spec §7
// ("programmer error; detected by assertions in debug builds").
// Go has no separate debug/release assertion toggle, so this is
// always compiled in; it exists to name precondition checks
// distinctly from the fatal/OOM/unsupported-configuration class above.
func assertf(cond bool, format string, args ...any) {
	if !cond {
		fatalf(format, args...)
	}
}
