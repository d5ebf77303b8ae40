// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package report

import (
	"fmt"
	"strings"
)

// boilerplateFuncs are function names that never explain a crash:
// process startup, thread entry and the signal/abort delivery machinery.
var boilerplateFuncs = []string{
	"_start",
	"__libc_start_main",
	"__libc_start_call_main",
	"clone",
	"clone3",
	"start_thread",
	"__restore_rt",
	"<signal handler called>",
	"raise",
	"gsignal",
	"abort",
	"kill",
	"pthread_kill",
	"__pthread_kill_implementation",
	"__pthread_kill_internal",
	"__assert_fail",
	"__assert_fail_base",
	"__stack_chk_fail",
	"__fortify_fail",
	"malloc_printerr",
}

// boilerplatePrefixes catch the internal-name families of the above plus
// C++ runtime internals.
var boilerplatePrefixes = []string{
	"__GI_",
	"__libc_",
	"std::",
	"operator",
}

// libraryFilePatterns match source locations inside system libraries.
// A frame there is rarely the bug; the caller above it usually is.
var libraryFilePatterns = []string{
	`^/usr`,
	`^/lib`,
	`sysdeps`,
	`malloc`,
	`\.so`,
	`libc`,
	`libstdc\+\+`,
	`libpthread`,
	`ld-linux`,
	`csu`,
	`vg_preload`,
	`linux-gnu`,
}

func (s *Synthesizer) deniedFunc(fn string) bool {
	if s.denyFuncs[fn] {
		return true
	}
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(fn, prefix) {
			return true
		}
	}
	return false
}

func (s *Synthesizer) deniedLocation(f *Frame) bool {
	loc := f.File
	if loc == "" {
		loc = f.Lib
	}
	if loc == "" {
		return false
	}
	for _, re := range s.denyFiles {
		if re.MatchString(loc) {
			return true
		}
	}
	return false
}

// culprit walks the stack from the crash site outward and returns the
// position of the first frame that looks like application code. When
// every frame looks like library or startup code it falls back to the
// innermost frame that is not pure runtime plumbing, then to the
// innermost frame unconditionally. Returns -1 for an empty stack.
func (s *Synthesizer) culprit(frames []Frame) (int, Confidence) {
nextFrame:
	for i := len(frames) - 1; i >= 0; i-- {
		f := &frames[i]
		if s.deniedFunc(f.Func) {
			continue
		}
		loc := f.File
		if loc == "" {
			loc = f.Lib
		}
		if loc != "" {
			for _, re := range s.denyFiles {
				if re.MatchString(loc) {
					continue nextFrame
				}
			}
		}
		return i, ConfidenceHigh
	}
	for i := len(frames) - 1; i >= 0; i-- {
		if !runtimePlumbing(frames[i].Func) {
			return i, ConfidenceLow
		}
	}
	if len(frames) > 0 {
		return len(frames) - 1, ConfidenceLow
	}
	return -1, ConfidenceNone
}

// runtimePlumbing marks names nobody wants pointed at even as a fallback.
func runtimePlumbing(fn string) bool {
	for _, part := range []string{"std::", "__GI_", "__libc_"} {
		if strings.Contains(fn, part) {
			return true
		}
	}
	return false
}

// unknownName stands in for a stripped or unresolvable function name.
const unknownName = "unknown:unknown"

// buildTrace renders one display line per frame, outermost first. Each
// line carries the frame's display position; the culprit line trades its
// number for the "→" marker. The first line notes where execution started
// unless it is the culprit itself.
func buildTrace(frames []Frame, culprit int) []string {
	if len(frames) == 0 {
		return nil
	}
	trace := make([]string, 0, len(frames))
	for i, f := range frames {
		var b strings.Builder
		if i == culprit {
			b.WriteString("→ ")
		} else {
			fmt.Fprintf(&b, "%d. ", i+1)
		}
		if f.Func == "" {
			b.WriteString(unknownName)
		} else {
			b.WriteString(f.Func)
		}
		if f.File != "" {
			b.WriteString(" at ")
			b.WriteString(f.File)
			if f.Line > 0 {
				fmt.Fprintf(&b, ":%d", f.Line)
			}
		}
		if i == culprit {
			b.WriteString(" (crashed here)")
		} else if i == 0 {
			b.WriteString(" (started here)")
		}
		trace = append(trace, b.String())
	}
	return trace
}
