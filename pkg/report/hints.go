// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package report

import (
	"fmt"

	"github.com/sigtools/sigtriage/pkg/report/crash"
)

// genericHints is the fallback tip set, used for unknown signals and for
// clean exits.
var genericHints = []string{
	"Check for null pointers",
	"Verify array bounds",
	"Ensure memory is properly allocated",
	"Validate function inputs",
	"Use tools like Valgrind for memory issues",
}

// categoryHints holds the per-category quick tips.
var categoryHints = map[crash.Category][]string{
	crash.Segfault: {
		"Check for null pointers",
		"Verify array bounds",
		"Ensure memory is properly allocated",
		"Validate function inputs",
		"Avoid double frees or invalid frees",
		"Use tools like Valgrind for memory issues",
	},
	crash.Abort: {
		"Look for failed assertions or explicit abort() calls",
		"Check for heap corruption reported by the allocator",
		"Avoid double frees or invalid frees",
		"Read the program's own error output above the crash",
		"Use tools like Valgrind for memory issues",
	},
	crash.FloatingPoint: {
		"Check for division by zero",
		"Check integer division and modulo, not just floats",
		"Watch for integer overflow in arithmetic",
		"Validate function inputs",
	},
	crash.IllegalInstruction: {
		"Check for corrupted or miscast function pointers",
		"Make sure the binary matches your CPU (compiler flags)",
		"Watch for stack smashing overwriting return addresses",
		"Use tools like Valgrind for memory issues",
	},
	crash.BusError: {
		"Check for misaligned memory access",
		"Verify pointers into memory-mapped files",
		"Check whether a file backing an mmap region was truncated",
		"Verify array bounds",
	},
	crash.Trap: {
		"Remove leftover breakpoints or __builtin_trap() calls",
		"Check for sanitizer or instrumentation traps in the build",
		"Run the program outside the debugger to confirm the trap",
	},
	crash.BadSyscall: {
		"Check seccomp filters restricting system calls",
		"Verify raw syscall numbers passed to syscall()",
		"Rebuild the program against the correct libc",
	},
}

// buildHints assembles contextual hints first, then the category's tip
// set, deduplicating with first occurrence winning. The result is never
// empty: every category resolves to a non-empty tip set.
func (s *Synthesizer) buildHints(cat crash.Category, conf Confidence, frames []Frame, culprit int) []string {
	var hints []string
	hints = append(hints, s.contextualHints(cat, conf, frames, culprit)...)
	tips, ok := s.hints[cat]
	if !ok {
		tips = genericHints
	}
	hints = append(hints, tips...)
	return dedup(hints)
}

func (s *Synthesizer) contextualHints(cat crash.Category, conf Confidence, frames []Frame, culprit int) []string {
	if !cat.IsCrash() {
		return nil
	}
	var hints []string
	switch conf {
	case ConfidenceHigh:
		if callee := s.innerLibraryCall(frames, culprit); callee != "" {
			hints = append(hints,
				"Your code called a system function that caused the crash",
				fmt.Sprintf("The system was trying to: %s", callee))
		}
	case ConfidenceLow:
		hints = append(hints,
			"You may have passed invalid data to a system function",
			"Memory may have been corrupted before the library call",
			"You may be using a library function incorrectly")
	}
	if !anySourceInfo(frames) {
		hints = append(hints, "Compile with the -g flag for file and line details (g++ -g your_code.cpp)")
	}
	return hints
}

// innerLibraryCall names the innermost library function the culprit's
// call chain reached, "" when the culprit is itself the innermost frame.
func (s *Synthesizer) innerLibraryCall(frames []Frame, culprit int) string {
	for i := len(frames) - 1; i > culprit; i-- {
		f := &frames[i]
		if f.Func == "" || f.Func == "<signal handler called>" {
			continue
		}
		if s.deniedFunc(f.Func) || s.deniedLocation(f) {
			return f.Func
		}
	}
	return ""
}

func anySourceInfo(frames []Frame) bool {
	for _, f := range frames {
		if f.File != "" {
			return true
		}
	}
	return false
}

func dedup(hints []string) []string {
	seen := make(map[string]bool, len(hints))
	out := make([]string, 0, len(hints))
	for _, hint := range hints {
		if hint == "" || seen[hint] {
			continue
		}
		seen[hint] = true
		out = append(out, hint)
	}
	return out
}
