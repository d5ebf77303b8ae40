// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package gdb

import (
	"bufio"
	"bytes"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/ianlancetaylor/demangle"

	"github.com/sigtools/sigtriage/pkg/report"
)

// compile expands the magic templates and compiles the result.
func compile(re string) *regexp.Regexp {
	re = strings.ReplaceAll(re, "{{ADDR}}", "0x[0-9a-fA-F]+")
	re = strings.ReplaceAll(re, "{{NUM}}", "[0-9]+")
	return regexp.MustCompile(re)
}

var (
	// "Program received signal SIGSEGV, Segmentation fault." and the
	// "Thread 1 ... received"/"Program terminated with" variants.
	signalRe = compile(`^(?:Program|Thread [^\n]*) (?:received|terminated with) signal ([A-Z][A-Z0-9+-]*), (.*?)\.?$`)
	// Backtrace frames: "#1  0xADDR in func (args) at file.c:10",
	// with the address, "at file:line" and "from lib.so" parts optional.
	frameRe = compile(`^#({{NUM}})\s+(?:({{ADDR}})\s+in\s+)?(.+?)\s+\((.*)\)(?:\s+at\s+(.+):({{NUM}})|\s+from\s+(\S+))?\s*$`)
	// The kernel's return trampoline shows up as a frame without a
	// function or location.
	signalHandlerRe = compile(`^#({{NUM}})\s+<signal handler called>$`)
	// Both spellings of process exit, old and new. gdb prints nonzero
	// exit codes in octal ("exited with code 013").
	inferiorExitRe = compile(`^\[Inferior {{NUM}} \(process {{NUM}}\) exited (?:(normally)|with code ({{NUM}}))\]$`)
	programExitRe  = compile(`^Program exited (?:(normally)|with code ({{NUM}}))\.$`)
	// "Backtrace stopped: previous frame inner to this frame (corrupt stack?)"
	backtraceStoppedRe = compile(`^Backtrace stopped: (.+)$`)
)

// Parse extracts a structured transcript from raw debugger output.
// It is forgiving: lines it does not understand are skipped and a
// malformed session degrades to an empty transcript, never an error.
func Parse(output []byte) *report.Transcript {
	t := &report.Transcript{Output: output}
	var frames []report.Frame
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") {
			frame, ok := parseFrame(line)
			if !ok {
				continue
			}
			// Frame 0 after other frames starts a fresh backtrace.
			// Keep the last one: that is the full "bt" pass, earlier
			// ones are interim stops.
			if frame.Index == 0 && len(frames) > 0 {
				frames = frames[:0]
			}
			frames = append(frames, frame)
			continue
		}
		if match := signalRe.FindStringSubmatch(line); match != nil {
			t.Signal, t.SignalDesc = match[1], match[2]
			continue
		}
		if match := inferiorExitRe.FindStringSubmatch(line); match != nil {
			applyExit(t, match)
			continue
		}
		if match := programExitRe.FindStringSubmatch(line); match != nil {
			applyExit(t, match)
			continue
		}
		if match := backtraceStoppedRe.FindStringSubmatch(line); match != nil {
			t.Corrupted = match[1]
		}
	}
	// The debugger prints frames innermost first, the transcript stores
	// them outermost first.
	slices.Reverse(frames)
	t.Frames = frames
	return t
}

func parseFrame(line string) (report.Frame, bool) {
	if match := signalHandlerRe.FindStringSubmatch(line); match != nil {
		index, _ := strconv.Atoi(match[1])
		return report.Frame{Index: index, Func: "<signal handler called>"}, true
	}
	match := frameRe.FindStringSubmatch(line)
	if match == nil {
		return report.Frame{}, false
	}
	index, _ := strconv.Atoi(match[1])
	frame := report.Frame{
		Index: index,
		Func:  cleanFunc(match[3]),
		Args:  match[4],
		File:  match[5],
		Lib:   match[7],
	}
	if match[2] != "" {
		frame.PC, _ = strconv.ParseUint(match[2], 0, 64)
	}
	if match[6] != "" {
		frame.Line, _ = strconv.Atoi(match[6])
	}
	return frame, true
}

// cleanFunc normalizes a frame function name: "??" (no symbol) becomes
// empty and mangled C++ names are demangled when the binary was built
// without full debug info.
func cleanFunc(fn string) string {
	if fn == "??" {
		return ""
	}
	if strings.HasPrefix(fn, "_Z") {
		if d, err := demangle.ToString(fn); err == nil {
			return d
		}
	}
	return fn
}

func applyExit(t *report.Transcript, match []string) {
	t.Exited = true
	t.ExitCode = 0
	if match[1] != "" {
		return
	}
	if code, ok := parseExitCode(match[2]); ok {
		t.ExitCode = code
	}
}

// parseExitCode understands both gdb's octal form ("013") and plain
// decimal from older versions.
func parseExitCode(s string) (int, bool) {
	if code, err := strconv.ParseInt(s, 0, 32); err == nil {
		return int(code), true
	}
	if code, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(code), true
	}
	return 0, false
}
