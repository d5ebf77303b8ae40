// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package report turns a parsed debug-session transcript into a crash
// report: a classification of the fatal signal, the frame most likely
// responsible, a simplified stack trace and a set of plain-language hints.
// Synthesis is pure and total: it performs no I/O and always produces a
// report, degrading to placeholders when the transcript lacks data.
package report

import (
	"fmt"
	"regexp"

	"github.com/sigtools/sigtriage/pkg/report/crash"
)

// Frame is a single stack frame as reported by the backend.
type Frame struct {
	// Index is the backend frame number, 0 being the innermost frame.
	Index int    `json:"index"`
	Func  string `json:"func,omitempty"`
	// Args is the raw argument list text, e.g. "(ptr=0x0)".
	Args string `json:"args,omitempty"`
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	// Lib is the shared object the frame resolved to when no source
	// location is known.
	Lib string `json:"lib,omitempty"`
	PC  uint64 `json:"pc,omitempty"`
}

// Transcript is everything synthesis needs to know about one finished
// debug session. Frames are ordered outermost first; the backend parser
// establishes that order regardless of how the debugger printed them.
type Transcript struct {
	// Signal is the fatal signal name ("SIGSEGV"), empty if none was seen.
	Signal string
	// SignalDesc is the debugger's own description of the signal.
	SignalDesc string
	Frames     []Frame
	Exited     bool
	ExitCode   int
	// Corrupted holds the reason the backtrace looks damaged, if it does.
	Corrupted string
	// Output is the raw session output, carried for archival only.
	Output []byte
}

// Confidence grades how much the culprit choice can be trusted.
type Confidence string

const (
	// ConfidenceHigh means the culprit passed every deny filter.
	ConfidenceHigh = Confidence("HIGH")
	// ConfidenceLow means the culprit came from a fallback because every
	// frame looked like library or startup code.
	ConfidenceLow = Confidence("LOW")
	// ConfidenceNone means the transcript had no frames at all.
	ConfidenceNone = Confidence("NONE")
)

// Report is the synthesized description of one debug session.
// It is plain structured data; rendering lives elsewhere.
type Report struct {
	Category    crash.Category `json:"category"`
	Description string         `json:"description"`
	Signal      string         `json:"signal,omitempty"`
	SignalDesc  string         `json:"signal_desc,omitempty"`
	ExitCode    int            `json:"exit_code"`
	Culprit     *Frame         `json:"culprit,omitempty"`
	Confidence  Confidence     `json:"confidence"`
	// Trace holds one display line per frame, outermost first, with the
	// culprit line carrying the "→" marker.
	Trace     []string `json:"trace,omitempty"`
	Hints     []string `json:"hints,omitempty"`
	Corrupted string   `json:"corrupted,omitempty"`
}

// Config tunes synthesis. The zero value selects the defaults.
type Config struct {
	// ExtraHints appends tips to a category's hint set.
	ExtraHints map[crash.Category][]string
	// DenyFunctions extends the boilerplate function deny list.
	DenyFunctions []string
	// DenyFiles extends the library location deny list (regexps).
	DenyFiles []string
}

// Synthesizer converts Transcripts into Reports. It is immutable after
// construction and safe for concurrent use.
type Synthesizer struct {
	denyFuncs map[string]bool
	denyFiles []*regexp.Regexp
	hints     map[crash.Category][]string
}

// NewSynthesizer compiles the lookup tables once. cfg may be nil.
func NewSynthesizer(cfg *Config) (*Synthesizer, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	synth := &Synthesizer{
		denyFuncs: make(map[string]bool, len(boilerplateFuncs)+len(cfg.DenyFunctions)),
		hints:     make(map[crash.Category][]string),
	}
	for _, fn := range boilerplateFuncs {
		synth.denyFuncs[fn] = true
	}
	for _, fn := range cfg.DenyFunctions {
		synth.denyFuncs[fn] = true
	}
	for _, pat := range libraryFilePatterns {
		synth.denyFiles = append(synth.denyFiles, regexp.MustCompile(pat))
	}
	for _, pat := range cfg.DenyFiles {
		re, err := regexp.Compile(pat)
		if err != nil {
			return nil, fmt.Errorf("bad deny file pattern %q: %w", pat, err)
		}
		synth.denyFiles = append(synth.denyFiles, re)
	}
	for cat, tips := range categoryHints {
		synth.hints[cat] = tips
	}
	for cat, tips := range cfg.ExtraHints {
		base, ok := synth.hints[cat]
		if !ok {
			base = genericHints
		}
		synth.hints[cat] = append(append([]string{}, base...), tips...)
	}
	return synth, nil
}

// Synthesize produces the report for one transcript. It never fails:
// missing or garbled data degrades to placeholders, and equal transcripts
// always yield structurally equal reports.
func (s *Synthesizer) Synthesize(t *Transcript) *Report {
	rep := &Report{
		Signal:     t.Signal,
		SignalDesc: t.SignalDesc,
		ExitCode:   t.ExitCode,
		Corrupted:  t.Corrupted,
	}
	rep.Category, rep.Description = classify(t)
	pos, conf := s.culprit(t.Frames)
	rep.Confidence = conf
	if pos >= 0 {
		culprit := t.Frames[pos]
		rep.Culprit = &culprit
	}
	rep.Trace = buildTrace(t.Frames, pos)
	rep.Hints = s.buildHints(rep.Category, conf, t.Frames, pos)
	return rep
}

type signalInfo struct {
	category crash.Category
	desc     string
}

// signalTable maps fatal signal names to their classification.
// The descriptions are part of the output contract.
var signalTable = map[string]signalInfo{
	"SIGSEGV": {crash.Segfault, "Segmentation fault (tried to access memory that doesn't belong to you)"},
	"SIGABRT": {crash.Abort, "Abort signal (program decided to quit unexpectedly)"},
	"SIGFPE":  {crash.FloatingPoint, "Math error (division by zero or floating point issue)"},
	"SIGILL":  {crash.IllegalInstruction, "Illegal instruction (CPU didn't understand your code)"},
	"SIGBUS":  {crash.BusError, "Bus error (misaligned memory access)"},
	"SIGTRAP": {crash.Trap, "Trace/breakpoint trap (debugger is watching)"},
	"SIGSYS":  {crash.BadSyscall, "Bad system call (wrong number to the system)"},
}

func classify(t *Transcript) (crash.Category, string) {
	if t.Signal == "" {
		switch {
		case t.Exited && t.ExitCode == 0:
			return crash.CleanExit, "Program finished perfectly with code 0"
		case t.Exited:
			return crash.CleanExit, fmt.Sprintf(
				"Program exited with error code %d (not a crash, but something went wrong)", t.ExitCode)
		default:
			return crash.CleanExit, "No crash detected, program finished normally"
		}
	}
	if info, ok := signalTable[t.Signal]; ok {
		return info.category, info.desc
	}
	// Echo the raw name so no information is lost.
	return crash.UnknownSignal, fmt.Sprintf("Unknown signal %s (the program stopped in an unusual way)", t.Signal)
}
