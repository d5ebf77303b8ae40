// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package report

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sigtools/sigtriage/pkg/report/crash"
)

func newTestSynthesizer(t *testing.T) *Synthesizer {
	synth, err := NewSynthesizer(nil)
	require.NoError(t, err)
	return synth
}

// stack builds a frame sequence from outermost to innermost function
// names, numbering them the way a debugger would (0 = innermost).
func stack(funcs ...string) []Frame {
	frames := make([]Frame, len(funcs))
	for i, fn := range funcs {
		frames[i] = Frame{Index: len(funcs) - 1 - i, Func: fn}
	}
	return frames
}

func TestSegfaultScenario(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGSEGV",
		Frames: stack("main", "helper", "deref_null"),
	})
	assert.Equal(t, crash.Segfault, rep.Category)
	require.NotNil(t, rep.Culprit)
	assert.Equal(t, "deref_null", rep.Culprit.Func)
	assert.Equal(t, ConfidenceHigh, rep.Confidence)
	want := []string{
		"1. main (started here)",
		"2. helper",
		"→ deref_null (crashed here)",
	}
	assert.Equal(t, want, rep.Trace)
	assert.NotEmpty(t, rep.Hints)
}

func TestCleanExitScenario(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{})
	assert.Equal(t, crash.CleanExit, rep.Category)
	assert.Nil(t, rep.Culprit)
	assert.Equal(t, ConfidenceNone, rep.Confidence)
	assert.Empty(t, rep.Trace)
	assert.NotEmpty(t, rep.Hints)
}

func TestUnknownSignalScenario(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGXYZ",
		Frames: stack("foo"),
	})
	assert.Equal(t, crash.UnknownSignal, rep.Category)
	assert.Contains(t, rep.Description, "SIGXYZ")
	require.NotNil(t, rep.Culprit)
	assert.Equal(t, "foo", rep.Culprit.Func)
	assert.NotEmpty(t, rep.Hints)
}

func TestSignalClassification(t *testing.T) {
	synth := newTestSynthesizer(t)
	for signal, info := range signalTable {
		rep := synth.Synthesize(&Transcript{
			Signal: signal,
			Frames: stack("main", "boom"),
		})
		if rep.Category != info.category {
			t.Errorf("signal %v: got category %v, want %v", signal, rep.Category, info.category)
		}
		if rep.Description != info.desc {
			t.Errorf("signal %v: got description %q, want %q", signal, rep.Description, info.desc)
		}
		if len(rep.Hints) == 0 {
			t.Errorf("signal %v: hints must not be empty", signal)
		}
	}
}

func TestCleanExitDescriptions(t *testing.T) {
	synth := newTestSynthesizer(t)
	tests := []struct {
		name       string
		transcript Transcript
		want       string
	}{
		{
			name:       "exit code zero",
			transcript: Transcript{Exited: true},
			want:       "Program finished perfectly with code 0",
		},
		{
			name:       "nonzero exit code",
			transcript: Transcript{Exited: true, ExitCode: 3},
			want:       "Program exited with error code 3 (not a crash, but something went wrong)",
		},
		{
			name:       "no exit information",
			transcript: Transcript{},
			want:       "No crash detected, program finished normally",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rep := synth.Synthesize(&test.transcript)
			assert.Equal(t, crash.CleanExit, rep.Category)
			assert.Equal(t, test.want, rep.Description)
		})
	}
}

// A clean exit observed mid-backtrace still yields a culprit: culprit
// presence depends only on the frames.
func TestCleanExitWithFrames(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Exited:   true,
		ExitCode: 1,
		Frames:   stack("main", "shutdown"),
	})
	assert.Equal(t, crash.CleanExit, rep.Category)
	require.NotNil(t, rep.Culprit)
	assert.Equal(t, "shutdown", rep.Culprit.Func)
	assert.Len(t, rep.Trace, 2)
}

func TestIdempotence(t *testing.T) {
	synth := newTestSynthesizer(t)
	transcript := &Transcript{
		Signal:     "SIGABRT",
		SignalDesc: "Aborted.",
		Frames: []Frame{
			{Index: 3, Func: "main", File: "app.c", Line: 40},
			{Index: 2, Func: "check_input", File: "app.c", Line: 12},
			{Index: 1, Func: "__GI_abort", Lib: "/lib/x86_64-linux-gnu/libc.so.6"},
			{Index: 0, Func: "__GI_raise", File: "../sysdeps/unix/sysv/linux/raise.c", Line: 50},
		},
		Corrupted: "backtrace stopped early",
	}
	first := synth.Synthesize(transcript)
	second := synth.Synthesize(transcript)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("reports differ between runs:\n%v", diff)
	}
}

func TestTraceDetails(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGSEGV",
		Frames: []Frame{
			{Index: 2, Func: "main", File: "app.c", Line: 10},
			{Index: 1, Func: "", File: "app.c", Line: 22},
			{Index: 0, Func: "boom", File: "app.c", Line: 31},
		},
	})
	want := []string{
		"1. main at app.c:10 (started here)",
		"2. unknown:unknown at app.c:22",
		"→ boom at app.c:31 (crashed here)",
	}
	if diff := cmp.Diff(want, rep.Trace); diff != "" {
		t.Fatalf("wrong trace:\n%v", diff)
	}
}

// When the innermost frames are signal machinery, the marker moves up the
// stack while every other line keeps its display position.
func TestTraceCulpritInMiddle(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGABRT",
		Frames: stack("main", "do_work", "abort", "__GI_raise"),
	})
	want := []string{
		"1. main (started here)",
		"→ do_work (crashed here)",
		"3. abort",
		"4. __GI_raise",
	}
	if diff := cmp.Diff(want, rep.Trace); diff != "" {
		t.Fatalf("wrong trace:\n%v", diff)
	}
	require.NotNil(t, rep.Culprit)
	assert.Equal(t, "do_work", rep.Culprit.Func)
}

func TestTraceMarkerUnique(t *testing.T) {
	synth := newTestSynthesizer(t)
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGSEGV",
		Frames: stack("main", "a", "b", "c"),
	})
	markers := 0
	for _, line := range rep.Trace {
		if strings.HasPrefix(line, "→ ") {
			markers++
		}
	}
	assert.Equal(t, 1, markers)
}

func TestCulpritDrawnFromFrames(t *testing.T) {
	synth := newTestSynthesizer(t)
	transcript := &Transcript{
		Signal: "SIGBUS",
		Frames: stack("main", "mmap_write"),
	}
	rep := synth.Synthesize(transcript)
	require.NotNil(t, rep.Culprit)
	found := false
	for _, f := range transcript.Frames {
		if f == *rep.Culprit {
			found = true
		}
	}
	assert.True(t, found, "culprit %+v is not one of the transcript frames", *rep.Culprit)
}

func TestExtraHints(t *testing.T) {
	synth, err := NewSynthesizer(&Config{
		ExtraHints: map[crash.Category][]string{
			crash.Segfault:      {"Try the team's crash runbook", "Check for null pointers"},
			crash.UnknownSignal: {"Ask the kernel folks"},
		},
	})
	require.NoError(t, err)

	rep := synth.Synthesize(&Transcript{Signal: "SIGSEGV", Frames: stack("main")})
	assert.Contains(t, rep.Hints, "Try the team's crash runbook")
	// The duplicate must not appear twice.
	count := 0
	for _, hint := range rep.Hints {
		if hint == "Check for null pointers" {
			count++
		}
	}
	assert.Equal(t, 1, count)

	// Extra hints for a category without its own tip set extend the
	// generic set instead of replacing it.
	rep = synth.Synthesize(&Transcript{Signal: "SIGWEIRD", Frames: stack("main")})
	assert.Contains(t, rep.Hints, "Ask the kernel folks")
	assert.Contains(t, rep.Hints, "Validate function inputs")
}

func TestContextualHints(t *testing.T) {
	synth := newTestSynthesizer(t)

	// User code calling into a crashing library function.
	rep := synth.Synthesize(&Transcript{
		Signal: "SIGSEGV",
		Frames: []Frame{
			{Index: 2, Func: "main", File: "app.c", Line: 5},
			{Index: 1, Func: "copy_name", File: "app.c", Line: 19},
			{Index: 0, Func: "__memcpy_avx_unaligned", Lib: "/lib/x86_64-linux-gnu/libc.so.6"},
		},
	})
	assert.Equal(t, ConfidenceHigh, rep.Confidence)
	assert.Contains(t, rep.Hints, "Your code called a system function that caused the crash")
	assert.Contains(t, rep.Hints, "The system was trying to: __memcpy_avx_unaligned")

	// Nothing but library frames.
	rep = synth.Synthesize(&Transcript{
		Signal: "SIGSEGV",
		Frames: []Frame{
			{Index: 1, Func: "__GI___libc_free", File: "malloc.c", Line: 3102},
			{Index: 0, Func: "_int_free", File: "malloc.c", Line: 4441},
		},
	})
	assert.Equal(t, ConfidenceLow, rep.Confidence)
	assert.Contains(t, rep.Hints, "You may have passed invalid data to a system function")
	assert.Contains(t, rep.Hints, "Memory may have been corrupted before the library call")

	// No source info anywhere suggests a debug build.
	rep = synth.Synthesize(&Transcript{Signal: "SIGSEGV", Frames: stack("boom")})
	assert.Contains(t, rep.Hints, "Compile with the -g flag for file and line details (g++ -g your_code.cpp)")
}

func TestHintsDeduplicated(t *testing.T) {
	synth := newTestSynthesizer(t)
	for _, signal := range []string{"SIGSEGV", "SIGABRT", "SIGFPE", "SIGILL", "SIGBUS", "SIGXYZ", ""} {
		rep := synth.Synthesize(&Transcript{Signal: signal, Frames: stack("main", "boom")})
		seen := make(map[string]bool)
		for _, hint := range rep.Hints {
			if seen[hint] {
				t.Errorf("signal %q: duplicate hint %q", signal, hint)
			}
			seen[hint] = true
		}
	}
}
