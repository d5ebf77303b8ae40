// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package render turns crash reports into terminal or machine output.
// It is purely presentational: everything it prints comes out of the
// report as is, styling and emoji are the only additions.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/report/crash"
)

type Options struct {
	// Emoji prefixes section headers with the classic markers.
	Emoji bool
	// MaxTrace caps the number of printed trace lines, 0 means all.
	// The crash site line always stays visible.
	MaxTrace int
}

// Text writes the human readable report. Clean exits render as a single
// status line, the full problem/trace/tips layout is for crashes.
func Text(w io.Writer, rep *report.Report, opts Options) error {
	b := new(strings.Builder)
	writeHeader(b, rep, opts)
	if rep.Category.IsCrash() {
		writeCulprit(b, rep, opts)
		writeTrace(b, rep, opts)
		writeHints(b, rep, opts)
		writeCorrupted(b, rep, opts)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// JSON writes the report as indented JSON, one object per call.
func JSON(w io.Writer, rep *report.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func writeHeader(b *strings.Builder, rep *report.Report, opts Options) {
	style := crashStyle
	if rep.Category == crash.CleanExit {
		style = successStyle
		if rep.ExitCode != 0 {
			style = warningStyle
		}
	}
	e := opts.headerEmoji(rep.Category, rep.ExitCode)
	fmt.Fprintf(b, "%s\n", style.Render(e+rep.Description))
}

func writeCulprit(b *strings.Builder, rep *report.Report, opts Options) {
	culprit := rep.Culprit
	if culprit == nil {
		fmt.Fprintf(b, "\n%s\n", headingStyle.Render(opts.EmojiPrefix("🤷")+"Couldn't find detailed crash information"))
		return
	}
	if rep.Confidence == report.ConfidenceLow {
		fmt.Fprintf(b, "\n%s\n", headingStyle.Render(opts.EmojiPrefix("🤔")+"The crash happened inside a system library"))
		if at := describeFrame(culprit); at != "" {
			fmt.Fprintf(b, "   %sLook at this code: %s\n", opts.EmojiPrefix("🔍"), at)
		}
		return
	}
	fmt.Fprintf(b, "\n%s\n", headingStyle.Render(opts.EmojiPrefix("🎯")+"The problem is likely here:"))
	if culprit.File != "" {
		fmt.Fprintf(b, "   %sFile: %s\n", opts.EmojiPrefix("📁"), culprit.File)
	}
	if culprit.Line > 0 {
		fmt.Fprintf(b, "   %sLine: %v\n", opts.EmojiPrefix("📄"), culprit.Line)
	}
	if culprit.Func != "" {
		fmt.Fprintf(b, "   %sFunction: %s\n", opts.EmojiPrefix("🔧"), culprit.Func)
	}
}

func writeTrace(b *strings.Builder, rep *report.Report, opts Options) {
	if len(rep.Trace) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", headingStyle.Render(opts.EmojiPrefix("📋")+"What happened (simplified):"))
	for _, line := range visibleTrace(rep.Trace, opts.MaxTrace) {
		if strings.HasPrefix(line, "→") {
			line = culpritStyle.Render(line)
		}
		fmt.Fprintf(b, "   %s\n", line)
	}
}

func writeHints(b *strings.Builder, rep *report.Report, opts Options) {
	if len(rep.Hints) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s\n", headingStyle.Render(opts.EmojiPrefix("✨")+"Quick tips:"))
	for _, hint := range rep.Hints {
		fmt.Fprintf(b, "   • %s\n", hint)
	}
}

func writeCorrupted(b *strings.Builder, rep *report.Report, opts Options) {
	if rep.Corrupted == "" {
		return
	}
	fmt.Fprintf(b, "\n%s\n", mutedStyle.Render(opts.EmojiPrefix("⚠️")+"The stack may be corrupted: "+rep.Corrupted))
}

// describeFrame formats "func at file:line" with whatever parts the
// frame actually has.
func describeFrame(f *report.Frame) string {
	loc := f.File
	if loc != "" && f.Line > 0 {
		loc = fmt.Sprintf("%v:%v", loc, f.Line)
	}
	if loc == "" {
		loc = f.Lib
	}
	switch {
	case f.Func != "" && loc != "":
		return fmt.Sprintf("%v at %v", f.Func, loc)
	case f.Func != "":
		return f.Func
	default:
		return loc
	}
}

// visibleTrace truncates long traces but never drops the crash site.
func visibleTrace(trace []string, max int) []string {
	if max <= 0 || len(trace) <= max {
		return trace
	}
	out := append([]string{}, trace[:max]...)
	culprit := -1
	for i := max; i < len(trace); i++ {
		if strings.HasPrefix(trace[i], "→") {
			culprit = i
		}
	}
	hidden := len(trace) - max
	if culprit >= 0 {
		hidden--
	}
	if hidden > 0 {
		out = append(out, fmt.Sprintf("… (%v more frames)", hidden))
	}
	if culprit >= 0 {
		out = append(out, trace[culprit])
	}
	return out
}
