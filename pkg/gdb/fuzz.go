// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

//go:build gofuzz

package gdb

import (
	"strings"

	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/triageconfig"
)

var synthesizer = func() *report.Synthesizer {
	s, err := report.NewSynthesizer(triageconfig.Default().SynthConfig())
	if err != nil {
		panic(err)
	}
	return s
}()

func Fuzz(data []byte) int {
	transcript := Parse(data)
	if transcript == nil {
		panic("Parse returned nil")
	}
	rep := synthesizer.Synthesize(transcript)
	if rep.Description == "" {
		panic("rep.Description == \"\"")
	}
	if len(rep.Hints) == 0 {
		panic("len(rep.Hints) == 0")
	}
	if len(rep.Trace) != len(transcript.Frames) {
		panic("trace and frame counts disagree")
	}
	if len(transcript.Frames) > 0 {
		if rep.Culprit == nil {
			panic("frames present but no culprit")
		}
		marked := 0
		for _, line := range rep.Trace {
			if strings.HasPrefix(line, "→") {
				marked++
			}
		}
		if marked != 1 {
			panic("culprit marker not unique in trace")
		}
	}
	if len(transcript.Frames) == 0 && rep.Culprit != nil {
		panic("culprit without frames")
	}
	return 1
}
