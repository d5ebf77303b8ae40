// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// sig-report re-analyzes a saved debugger log (plain or .xz) without
// rerunning anything. Useful for archived sessions and for tuning
// deny lists and hints offline.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sigtools/sigtriage/pkg/crashdir"
	"github.com/sigtools/sigtriage/pkg/gdb"
	"github.com/sigtools/sigtriage/pkg/render"
	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/tool"
	"github.com/sigtools/sigtriage/pkg/triageconfig"
)

var (
	flagConfig = flag.String("config", "", "configuration file (optional)")
	flagFormat = flag.String("format", "", "output format: text or json")
	flagEmoji  = flag.Bool("emoji", true, "emoji in terminal output")
)

func main() {
	flag.Parse()
	if len(flag.Args()) != 1 {
		fmt.Fprintf(os.Stderr, "usage: sig-report [flags] gdb_log_file\n")
		flag.PrintDefaults()
		os.Exit(tool.StatusFailure)
	}
	cfg := loadConfig()
	data, err := crashdir.ReadLog(flag.Args()[0])
	if err != nil {
		tool.Fail(err)
	}
	synthesizer, err := report.NewSynthesizer(cfg.SynthConfig())
	if err != nil {
		tool.Fail(err)
	}
	rep := synthesizer.Synthesize(gdb.Parse(data))
	switch cfg.Format {
	case "json":
		err = render.JSON(os.Stdout, rep)
	default:
		err = render.Text(os.Stdout, rep, render.Options{Emoji: cfg.Emoji, MaxTrace: cfg.MaxTrace})
	}
	if err != nil {
		tool.Fail(err)
	}
	if rep.Category.IsCrash() {
		os.Exit(tool.StatusCrash)
	}
}

func loadConfig() *triageconfig.Config {
	cfg := triageconfig.Default()
	if *flagConfig != "" {
		var err error
		cfg, err = triageconfig.LoadFile(*flagConfig)
		if err != nil {
			tool.Fail(err)
		}
	}
	passed := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	if passed["format"] {
		cfg.Format = *flagFormat
	}
	if passed["emoji"] {
		cfg.Emoji = *flagEmoji
	}
	if err := triageconfig.Complete(cfg); err != nil {
		tool.Fail(err)
	}
	return cfg
}
