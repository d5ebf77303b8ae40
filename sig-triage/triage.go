// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// sig-triage runs a program under a debugger (or attaches to a running
// one), waits for it to crash or exit, and explains what happened in
// plain language.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strconv"

	"github.com/sigtools/sigtriage/pkg/crashdir"
	"github.com/sigtools/sigtriage/pkg/gdb"
	"github.com/sigtools/sigtriage/pkg/log"
	"github.com/sigtools/sigtriage/pkg/osutil"
	"github.com/sigtools/sigtriage/pkg/render"
	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/tool"
	"github.com/sigtools/sigtriage/pkg/triageconfig"
)

var (
	flagConfig  = flag.String("config", "", "configuration file (optional)")
	flagPid     = flag.Int("pid", 0, "attach to an already running process instead of launching one")
	flagMonitor = flag.Bool("monitor", false, "supervise a long-running program: no timeout, output is streamed with -vv")
	flagTimeout = flag.Int("timeout", 0, "debugging session timeout in seconds")
	flagGDB     = flag.String("gdb", "", "gdb binary to use")
	flagFormat  = flag.String("format", "", "output format: text or json")
	flagOutdir  = flag.String("outdir", "", "archive the session under this directory")
	flagEmoji   = flag.Bool("emoji", true, "emoji in terminal output")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	cfg := loadConfig()
	g := gdb.New(cfg)

	var transcript *report.Transcript
	var err error
	switch {
	case *flagPid != 0:
		if len(flag.Args()) != 0 {
			tool.Failf("-pid and a binary to launch are mutually exclusive")
		}
		transcript, err = g.Attach(shutdownContext(), *flagPid)
	case len(flag.Args()) == 0:
		usage()
		os.Exit(tool.StatusFailure)
	case *flagMonitor:
		transcript, err = g.Monitor(shutdownContext(), flag.Args()[0], flag.Args()[1:])
	default:
		target := flag.Args()[0]
		if _, convErr := strconv.Atoi(target); convErr == nil {
			tool.Failf("%v looks like a pid, use -pid %v to attach to a running process", target, target)
		}
		log.Logf(1, "debugging %v", target)
		transcript, err = g.Run(target, flag.Args()[1:])
	}
	if err != nil {
		if errors.Is(err, context.Canceled) && transcript != nil {
			log.Logf(0, "interrupted, reporting what was captured")
		} else {
			fail(cfg, err)
		}
	}

	synthesizer, err := report.NewSynthesizer(cfg.SynthConfig())
	if err != nil {
		tool.Fail(err)
	}
	rep := synthesizer.Synthesize(transcript)
	opts := render.Options{Emoji: cfg.Emoji, MaxTrace: cfg.MaxTrace}
	switch cfg.Format {
	case "json":
		err = render.JSON(os.Stdout, rep)
	default:
		err = render.Text(os.Stdout, rep, opts)
	}
	if err != nil {
		tool.Fail(err)
	}
	if cfg.Outdir != "" {
		target := ""
		if len(flag.Args()) != 0 {
			target = flag.Args()[0]
		}
		dir, err := crashdir.Save(cfg.Outdir, &crashdir.Session{
			Target: target,
			Args:   flag.Args()[1:],
			Report: rep,
			Output: transcript.Output,
			Opts:   opts,
		})
		if err != nil {
			tool.Fail(err)
		}
		log.Logf(0, "session archived to %v", dir)
	}
	if rep.Category.IsCrash() {
		os.Exit(tool.StatusCrash)
	}
}

func usage() {
	w := flag.CommandLine.Output()
	fmt.Fprintf(w, "usage: sig-triage [flags] binary [args...]\n")
	fmt.Fprintf(w, "       sig-triage -pid pid\n\n")
	fmt.Fprintln(w, `Examples:
  sig-triage ./a.out --input data.txt
  sig-triage -monitor ./server
  sig-triage -pid 4242`)
	fmt.Fprintln(w, "Flags:")
	flag.PrintDefaults()
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
	// Flags the user passed explicitly win over the config file.
	passed := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	if passed["gdb"] {
		cfg.GDB = *flagGDB
	}
	if passed["timeout"] {
		cfg.Timeout = *flagTimeout
	}
	if passed["format"] {
		cfg.Format = *flagFormat
	}
	if passed["outdir"] {
		cfg.Outdir = *flagOutdir
	}
	if passed["emoji"] {
		cfg.Emoji = *flagEmoji
	}
	if err := triageconfig.Complete(cfg); err != nil {
		tool.Fail(err)
	}
	return cfg
}

func shutdownContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	shutdown := make(chan struct{})
	osutil.HandleInterrupts(shutdown)
	go func() {
		<-shutdown
		cancel()
	}()
	return ctx
}

// fail prints the friendliest explanation we have for err and exits.
func fail(cfg *triageconfig.Config, err error) {
	opts := render.Options{Emoji: cfg.Emoji}
	switch {
	case errors.Is(err, exec.ErrNotFound):
		tool.Failf("%sOops! GDB is not installed. Please install it with: sudo apt install gdb", opts.EmojiPrefix("❌"))
	case errors.Is(err, osutil.ErrTimeout):
		tool.Failf("%sTime's up! Program took too long and was stopped.", opts.EmojiPrefix("⏰"))
	}
	tool.Fail(err)
}
