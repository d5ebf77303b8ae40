// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package gdb drives debug sessions with the GNU debugger: it launches a
// target (or attaches to a live process), waits for a fatal signal or a
// clean exit and hands back a parsed transcript of what the debugger saw.
package gdb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/sigtools/sigtriage/pkg/log"
	"github.com/sigtools/sigtriage/pkg/osutil"
	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/triageconfig"
)

// GDB runs debug sessions according to the config. Safe for concurrent
// use; each session is an independent child process.
type GDB struct {
	cfg *triageconfig.Config
}

func New(cfg *triageconfig.Config) *GDB {
	return &GDB{cfg: cfg}
}

// LaunchError means the target program could not be debugged at all,
// as opposed to a program that ran and crashed.
type LaunchError struct {
	Target string
	Err    error
}

func (err *LaunchError) Error() string {
	return fmt.Sprintf("failed to debug %v: %v", err.Target, err.Err)
}

func (err *LaunchError) Unwrap() error { return err.Err }

// AttachError means the debugger could not attach to the process.
type AttachError struct {
	Pid int
	Err error
}

func (err *AttachError) Error() string {
	return fmt.Sprintf("failed to attach to process %v: %v", err.Pid, err.Err)
}

func (err *AttachError) Unwrap() error { return err.Err }

// baseArgs make gdb non-interactive and ensure the signals we triage
// stop the program instead of being forwarded or swallowed.
var baseArgs = []string{
	"--quiet", "--nx",
	"-ex", "set pagination off",
	"-ex", "set confirm off",
	"-ex", "handle SIGSEGV stop print nopass",
	"-ex", "handle SIGABRT stop print nopass",
	"-ex", "handle SIGFPE stop print nopass",
	"-ex", "handle SIGILL stop print nopass",
	"-ex", "handle SIGBUS stop print nopass",
}

// confirmInput answers the one prompt that can still appear with
// confirmations off.
const confirmInput = "y\n"

func launchArgs(target string, args []string) []string {
	gdbArgs := append([]string{}, baseArgs...)
	gdbArgs = append(gdbArgs,
		"-ex", "run",
		"-ex", "bt full",
		"-ex", "quit",
		"--args", target)
	return append(gdbArgs, args...)
}

func attachArgs(pid int) []string {
	gdbArgs := append([]string{}, baseArgs...)
	return append(gdbArgs,
		"-ex", fmt.Sprintf("attach %v", pid),
		"-ex", "continue",
		"-ex", "bt full",
		"-ex", "quit")
}

// Run debugs target with the given arguments and blocks until it exits,
// crashes or the configured timeout expires. Timeouts and startup
// problems come back as a *LaunchError.
func (g *GDB) Run(target string, args []string) (*report.Transcript, error) {
	if err := osutil.IsExecutable(target); err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	cmd := osutil.Command(g.cfg.GDB, launchArgs(target, args)...)
	cmd.Stdin = strings.NewReader(confirmInput)
	output, err := osutil.Run(g.cfg.SessionTimeout(), cmd)
	if err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	return Parse(output), nil
}

// Attach attaches to a running process and blocks until the process dies
// or ctx is cancelled. On cancellation the partial transcript is returned
// together with the context error.
func (g *GDB) Attach(ctx context.Context, pid int) (*report.Transcript, error) {
	if err := osutil.ProcessExists(pid); err != nil {
		return nil, &AttachError{Pid: pid, Err: attachReason(err)}
	}
	cmd := osutil.CommandContext(ctx, g.cfg.GDB, attachArgs(pid)...)
	cmd.Stdin = strings.NewReader(confirmInput)
	output := new(bytes.Buffer)
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Start(); err != nil {
		return nil, &AttachError{Pid: pid, Err: err}
	}
	err := cmd.Wait()
	if ctx.Err() != nil {
		return Parse(output.Bytes()), ctx.Err()
	}
	if err != nil {
		return nil, &AttachError{Pid: pid, Err: fmt.Errorf("gdb exited abnormally: %v\n%s", err, output.Bytes())}
	}
	if reason := attachFailure(output.Bytes()); reason != "" {
		return nil, &AttachError{Pid: pid, Err: errors.New(reason)}
	}
	return Parse(output.Bytes()), nil
}

func attachReason(err error) error {
	switch {
	case errors.Is(err, unix.ESRCH):
		return errors.New("no such process")
	case errors.Is(err, unix.EPERM):
		return errors.New("permission denied (are you allowed to ptrace it?)")
	}
	return err
}

var attachFailureRes = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^ptrace: (.+)$`),
	regexp.MustCompile(`(?m)^Could not attach to process\.\s+(.+)$`),
	regexp.MustCompile(`(?m)^Attaching to process \d+ failed:? (.+)$`),
}

// attachFailure digs the reason out of gdb's output when attach failed:
// gdb reports it as text and still exits successfully.
func attachFailure(output []byte) string {
	for _, re := range attachFailureRes {
		if match := re.FindSubmatch(output); match != nil {
			return string(bytes.TrimSpace(match[1]))
		}
	}
	return ""
}

// Monitor debugs a long-running target: no timeout, output is streamed
// to the log as the session goes. It blocks until the target dies on its
// own or ctx is cancelled; on cancellation the partial transcript is
// returned together with the context error.
func (g *GDB) Monitor(ctx context.Context, target string, args []string) (*report.Transcript, error) {
	if err := osutil.IsExecutable(target); err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	cmd := osutil.CommandContext(ctx, g.cfg.GDB, launchArgs(target, args)...)
	cmd.Stdin = strings.NewReader(confirmInput)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &LaunchError{Target: target, Err: err}
	}
	log.Logf(1, "monitoring %v (pid %v)", target, cmd.Process.Pid)
	output := new(bytes.Buffer)
	var mu sync.Mutex
	eg := new(errgroup.Group)
	for _, pipe := range []io.Reader{stdout, stderr} {
		pipe := pipe
		eg.Go(func() error {
			return pump(pipe, output, &mu)
		})
	}
	pumpErr := eg.Wait()
	waitErr := cmd.Wait()
	transcript := Parse(output.Bytes())
	if ctx.Err() != nil {
		return transcript, ctx.Err()
	}
	if pumpErr != nil {
		return nil, &LaunchError{Target: target, Err: pumpErr}
	}
	if waitErr != nil {
		return nil, &LaunchError{Target: target, Err: fmt.Errorf("gdb exited abnormally: %v\n%s", waitErr, output.Bytes())}
	}
	return transcript, nil
}

// pump copies session output line by line into both the log and the
// transcript buffer.
func pump(r io.Reader, buf *bytes.Buffer, mu *sync.Mutex) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for scanner.Scan() {
		log.Logf(2, "gdb: %s", scanner.Bytes())
		mu.Lock()
		buf.Write(scanner.Bytes())
		buf.WriteByte('\n')
		mu.Unlock()
	}
	return scanner.Err()
}
