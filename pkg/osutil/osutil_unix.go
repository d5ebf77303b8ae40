// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

//go:build unix

package osutil

import (
	"fmt"
	"os"
	"os/exec"
	"os/signal"

	"golang.org/x/sys/unix"
)

// IsExecutable checks if the file exists and can be executed by the
// current user.
func IsExecutable(name string) error {
	if err := IsAccessible(name); err != nil {
		return err
	}
	if err := unix.Access(name, unix.X_OK); err != nil {
		return fmt.Errorf("%v is not executable (%v)", name, err)
	}
	return nil
}

// ProcessExists probes pid without delivering a signal. It returns nil
// when the process is alive and signalable, unix.ESRCH when there is no
// such process and unix.EPERM when it exists but belongs to someone else.
func ProcessExists(pid int) error {
	return unix.Kill(pid, 0)
}

// HandleInterrupts closes shutdown chan on first SIGINT
// (expecting that the program will gracefully shutdown and exit)
// and terminates the process on third SIGINT.
func HandleInterrupts(shutdown chan struct{}) {
	go func() {
		c := make(chan os.Signal, 3)
		signal.Notify(c, unix.SIGINT, unix.SIGTERM)
		<-c
		close(shutdown)
		fmt.Fprint(os.Stderr, "SIGINT: shutting down...\n")
		<-c
		fmt.Fprint(os.Stderr, "SIGINT: shutting down harder...\n")
		<-c
		fmt.Fprint(os.Stderr, "SIGINT: terminating\n")
		os.Exit(int(unix.SIGINT))
	}()
}

func killPgroup(cmd *exec.Cmd) {
	unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
}
