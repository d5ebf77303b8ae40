// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

//go:build linux

package osutil

import (
	"os/exec"
	"syscall"
)

func setPdeathsig(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	// Kill the child if the parent dies unexpectedly.
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
	// A separate process group lets us kill the child with everything it
	// spawned in one go.
	cmd.SysProcAttr.Setpgid = true
}
