// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package tool contains helpers shared by the command line tools.
package tool

import (
	"fmt"
	"os"
)

// Exit statuses of the tools. A diagnosed crash is not a tool failure,
// scripts need to tell the two apart.
const (
	StatusOK      = 0
	StatusFailure = 1
	StatusCrash   = 2
)

func Failf(msg string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, msg+"\n", args...)
	os.Exit(StatusFailure)
}

func Fail(err error) {
	Failf("%v", err)
}
