// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package triageconfig holds the sig-triage configuration format.
package triageconfig

import (
	"time"
)

type Config struct {
	// GDB binary to invoke (default "gdb", resolved via PATH).
	GDB string `json:"gdb"`
	// Time allowance in seconds for one debug session (default 30).
	// Monitored sessions ignore it and run until the target dies.
	Timeout int `json:"timeout"`
	// Report format: "text" or "json" (default "text").
	Format string `json:"format"`
	// If set, every session is archived under this directory.
	Outdir string `json:"outdir"`
	// Cap on the number of lines in the rendered trace (0 = unlimited).
	MaxTrace int `json:"max_trace"`
	// Decorate text reports with emoji (default true).
	Emoji bool `json:"emoji"`
	// Additional hints per category, keyed by category name,
	// e.g. {"SEGFAULT": ["Check the arena allocator"]}.
	ExtraHints map[string][]string `json:"extra_hints,omitempty"`
	// Additional function names the culprit selection skips.
	DenyFunctions []string `json:"deny_functions,omitempty"`
	// Additional source location patterns (regexps) treated as library code.
	DenyFiles []string `json:"deny_files,omitempty"`
}

// SessionTimeout is the Timeout field as a duration.
func (cfg *Config) SessionTimeout() time.Duration {
	return time.Duration(cfg.Timeout) * time.Second
}
