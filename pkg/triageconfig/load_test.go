// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package triageconfig

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg, err := LoadData([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, "gdb", cfg.GDB)
	assert.Equal(t, 30, cfg.Timeout)
	assert.Equal(t, 30*time.Second, cfg.SessionTimeout())
	assert.Equal(t, "text", cfg.Format)
	assert.True(t, cfg.Emoji)
	assert.Equal(t, 0, cfg.MaxTrace)
}

func TestOverrides(t *testing.T) {
	cfg, err := LoadData([]byte(`
# Use the cross gdb and quieter reports.
{
	"gdb": "gdb-multiarch",
	"timeout": 120,
	"format": "json",
	"emoji": false,
	"max_trace": 16,
	"extra_hints": {"SEGFAULT": ["Check the arena allocator"]},
	"deny_functions": ["panic_handler"],
	"deny_files": ["third_party/"]
}
`))
	require.NoError(t, err)
	assert.Equal(t, "gdb-multiarch", cfg.GDB)
	assert.Equal(t, 120, cfg.Timeout)
	assert.Equal(t, "json", cfg.Format)
	assert.False(t, cfg.Emoji)
	assert.Equal(t, 16, cfg.MaxTrace)

	synth := cfg.SynthConfig()
	require.Len(t, synth.ExtraHints, 1)
	assert.Equal(t, []string{"panic_handler"}, synth.DenyFunctions)
	assert.Equal(t, []string{"third_party/"}, synth.DenyFiles)
}

func TestOutdirAbsolute(t *testing.T) {
	cfg, err := LoadData([]byte(`{"outdir": "crashes"}`))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(cfg.Outdir, "/"), "outdir %q is not absolute", cfg.Outdir)
}

func TestValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty gdb", `{"gdb": ""}`},
		{"zero timeout", `{"timeout": 0}`},
		{"negative timeout", `{"timeout": -5}`},
		{"unknown format", `{"format": "yaml"}`},
		{"negative max_trace", `{"max_trace": -1}`},
		{"unknown hint category", `{"extra_hints": {"KERNEL_PANIC": ["nope"]}}`},
		{"bad deny pattern", `{"deny_files": ["*oops["]}`},
		{"unknown field", `{"gdbpath": "gdb"}`},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadData([]byte(test.data))
			assert.Error(t, err)
		})
	}
}

func TestDefaultComplete(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, "gdb", cfg.GDB)
}
