// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package triageconfig

import (
	"fmt"
	"regexp"

	"github.com/sigtools/sigtriage/pkg/config"
	"github.com/sigtools/sigtriage/pkg/osutil"
	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/report/crash"
)

func LoadData(data []byte) (*Config, error) {
	cfg := defaultValues()
	if err := config.LoadData(data, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFile(filename string) (*Config, error) {
	cfg := defaultValues()
	if err := config.LoadFile(filename, cfg); err != nil {
		return nil, err
	}
	if err := Complete(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	cfg := defaultValues()
	if err := Complete(cfg); err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

func defaultValues() *Config {
	return &Config{
		GDB:     "gdb",
		Timeout: 30,
		Format:  "text",
		Emoji:   true,
	}
}

// Complete validates the config and normalizes paths.
func Complete(cfg *Config) error {
	if cfg.GDB == "" {
		return fmt.Errorf("config param gdb is empty")
	}
	if cfg.Timeout <= 0 {
		return fmt.Errorf("config param timeout must be positive")
	}
	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown report format %q", cfg.Format)
	}
	if cfg.MaxTrace < 0 {
		return fmt.Errorf("config param max_trace must not be negative")
	}
	for cat := range cfg.ExtraHints {
		if _, ok := crash.FromString(cat); !ok {
			return fmt.Errorf("extra_hints: unknown category %q", cat)
		}
	}
	for _, pat := range cfg.DenyFiles {
		if _, err := regexp.Compile(pat); err != nil {
			return fmt.Errorf("deny_files: bad pattern %q: %w", pat, err)
		}
	}
	cfg.Outdir = osutil.Abs(cfg.Outdir)
	return nil
}

// SynthConfig projects the synthesis-related part of the config.
func (cfg *Config) SynthConfig() *report.Config {
	extra := make(map[crash.Category][]string, len(cfg.ExtraHints))
	for cat, hints := range cfg.ExtraHints {
		c, _ := crash.FromString(cat)
		extra[c] = hints
	}
	return &report.Config{
		ExtraHints:    extra,
		DenyFunctions: cfg.DenyFunctions,
		DenyFiles:     cfg.DenyFiles,
	}
}
