// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

package config

import (
	"path/filepath"
	"testing"
)

type testConfig struct {
	Name    string `json:"name"`
	Count   int    `json:"count"`
	Verbose bool   `json:"verbose"`
}

func TestLoadData(t *testing.T) {
	data := `
# A comment explaining the name.
{
	"name": "triage",
	# Comments work inside objects too.
	"count": 42
}
`
	cfg := new(testConfig)
	if err := LoadData([]byte(data), cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "triage" || cfg.Count != 42 {
		t.Fatalf("bad parsed config: %+v", cfg)
	}
}

func TestUnknownField(t *testing.T) {
	data := `{"name": "x", "what_is_this": 1}`
	if err := LoadData([]byte(data), new(testConfig)); err == nil {
		t.Fatalf("config with unknown field parsed successfully")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if err := LoadFile("", new(testConfig)); err == nil {
		t.Fatalf("empty file name accepted")
	}
	if err := LoadFile("/non/existing/file", new(testConfig)); err == nil {
		t.Fatalf("missing file accepted")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cfg.json")
	saved := &testConfig{Name: "roundtrip", Count: 7, Verbose: true}
	if err := SaveFile(file, saved); err != nil {
		t.Fatal(err)
	}
	loaded := new(testConfig)
	if err := LoadFile(file, loaded); err != nil {
		t.Fatal(err)
	}
	if *loaded != *saved {
		t.Fatalf("round trip mismatch: %+v vs %+v", loaded, saved)
	}
}
