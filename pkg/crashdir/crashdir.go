// Copyright 2026 sigtriage project authors. All rights reserved.
// Use of this source code is governed by Apache 2 LICENSE that can be found in the LICENSE file.

// Package crashdir archives debugging sessions on disk. Every crash
// gets a directory named by the signature of what went wrong, so
// rerunning a program that crashes the same way lands in the same
// place:
//
//	<dir>/<sig>/meta.json    session metadata
//	<dir>/<sig>/report.txt   rendered report
//	<dir>/<sig>/report.json  structured report
//	<dir>/<sig>/log.xz       raw debugger output, compressed
//
// Repeated sessions with the same signature share a directory, the
// latest one wins.
package crashdir

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ulikunitz/xz"

	"github.com/sigtools/sigtriage/pkg/config"
	"github.com/sigtools/sigtriage/pkg/hash"
	"github.com/sigtools/sigtriage/pkg/osutil"
	"github.com/sigtools/sigtriage/pkg/render"
	"github.com/sigtools/sigtriage/pkg/report"
	"github.com/sigtools/sigtriage/pkg/report/crash"
)

// Session is everything worth keeping about one debugging run.
type Session struct {
	Target string
	Args   []string
	Report *report.Report
	// Output is the raw debugger transcript the report was built from.
	Output []byte
	Opts   render.Options
}

// Meta is the persisted session metadata.
type Meta struct {
	ID          string         `json:"id"`
	Time        time.Time      `json:"time"`
	Target      string         `json:"target"`
	Args        []string       `json:"args,omitempty"`
	Category    crash.Category `json:"category"`
	Description string         `json:"description"`
	Culprit     string         `json:"culprit,omitempty"`
}

// Save archives the session under dir and returns the session
// directory.
func Save(dir string, sess *Session) (string, error) {
	rep := sess.Report
	sessDir := filepath.Join(dir, Sig(rep))
	if err := osutil.MkdirAll(sessDir); err != nil {
		return "", fmt.Errorf("failed to create crash dir: %w", err)
	}
	meta := &Meta{
		ID:          uuid.New().String(),
		Time:        time.Now(),
		Target:      sess.Target,
		Args:        sess.Args,
		Category:    rep.Category,
		Description: rep.Description,
		Culprit:     culpritSummary(rep.Culprit),
	}
	if err := config.SaveFile(filepath.Join(sessDir, "meta.json"), meta); err != nil {
		return "", err
	}
	text := new(strings.Builder)
	if err := render.Text(text, rep, sess.Opts); err != nil {
		return "", err
	}
	if err := osutil.WriteFile(filepath.Join(sessDir, "report.txt"), []byte(text.String())); err != nil {
		return "", err
	}
	structured := new(strings.Builder)
	if err := render.JSON(structured, rep); err != nil {
		return "", err
	}
	if err := osutil.WriteFile(filepath.Join(sessDir, "report.json"), []byte(structured.String())); err != nil {
		return "", err
	}
	if err := writeXZ(filepath.Join(sessDir, "log.xz"), sess.Output); err != nil {
		return "", err
	}
	return sessDir, nil
}

// Sig is the stable signature a session directory is named after.
// Reports that identify the same crash in the same place map to the
// same signature.
func Sig(rep *report.Report) string {
	return hash.String(
		[]byte(rep.Category),
		[]byte(rep.Description),
		[]byte(culpritSummary(rep.Culprit)),
	)
}

func culpritSummary(f *report.Frame) string {
	if f == nil {
		return ""
	}
	loc := f.File
	if loc != "" && f.Line > 0 {
		loc = fmt.Sprintf("%v:%v", loc, f.Line)
	}
	if loc == "" {
		loc = f.Lib
	}
	if loc == "" {
		return f.Func
	}
	if f.Func == "" {
		return loc
	}
	return fmt.Sprintf("%v at %v", f.Func, loc)
}

// ReadLog loads a saved debugger log, decompressing if the file is an
// .xz archive.
func ReadLog(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".xz") {
		return data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open %v: %w", path, err)
	}
	return io.ReadAll(r)
}

func writeXZ(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w, err := xz.NewWriter(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to compress %v: %w", path, err)
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
