// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, name, src string) string {
	t.Helper()
	base := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(base+SourceExt, []byte(src), 0600); err != nil {
		t.Fatal(err)
	}
	return base
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestAssembleFile(t *testing.T) {
	src := `; program
mcr twice
inc r1
inc r1
endmcr
.entry MAIN
.extern EXT
MAIN: prn #1
twice
	jsr EXT
	hlt
STR: .string "hi"
.entry STR
`
	base := writeSource(t, "prog", src)

	var out bytes.Buffer
	assembly, err := AssembleFile(base, nil, WriteMap, &out)
	if err != nil {
		t.Fatalf("%v\n%s", err, out.String())
	}
	if assembly.Status != StatusOK {
		t.Errorf("status = %v", assembly.Status)
	}

	am := readFile(t, base+ExpandedExt)
	if am != ".entry MAIN\n.extern EXT\nMAIN: prn #1\ninc r1\ninc r1\njsr EXT\nhlt\nSTR: .string \"hi\"\n.entry STR\n" {
		t.Errorf("expanded file = %q", am)
	}

	ob := readFile(t, base+ObjectExt)
	if !strings.HasPrefix(ob, "  9 3\n0100 ") || strings.Count(ob, "\n") != 13 {
		t.Errorf("object file = %q", ob)
	}
	if ent := readFile(t, base+EntryExt); ent != "MAIN\t0100\nSTR\t0109\n" {
		t.Errorf("entry file = %q", ent)
	}
	if ext := readFile(t, base+ExternExt); ext != "EXT\t0107\n" {
		t.Errorf("extern file = %q", ext)
	}

	var sm SourceMap
	if err := json.Unmarshal([]byte(readFile(t, base+MapExt)), &sm); err != nil {
		t.Fatal(err)
	}
	if line := sm.Search(104); line != 5 {
		t.Errorf("source line of 104 = %d, expected 5", line)
	}
	if line := sm.Search(101); line != -1 {
		t.Errorf("source line of 101 = %d, expected -1", line)
	}

	if !strings.Contains(out.String(), "'prog.ob', 'prog.ent', 'prog.ext', 'prog.map'") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestAssembleFileOptionalOutputs(t *testing.T) {
	base := writeSource(t, "plain", "hlt\n")
	if _, err := AssembleFile(base, nil, 0, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if !exists(base + ObjectExt) {
		t.Error("object file missing")
	}
	for _, ext := range []string{EntryExt, ExternExt, MapExt} {
		if exists(base + ext) {
			t.Errorf("unexpected %s file", ext)
		}
	}
}

func TestAssembleFileErrors(t *testing.T) {
	base := writeSource(t, "bad", "hlt\njmp foo\n")

	// Leftovers from an earlier successful run are removed.
	for _, ext := range []string{ObjectExt, EntryExt, ExternExt} {
		os.WriteFile(base+ext, []byte("stale"), 0600)
	}

	var out bytes.Buffer
	assembly, err := AssembleFile(base, nil, 0, &out)
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if assembly.Status != StatusDiagnostics || assembly.Object != nil {
		t.Errorf("status = %v", assembly.Status)
	}
	if !exists(base + ExpandedExt) {
		t.Error("expanded file should be kept")
	}
	for _, ext := range []string{ObjectExt, EntryExt, ExternExt} {
		if exists(base + ext) {
			t.Errorf("%s file produced despite errors", ext)
		}
	}
	if !strings.Contains(out.String(), "line 2") || !strings.Contains(out.String(), "foo") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestAssembleFileMacroAbort(t *testing.T) {
	base := writeSource(t, "abort", "mcr\nendmcr\nhlt\n")
	_, err := AssembleFile(base, nil, 0, &bytes.Buffer{})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if exists(base+ExpandedExt) || exists(base+ObjectExt) {
		t.Error("no output should be produced when expansion aborts")
	}
}

func TestAssembleFileLongLine(t *testing.T) {
	base := writeSource(t, "long", "hlt\n"+strings.Repeat("a", 90)+"\n")
	_, err := AssembleFile(base, nil, 0, &bytes.Buffer{})
	if !errors.Is(err, ErrDiagnostics) {
		t.Fatalf("expected diagnostics, got %v", err)
	}
	if !exists(base+ExpandedExt) || exists(base+ObjectExt) {
		t.Error("expected an expanded file and no object file")
	}
}

func TestAssembleFileMissing(t *testing.T) {
	_, err := AssembleFile(filepath.Join(t.TempDir(), "missing"), nil, 0, &bytes.Buffer{})
	if !errors.Is(err, ErrFatal) {
		t.Errorf("expected fatal error, got %v", err)
	}
}
