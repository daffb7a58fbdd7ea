package main

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/zegevlier/infi-aoc-2024/pkg/bytecode"
)

// twoWalls returns 1 at x == 0 and x == 29 and 0 elsewhere.
const twoWalls = `push x
push -1
add
jmpos 2
push 1
ret
push x
push -29
add
jmpos 2
push 0
ret
push 1
ret
`

// execute runs the CLI with args rooted at dir and returns its stdout.
func execute(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunDefaultProgramFromManifestDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cloudcal.toml"), "[eval]\nworkers = 4\n")
	writeFile(t, filepath.Join(dir, "input_program.txt"), twoWalls)

	out, err := execute(t, dir)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	want := "Calibration number: 1800\nClouds: 2\n"
	if out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRunExplicitProgram(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "constant.txt")
	writeFile(t, prog, "push 5\npush 3\nadd\nret\n")

	out, err := execute(t, dir, "-w", "3", prog)
	if err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if out != "Calibration number: 216000\nClouds: 1\n" {
		t.Errorf("output = %q", out)
	}
}

func TestRunDecodeError(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "bad.txt")
	writeFile(t, prog, "push 1\nmultiply\nret\n")

	_, err := execute(t, dir, prog)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name line 2", err)
	}
}

func TestRunRuntimeFault(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "underflow.txt")
	writeFile(t, prog, "add\nret\n")

	out, err := execute(t, dir, prog)
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if out != "" {
		t.Errorf("partial output printed: %q", out)
	}
	if !strings.Contains(err.Error(), "pop from empty stack") {
		t.Errorf("error %q should describe the underflow", err)
	}
}

func TestRunMissingProgram(t *testing.T) {
	_, err := execute(t, t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "input_program.txt") {
		t.Errorf("err = %v, want missing input_program.txt", err)
	}
}

func TestSnapshotAndInspect(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "walls.txt")
	snap := filepath.Join(dir, "out", "walls.cbor")
	writeFile(t, prog, twoWalls)

	if _, err := execute(t, dir, "--snapshot", snap, prog); err != nil {
		t.Fatalf("execute failed: %v", err)
	}

	out, err := execute(t, dir, "inspect", snap)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	for _, want := range []string{
		"Calibration number: 1800",
		"Clouds:             2",
		"Largest cloud:      900",
		"Active cells:       1800",
		"Recount:            ok",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestHistory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "input_program.txt"), twoWalls)

	out, err := execute(t, dir, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "no runs recorded") {
		t.Errorf("empty history output = %q", out)
	}

	for range 2 {
		if _, err := execute(t, dir, "--history"); err != nil {
			t.Fatalf("execute failed: %v", err)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, ".cloudcal", "history.db")); err != nil {
		t.Fatalf("history database not created: %v", err)
	}

	out, err = execute(t, dir, "history", "-n", "1")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want header + 1 run:\n%s", len(lines), out)
	}
	prog, err := bytecode.DecodeString(twoWalls)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(lines[1], prog.HashString()[:12]) || !strings.Contains(lines[1], "1800") {
		t.Errorf("run line = %q", lines[1])
	}
}

func TestHistoryLookupFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "input_program.txt"), twoWalls)

	// A runs table without the result columns opens cleanly but cannot be
	// queried for the previous run.
	dbPath := filepath.Join(dir, ".cloudcal", "history.db")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	_, err = db.Exec("CREATE TABLE runs (id TEXT PRIMARY KEY, program_hash TEXT, started_at INTEGER)")
	db.Close()
	if err != nil {
		t.Fatal(err)
	}

	_, err = execute(t, dir, "--history")
	if err == nil {
		t.Fatal("expected history error")
	}
	if !strings.Contains(err.Error(), "history:") || !strings.Contains(err.Error(), "calibration") {
		t.Errorf("err = %v, want the failed lookup reported", err)
	}
}

func TestDisasm(t *testing.T) {
	dir := t.TempDir()
	prog := filepath.Join(dir, "jump.txt")
	writeFile(t, prog, "push x\njmpos 5\nret\n")

	out, err := execute(t, dir, "disasm", prog)
	if err != nil {
		t.Fatalf("disasm failed: %v", err)
	}
	for _, want := range []string{"; === jump.txt ===", "0001  jmpos 5", "-> 0007", "jump target 7 is outside"} {
		if !strings.Contains(out, want) {
			t.Errorf("disasm output missing %q:\n%s", want, out)
		}
	}
}

func TestInvalidManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "cloudcal.toml"), "[eval]\nworkers = -1\n")

	_, err := execute(t, dir, "history")
	if err == nil || !strings.Contains(err.Error(), "eval.workers") {
		t.Errorf("err = %v, want eval.workers validation error", err)
	}
}
