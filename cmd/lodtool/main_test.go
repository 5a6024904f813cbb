package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/progmesh/pkg/formats"
)

// octahedronOBJ has 6 vertices and 8 triangles.
const octahedronOBJ = `v 1 0 0
v -1 0 0
v 0 1 0
v 0 -1 0
v 0 0 1
v 0 0 -1
f 1 3 5
f 3 2 5
f 2 4 5
f 4 1 5
f 3 1 6
f 2 3 6
f 4 2 6
f 1 4 6
`

func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "octa.obj")
	if err := os.WriteFile(path, []byte(octahedronOBJ), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	return path
}

func TestCmdInfo(t *testing.T) {
	var out bytes.Buffer
	if err := cmdInfo([]string{writeFixture(t)}, &out); err != nil {
		t.Fatalf("info failed: %v", err)
	}

	for _, want := range []string{"Vertices:   6", "Triangles:  8", "History:    3 collapses", "Detail:     3..6 vertices"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestCmdSimplify(t *testing.T) {
	path := writeFixture(t)
	outPath := filepath.Join(t.TempDir(), "out", "simple.obj")

	// Flags after the positional argument
	if err := cmdSimplify([]string{path, "-target", "4", "-o", outPath}, nil); err != nil {
		t.Fatalf("simplify failed: %v", err)
	}

	obj, err := formats.ParseOBJFile(outPath)
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(obj.Positions) != 4 {
		t.Errorf("expected 4 vertices, got %d", len(obj.Positions))
	}
}

func TestCmdSimplifyStepToStdout(t *testing.T) {
	var out bytes.Buffer
	if err := cmdSimplify([]string{"-step", "1", writeFixture(t)}, &out); err != nil {
		t.Fatalf("simplify failed: %v", err)
	}
	obj, err := formats.ParseOBJ(out.Bytes())
	if err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if len(obj.Positions) != 5 {
		t.Errorf("expected 5 vertices, got %d", len(obj.Positions))
	}
}

func TestCmdSimplifyUsage(t *testing.T) {
	path := writeFixture(t)
	tests := [][]string{
		{path},
		{path, "-target", "4", "-step", "1"},
		{},
		{path, "extra"},
		{path, "-bogus"},
	}
	for _, args := range tests {
		if err := cmdSimplify(args, &bytes.Buffer{}); !errors.Is(err, errUsage) {
			t.Errorf("args %v: expected usage error, got %v", args, err)
		}
	}
}

func TestCmdHistoryAndReplay(t *testing.T) {
	path := writeFixture(t)
	dir := t.TempDir()
	historyPath := filepath.Join(dir, "octa.history.yaml")

	if err := cmdHistory([]string{path, "-o", historyPath}, nil); err != nil {
		t.Fatalf("history failed: %v", err)
	}

	var replayed, simplified bytes.Buffer
	if err := cmdReplay([]string{path, historyPath, "-step", "2"}, &replayed); err != nil {
		t.Fatalf("replay failed: %v", err)
	}
	if err := cmdSimplify([]string{path, "-step", "2"}, &simplified); err != nil {
		t.Fatalf("simplify failed: %v", err)
	}
	if replayed.String() != simplified.String() {
		t.Errorf("replay differs from simplify:\n%s\nvs\n%s", replayed.String(), simplified.String())
	}
}

func TestCmdReplayErrors(t *testing.T) {
	path := writeFixture(t)
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("vertices: 6\ncollapses:\n  - {from: 0, to: 0}\n"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	if err := cmdReplay([]string{path, bad}, &bytes.Buffer{}); !errors.Is(err, errUsage) {
		t.Errorf("missing -step: expected usage error, got %v", err)
	}
	if err := cmdReplay([]string{path, bad, "-step", "1"}, &bytes.Buffer{}); err == nil || errors.Is(err, errUsage) {
		t.Errorf("invalid history: expected a validation error, got %v", err)
	}
	if err := cmdReplay([]string{path, filepath.Join(t.TempDir(), "missing.yaml"), "-step", "1"}, &bytes.Buffer{}); err == nil {
		t.Error("missing history file: expected an error")
	}
}
