package main

import (
	"bytes"
	"io"
	"os"
	"testing"
)

// setupCLI initializes a project cache in a temp dir with the offline hash
// embedder and returns an app bound to it.
func setupCLI(t *testing.T, initArgs ...string) *app {
	t.Helper()
	tmpDir := t.TempDir()

	origWd, _ := os.Getwd()
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("chdir: %v", err)
	}

	a := newApp(io.Discard)
	t.Cleanup(func() { _ = a.Close() })

	args := append([]string{"init", "--embeddings", "hash", "--dimension", "32"}, initArgs...)
	if _, err := runCLI(a, args...); err != nil {
		t.Fatalf("init: %v", err)
	}
	return a
}

func runCLI(a *app, args ...string) (string, error) {
	root := NewRootCmd("test", a)
	root.SetArgs(args)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, a *app, args ...string) string {
	t.Helper()
	out, err := runCLI(a, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func TestE2EWorkflow(t *testing.T) {
	a := setupCLI(t, "--max-history", "3")

	for _, q := range []string{"first", "second", "third", "fourth"} {
		mustRun(t, a, "add", q, "answer to "+q, "-e", "topic", "-e", q)
	}

	out := mustRun(t, a, "list")
	lines := nonEmptyLines(out)
	if len(lines) != 3 {
		t.Fatalf("list: expected 3 lines, got %d: %q", len(lines), out)
	}
	for i, want := range []string{"second", "third", "fourth"} {
		if !bytes.HasSuffix([]byte(lines[i]), []byte("  "+want)) {
			t.Errorf("list line %d = %q, want suffix %q", i, lines[i], want)
		}
	}

	out = mustRun(t, a, "similar", "third", "-n", "1")
	if !bytes.HasPrefix([]byte(out), []byte("0.0000  third\n")) {
		t.Errorf("similar output = %q", out)
	}

	mustRun(t, a, "rm", "third")
	out = mustRun(t, a, "list")
	if len(nonEmptyLines(out)) != 2 {
		t.Errorf("list after rm: %q", out)
	}

	// a fresh process sees the persisted state
	b := newApp(io.Discard)
	defer b.Close()
	out = mustRun(t, b, "list")
	if len(nonEmptyLines(out)) != 2 {
		t.Errorf("list in new app: %q", out)
	}
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range bytes.Split([]byte(s), []byte("\n")) {
		if len(bytes.TrimSpace(l)) > 0 {
			lines = append(lines, string(l))
		}
	}
	return lines
}
