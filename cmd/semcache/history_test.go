package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/4thel00z/semcache/internal"
)

func TestHistoryCommands(t *testing.T) {
	a := setupCLI(t, "--persistence", "git")

	mustRun(t, a, "add", "x", "first")
	mustRun(t, a, "add", "y", "second")

	out := mustRun(t, a, "log", "--oneline")
	lines := nonEmptyLines(out)
	if len(lines) != 2 {
		t.Fatalf("log: expected 2 commits, got %q", out)
	}
	if !strings.HasSuffix(lines[0], "save: 2 entries") {
		t.Errorf("newest commit = %q", lines[0])
	}

	out = mustRun(t, a, "diff", "HEAD~1")
	if !strings.Contains(out, `+    "query": "y"`) {
		t.Errorf("diff missing added context:\n%s", out)
	}
	if strings.Contains(out, `-    "query": "x"`) {
		t.Errorf("diff removed unchanged context:\n%s", out)
	}

	out = mustRun(t, a, "diff", "HEAD", "HEAD")
	if out != "No changes.\n" {
		t.Errorf("diff HEAD HEAD = %q", out)
	}

	out = mustRun(t, a, "revert", "HEAD~1")
	if !strings.HasPrefix(out, "Restored HEAD~1") {
		t.Errorf("revert output = %q", out)
	}

	out = mustRun(t, a, "list")
	lines = nonEmptyLines(out)
	if len(lines) != 1 || !strings.HasSuffix(lines[0], "  x") {
		t.Errorf("list after revert = %q", out)
	}

	out = mustRun(t, a, "log", "--oneline")
	if len(nonEmptyLines(out)) != 3 {
		t.Errorf("revert should add a commit, log = %q", out)
	}
}

func TestHistoryRequiresGitBackend(t *testing.T) {
	a := setupCLI(t)

	_, err := runCLI(a, "log")
	if !errors.Is(err, internal.ErrNoHistory) {
		t.Errorf("expected ErrNoHistory, got %v", err)
	}
}
