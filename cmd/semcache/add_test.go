package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/4thel00z/semcache/internal"
)

func TestAddCmd(t *testing.T) {
	a := setupCLI(t)

	out := mustRun(t, a, "add", "what is go", "a language", "-e", "go", "-e", "lang")
	if out != "Added what is go\n" {
		t.Errorf("output = %q, want %q", out, "Added what is go\n")
	}

	listed, err := a.listUC.Execute(t.Context(), internal.ListContextsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed.Contexts) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(listed.Contexts))
	}
	if listed.Contexts[0].Response != "a language" {
		t.Errorf("response = %q", listed.Contexts[0].Response)
	}
	if strings.Join(listed.Contexts[0].Entities, ",") != "go,lang" {
		t.Errorf("entities = %v", listed.Contexts[0].Entities)
	}
}

func TestAddCmdReadsStdin(t *testing.T) {
	a := setupCLI(t)

	root := NewRootCmd("test", a)
	root.SetArgs([]string{"add", "piped"})
	root.SetIn(strings.NewReader("from stdin\n"))
	root.SetOut(io.Discard)
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	listed, err := a.listUC.Execute(t.Context(), internal.ListContextsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed.Contexts) != 1 || listed.Contexts[0].Response != "from stdin" {
		t.Errorf("contexts = %+v", listed.Contexts)
	}
}

func TestAddCmdReplacesQuery(t *testing.T) {
	a := setupCLI(t)

	mustRun(t, a, "add", "q", "old")
	mustRun(t, a, "add", "q", "new")

	listed, err := a.listUC.Execute(t.Context(), internal.ListContextsInput{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed.Contexts) != 1 || listed.Contexts[0].Response != "new" {
		t.Errorf("contexts = %+v", listed.Contexts)
	}
}

func TestAddCmdJSON(t *testing.T) {
	a := setupCLI(t)

	out := mustRun(t, a, "add", "q", "r", "-e", "x", "--json")

	var got map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if got["query"] != "q" || got["response"] != "r" {
		t.Errorf("json = %v", got)
	}
}

func TestAddCmdEmptyQuery(t *testing.T) {
	a := setupCLI(t)

	_, err := runCLI(a, "add", "  ", "r")
	if !errors.Is(err, internal.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
}

func TestAddCmdNotInitialized(t *testing.T) {
	chdirTemp(t)
	t.Setenv("HOME", t.TempDir())

	a := newApp(io.Discard)
	defer a.Close()

	_, err := runCLI(a, "add", "q", "r")
	if !errors.Is(err, internal.ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func TestSimilarCmdJSON(t *testing.T) {
	a := setupCLI(t)

	for _, q := range []string{"alpha", "beta", "gamma", "delta"} {
		mustRun(t, a, "add", q, "r-"+q)
	}

	out := mustRun(t, a, "similar", "beta", "--json")

	var got []map[string]any
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, out)
	}
	if len(got) != internal.DefaultTopK {
		t.Fatalf("expected %d results, got %d", internal.DefaultTopK, len(got))
	}
	if got[0]["query"] != "beta" || got[0]["distance"].(float64) != 0 {
		t.Errorf("first result = %v", got[0])
	}
	for i := 1; i < len(got); i++ {
		if got[i]["distance"].(float64) < got[i-1]["distance"].(float64) {
			t.Errorf("results not ordered by distance: %v", got)
		}
	}
}

func TestSimilarCmdEmptyCache(t *testing.T) {
	a := setupCLI(t)

	out := mustRun(t, a, "similar", "anything", "--json")
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("output = %q, want []", out)
	}
}

func TestEntitiesCmd(t *testing.T) {
	a := setupCLI(t)

	mustRun(t, a, "add", "one", "r", "-e", "b", "-e", "a")
	mustRun(t, a, "add", "two", "r", "-e", "a", "-e", "c")

	out := mustRun(t, a, "entities", "one")
	if out != "a\nb\nc\n" {
		t.Errorf("output = %q, want %q", out, "a\nb\nc\n")
	}
}

func TestRmCmdMissing(t *testing.T) {
	a := setupCLI(t)

	_, err := runCLI(a, "rm", "ghost")
	if !errors.Is(err, internal.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListCmdJSON(t *testing.T) {
	a := setupCLI(t)

	mustRun(t, a, "add", "a", "1")
	mustRun(t, a, "add", "b", "2")

	var buf bytes.Buffer
	buf.WriteString(mustRun(t, a, "list", "--json"))

	var got []map[string]any
	if err := json.NewDecoder(&buf).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 2 || got[0]["query"] != "a" || got[1]["query"] != "b" {
		t.Errorf("json = %v", got)
	}
}
