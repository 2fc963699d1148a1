package repl

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSessionExpand(t *testing.T) {
	s := newTestSession(t)
	ctx := context.Background()

	if got := s.expand(ctx, "%put(gamma 3)x=%get(gamma)"); !strings.Contains(got, "x=3") {
		t.Errorf("expand = %q, want x=3", got)
	}

	got := s.expand(ctx, "%put(onlyname)")
	if !strings.Contains(got, "error") {
		t.Errorf("expand of bad arity = %q, want an error line", got)
	}

	if len(s.Diagnostics.Diagnostics) != 0 {
		t.Errorf("diagnostics not drained: %v", s.Diagnostics.Diagnostics)
	}
}

func TestSessionVars(t *testing.T) {
	s := newTestSession(t)

	got := s.vars()
	if !strings.Contains(got, "alpha") || !strings.Contains(got, "beta") {
		t.Errorf("vars() = %q", got)
	}

	if !strings.Contains(s.builtins(), "%dirscan") {
		t.Errorf("builtins() = %q", s.builtins())
	}
}

func TestSessionLoad(t *testing.T) {
	s := newTestSession(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "vars.conf")

	if err := os.WriteFile(path, []byte("<app-1.0>\n%put(delta 4)\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	got := s.load(context.Background(), path)
	if !strings.Contains(got, "loaded") {
		t.Errorf("load = %q", got)
	}

	if v, ok := s.Engine.Vars().Get("delta"); !ok || v != "4" {
		t.Errorf("delta = %q, %v; want 4", v, ok)
	}

	if got := s.load(context.Background(), ""); !strings.Contains(got, "usage") {
		t.Errorf("load without file = %q", got)
	}

	if got := s.load(context.Background(), filepath.Join(dir, "missing")); !strings.Contains(got, "error") {
		t.Errorf("load of missing file = %q", got)
	}
}
