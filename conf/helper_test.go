package conf

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ardnew/blockconf/log"
)

type call struct {
	line string
	ev   Event
}

// recorder is a Handler that records every call and counts lines in its
// state.
type recorder struct {
	calls []call
}

func (r *recorder) Handle(_ context.Context, ev Event, line string, state any) any {
	r.calls = append(r.calls, call{ev: ev, line: line})

	n, _ := state.(int)

	return n + 1
}

func (r *recorder) lines() []string {
	var out []string

	for _, c := range r.calls {
		if c.ev == EventLine {
			out = append(out, c.line)
		}
	}

	return out
}

var testEnv = map[string]string{
	"HOME": "/home/tester",
	"FOO":  "bar",
}

func lookupTestEnv(name string) (string, bool) {
	v, ok := testEnv[name]

	return v, ok
}

func newTestEngine(t *testing.T, opts ...Option) (*Engine, *Collector) {
	t.Helper()

	c := &Collector{}
	e := New(append([]Option{
		WithProgram("app", "1.5"),
		WithReporter(c),
		WithLogger(log.Make(io.Discard)),
		WithEnv(lookupTestEnv),
		WithTempDir(t.TempDir()),
		WithStderr(io.Discard),
	}, opts...)...)

	t.Cleanup(func() {
		if err := e.Close(); err != nil {
			t.Errorf("Close() = %v", err)
		}
	})

	return e, c
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

func requireShell(t *testing.T) {
	t.Helper()

	if _, err := os.Stat(DefaultShell); err != nil {
		t.Skipf("%s not available", DefaultShell)
	}
}

// hasDiag reports whether c recorded a diagnostic matching target.
func hasDiag(c *Collector, target error) bool {
	for _, d := range c.Diagnostics {
		if errors.Is(d, target) {
			return true
		}
	}

	return false
}
