package repl

import (
	"io"
	"slices"
	"strings"
	"testing"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
)

func newTestSession(t *testing.T) Session {
	t.Helper()

	diag := &conf.Collector{}
	e := conf.New(
		conf.WithProgram("app", "1.0"),
		conf.WithReporter(diag),
		conf.WithLogger(log.Make(io.Discard)),
		conf.WithTempDir(t.TempDir()),
	)

	t.Cleanup(func() { _ = e.Close() })

	e.Vars().Put("alpha", "1")
	e.Vars().Put("beta", "2")

	return Session{Engine: e, Diagnostics: diag}
}

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "foo", 3, "foo", 0, 3},
		{"builtin", "x %ge", 5, "%ge", 2, 5},
		{"variable", "a $al", 5, "$al", 2, 5},
		{"after_paren", "%get(fo", 7, "fo", 5, 7},
		{"command", ":he", 3, ":he", 0, 3},
		{"empty_at_boundary", "a ", 2, "", 2, 2},
		{"mid_word", "foobar", 3, "foobar", 0, 6},
		{"at_start", "foo", 0, "foo", 0, 3},
		{"dotted", "%eval(file.ex", 13, "file.ex", 6, 13},
		{"hyphenated", "log-pretty", 10, "log-pretty", 0, 10},
		{"cursor_past_end", "ab", 9, "ab", 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestInEval(t *testing.T) {
	tests := []struct {
		before string
		want   bool
	}{
		{"", false},
		{"%eval(", true},
		{"%eval(1 + ", true},
		{"%eval(len(", true},
		{"%eval(x) ", false},
		{"%get(", false},
	}

	for _, tt := range tests {
		t.Run(tt.before, func(t *testing.T) {
			if got := inEval(tt.before); got != tt.want {
				t.Errorf("inEval(%q) = %v, want %v", tt.before, got, tt.want)
			}
		})
	}
}

func TestComputeMatches(t *testing.T) {
	s := newTestSession(t)

	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{"builtin_prefix", "%ge", []string{"%get"}, []string{"$alpha"}},
		{"bare_percent", "%", []string{"%get", "%put", "%eval"}, nil},
		{"variable", "$al", []string{"$alpha"}, []string{"$beta"}},
		{"bare_dollar", "$", []string{"$alpha", "$beta"}, nil},
		{"command", ":qu", []string{":quit"}, nil},
		{"command_not_first", "x :qu", nil, []string{":quit"}},
		{"eval_helper", "%eval(platf", []string{"platform"}, nil},
		{"plain_word", "plat", nil, []string{"platform"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			matches, _, _ := computeMatches(s.Engine, tt.input, len(tt.input))

			var got []string
			for _, m := range matches {
				got = append(got, m.Str)
			}

			for _, want := range tt.contains {
				if !slices.Contains(got, want) {
					t.Errorf("matches %v missing %q", got, want)
				}
			}

			for _, bad := range tt.excludes {
				if slices.Contains(got, bad) {
					t.Errorf("matches %v contain %q", got, bad)
				}
			}
		})
	}
}

func TestCompletionBar(t *testing.T) {
	s := newTestSession(t)

	var c completion

	c.update(s.Engine, "%", 1, false)

	if bar := c.bar(0); bar != "" {
		t.Errorf("zero width bar = %q, want empty", bar)
	}

	if bar := c.bar(200); !strings.Contains(bar, "()") {
		t.Errorf("bar = %q, want builtin candidates", bar)
	}
}

func TestCompletionCycle(t *testing.T) {
	s := newTestSession(t)

	var c completion

	input := "x $"
	c.update(s.Engine, input, len(input), false)

	n := len(c.matches)
	if n < 2 {
		t.Fatalf("matches = %v, want alpha and beta", c.matches)
	}

	first := c.next(input, len(input), 1)
	if first != c.matches[0].Str || !c.cycling || c.saved != input {
		t.Fatalf("first next = %q, cycling %v, saved %q", first, c.cycling, c.saved)
	}

	if got := c.next(input, len(input), -1); got != c.matches[n-1].Str {
		t.Errorf("previous = %q, want %q", got, c.matches[n-1].Str)
	}

	out, pos := c.splice(input, "$alpha")
	if out != "x $alpha" || pos != len(out) {
		t.Errorf("splice = %q, %d", out, pos)
	}

	c.clear()

	if c.cycling || c.matches != nil || c.selected != -1 {
		t.Errorf("clear left %+v", c)
	}
}

func TestCompletionSettle(t *testing.T) {
	s := newTestSession(t)

	var c completion

	c.update(s.Engine, "$alpha", len("$alpha"), true)

	if c.matches != nil {
		t.Errorf("complete word kept candidates %v", c.matches)
	}
}
