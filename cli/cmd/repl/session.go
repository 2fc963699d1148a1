package repl

import (
	"context"
	"fmt"
	"strings"

	"github.com/ardnew/blockconf/conf"
)

// Session is the engine state a REPL operates on.
type Session struct {
	Engine *conf.Engine
	// Diagnostics must be a reporter of Engine. It is drained after each
	// input line.
	Diagnostics *conf.Collector
	// Path is the search path used by :load.
	Path string
}

// expand expands input and renders the result followed by any diagnostics.
func (s Session) expand(ctx context.Context, input string) string {
	defer s.Diagnostics.Reset()

	x, err := s.Engine.Expand(ctx, input)
	if err != nil {
		s.Engine.Report(ctx, conf.SeverityError, err)
	}

	if x.Truncated {
		s.Engine.Report(ctx, conf.SeverityWarning, conf.ErrTruncated)
	}

	lines := []string{resultStyle.Render(x.Text)}

	return strings.Join(append(lines, s.diagnostics()...), "\n")
}

// load interprets the configuration file named by args.
func (s Session) load(ctx context.Context, args string) string {
	defer s.Diagnostics.Reset()

	name := conf.Word(1, args)
	if name == "" {
		return errorStyle.Render("usage: :load FILE")
	}

	dir, err := s.Engine.Parse(ctx, name, "", s.Path)
	if err != nil {
		return errorStyle.Render("error: " + err.Error())
	}

	lines := []string{resultStyle.Render("loaded " + name + " from " + dir)}

	return strings.Join(append(lines, s.diagnostics()...), "\n")
}

func (s Session) diagnostics() []string {
	out := make([]string, 0, len(s.Diagnostics.Diagnostics))

	for _, d := range s.Diagnostics.Diagnostics {
		style := warnStyle
		if d.Severity >= conf.SeverityError {
			style = errorStyle
		}

		out = append(out, style.Render(d.Severity.String()+": "+d.Err.Error()))
	}

	return out
}

func (s Session) vars() string {
	if s.Engine.Vars().Len() == 0 {
		return hintStyle.Render("  (no variables)")
	}

	var b strings.Builder

	for name, value := range s.Engine.Vars().All() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(value))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

func (s Session) builtins() string {
	var b strings.Builder

	for _, name := range s.Engine.Builtins() {
		fmt.Fprintf(&b, "  %%%s\n", name)
	}

	return strings.TrimSuffix(b.String(), "\n")
}
