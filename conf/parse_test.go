package conf

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

const header = "<app-1.5>\n"

func parseString(t *testing.T, e *Engine, content string) {
	t.Helper()

	path := writeFile(t, t.TempDir(), "test.conf", content)
	if _, err := e.Parse(context.Background(), path, "", ""); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
}

func TestParseBlocks(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	parseString(t, e, header+`
# comment

begin site
    name   example.org
	docroot ~/www
<ignored header echo>
end
`)

	want := []call{
		{ev: EventBegin},
		{ev: EventLine, line: "name   example.org"},
		{ev: EventLine, line: "docroot /home/tester/www"},
		{ev: EventEnd},
	}

	if !slices.Equal(site.calls, want) {
		t.Errorf("calls = %+v, want %+v", site.calls, want)
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", c.Diagnostics)
	}

	if e.Depth() != 0 {
		t.Errorf("Depth() = %d after parse", e.Depth())
	}
}

func TestParseBeginEnd(t *testing.T) {
	e, _ := newTestEngine(t)

	names := []string{"alpha", "beta", "gamma"}
	recs := make(map[string]*recorder)

	for _, name := range names {
		recs[name] = &recorder{}
		e.RegisterContext(name, recs[name])
	}

	var b strings.Builder

	b.WriteString(header)

	for _, name := range names {
		b.WriteString("begin " + name + "\nend\n")
	}

	parseString(t, e, b.String())

	for _, name := range names {
		want := []call{{ev: EventBegin}, {ev: EventEnd}}
		if got := recs[name].calls; !slices.Equal(got, want) {
			t.Errorf("%s calls = %+v, want %+v", name, got, want)
		}
	}

	if e.Depth() != 0 {
		t.Errorf("Depth() = %d", e.Depth())
	}
}

func TestParseState(t *testing.T) {
	e, _ := newTestEngine(t)

	var final any

	e.RegisterContext("count", HandlerFunc(
		func(_ context.Context, ev Event, _ string, state any) any {
			switch ev {
			case EventBegin:
				return 0
			case EventEnd:
				final = state
			}

			n, _ := state.(int)

			return n + 1
		}))

	parseString(t, e, header+"BEGIN Count extra words\na\nb\nc\nEND of block\n")

	if final != 3 {
		t.Errorf("final state = %v, want 3", final)
	}
}

func TestParseNestedBlocks(t *testing.T) {
	e, _ := newTestEngine(t)
	outer, inner := &recorder{}, &recorder{}
	e.RegisterContext("outer", outer)
	e.RegisterContext("inner", inner)

	parseString(t, e, header+"begin outer\n1\nbegin inner\n2\nend\n3\nend\n")

	if got := outer.lines(); !slices.Equal(got, []string{"1", "3"}) {
		t.Errorf("outer lines = %q", got)
	}

	if got := inner.lines(); !slices.Equal(got, []string{"2"}) {
		t.Errorf("inner lines = %q", got)
	}
}

func TestParseUnknownContextSkipped(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	parseString(t, e, header+`begin nope
dropped %put(x 1)
%include nothing.conf
begin site
also dropped
end
end
begin site
kept
end
`)

	if got := site.lines(); !slices.Equal(got, []string{"kept"}) {
		t.Errorf("lines = %q", got)
	}

	if _, ok := e.Vars().Get("x"); ok {
		t.Error("skipped line was expanded")
	}

	if len(c.Diagnostics) != 1 || !hasDiag(c, ErrUnknownContext) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}

	if d := c.Diagnostics[0]; d.Line != 2 || !strings.HasSuffix(d.File, "test.conf") {
		t.Errorf("diagnostic location = %s:%d", d.File, d.Line)
	}
}

func TestParseNullContext(t *testing.T) {
	e, c := newTestEngine(t)

	parseString(t, e, header+"stray line\nend\n")

	if !hasDiag(c, ErrNotAllowed) || !hasDiag(c, ErrUnmatchedEnd) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}

	null := &recorder{}
	if id := e.RegisterContext("NULL", null); id != 0 {
		t.Fatalf("RegisterContext(NULL) = %d", id)
	}

	parseString(t, e, header+"accepted\n")

	if got := null.lines(); !slices.Equal(got, []string{"accepted"}) {
		t.Errorf("null lines = %q", got)
	}
}

func TestParseDirectives(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	parseString(t, e, header+`%put(root /srv)
%put(root %get(root)/www)
begin site
%put(inside yes)
dir %get(root)
end
`)

	if got := site.lines(); !slices.Equal(got, []string{"dir /srv/www"}) {
		t.Errorf("lines = %q", got)
	}

	if v, _ := e.Vars().Get("inside"); v != "yes" {
		t.Errorf("inside = %q", v)
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", c.Diagnostics)
	}
}

func TestParseInclude(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	dir := t.TempDir()
	writeFile(t, dir, "inc.conf", header+"two\n%include deeper.conf\n")
	writeFile(t, dir, "deeper.conf", header+"three\n")
	writeFile(t, dir, "main.conf", header+"begin site\none\n%include %get(name inc).conf\nfour\nend\n")

	got, err := e.Parse(context.Background(), "main.conf", dir, "")
	if err != nil {
		t.Fatal(err)
	}

	if got != dir {
		t.Errorf("Parse() = %q, want %q", got, dir)
	}

	if lines := site.lines(); !slices.Equal(lines, []string{"one", "two", "three", "four"}) {
		t.Errorf("lines = %q", lines)
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", c.Diagnostics)
	}
}

func TestParseIncludeBesideFile(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	dir := t.TempDir()
	writeFile(t, dir, "inc.conf", header+"two\n")
	writeFile(t, dir, "bad.conf", "<other-1.0>\nthree\n")
	path := writeFile(t, dir, "main.conf",
		header+"begin site\none\n%include inc.conf\n%include bad.conf\nend\n")

	got, err := e.Parse(context.Background(), path, "", "")
	if err != nil {
		t.Fatal(err)
	}

	if got != "." {
		t.Errorf("Parse() = %q, want %q", got, ".")
	}

	if lines := site.lines(); !slices.Equal(lines, []string{"one", "two"}) {
		t.Errorf("lines = %q", lines)
	}

	if !hasDiag(c, ErrMagic) || c.Count(SeverityError) != 0 {
		t.Errorf("diagnostics = %v, want only an %v warning", c.Diagnostics, ErrMagic)
	}
}

func TestParseIncludeSearchPath(t *testing.T) {
	e, c := newTestEngine(t)
	site := &recorder{}
	e.RegisterContext("site", site)

	main, lib := t.TempDir(), t.TempDir()
	writeFile(t, lib, "lib.conf", header+"from lib\n")
	writeFile(t, main, "main.conf", header+"begin site\n%include lib.conf\n%include missing.conf\nafter\nend\n")

	if _, err := e.Parse(context.Background(), "main.conf", main, lib); err != nil {
		t.Fatal(err)
	}

	if lines := site.lines(); !slices.Equal(lines, []string{"from lib", "after"}) {
		t.Errorf("lines = %q", lines)
	}

	if len(c.Diagnostics) != 1 || !hasDiag(c, ErrNotFound) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}
}

func TestParseIncludeDepth(t *testing.T) {
	e, c := newTestEngine(t, WithMaxDepth(4))

	dir := t.TempDir()
	writeFile(t, dir, "loop.conf", header+"%include loop.conf\n")

	if _, err := e.Parse(context.Background(), "loop.conf", dir, ""); err != nil {
		t.Fatal(err)
	}

	if !hasDiag(c, ErrMaxDepth) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}
}

func TestParseUnbalancedUnwindsFile(t *testing.T) {
	e, c := newTestEngine(t)
	site, inner := &recorder{}, &recorder{}
	e.RegisterContext("site", site)
	e.RegisterContext("inner", inner)

	dir := t.TempDir()
	writeFile(t, dir, "bad.conf", header+"begin inner\nfirst\nbroken %get(x\nnever\nend\n")
	writeFile(t, dir, "main.conf", header+"begin site\nbefore\n%include bad.conf\nafter\nend\n")

	if _, err := e.Parse(context.Background(), "main.conf", dir, ""); err != nil {
		t.Fatal(err)
	}

	if lines := site.lines(); !slices.Equal(lines, []string{"before", "after"}) {
		t.Errorf("site lines = %q", lines)
	}

	want := []call{{ev: EventBegin}, {ev: EventLine, line: "first"}, {ev: EventEnd}}
	if !slices.Equal(inner.calls, want) {
		t.Errorf("inner calls = %+v", inner.calls)
	}

	if !hasDiag(c, ErrUnbalanced) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}

	if c.Count(SeverityError) != 1 {
		t.Errorf("errors = %v", c.Err())
	}
}

func TestParseHeader(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		e, _ := newTestEngine(t)
		path := writeFile(t, t.TempDir(), "x.conf", "begin site\nend\n")

		if _, err := e.Parse(context.Background(), path, "", ""); !errors.Is(err, ErrMagic) {
			t.Errorf("Parse() error = %v, want %v", err, ErrMagic)
		}
	})

	t.Run("other program", func(t *testing.T) {
		e, _ := newTestEngine(t)
		path := writeFile(t, t.TempDir(), "x.conf", "<apple-1.0>\n")

		if _, err := e.Parse(context.Background(), path, "", ""); !errors.Is(err, ErrMagic) {
			t.Errorf("Parse() error = %v, want %v", err, ErrMagic)
		}
	})

	t.Run("newer version", func(t *testing.T) {
		e, c := newTestEngine(t)
		rec := &recorder{}
		e.RegisterContext("site", rec)
		path := writeFile(t, t.TempDir(), "x.conf", "<APP-2.0>\nbegin site\nok\nend\n")

		if _, err := e.Parse(context.Background(), path, "", ""); err != nil {
			t.Fatal(err)
		}

		if !hasDiag(c, ErrNewerVersion) || c.Count(SeverityError) != 0 {
			t.Errorf("diagnostics = %v", c.Diagnostics)
		}

		if !slices.Equal(rec.lines(), []string{"ok"}) {
			t.Errorf("lines = %q", rec.lines())
		}
	})

	t.Run("open", func(t *testing.T) {
		e, c := newTestEngine(t)
		path := writeFile(t, t.TempDir(), "x.conf", "<app-1.4.9>\n")

		src, err := e.Open(context.Background(), path)
		if err != nil {
			t.Fatal(err)
		}

		defer src.Close()

		if src.Version != "1.4.9" || src.Lines != 1 || len(c.Diagnostics) != 0 {
			t.Errorf("Source = %+v, diagnostics %v", src, c.Diagnostics)
		}
	})

	t.Run("not found", func(t *testing.T) {
		e, _ := newTestEngine(t)

		if _, err := e.Parse(context.Background(), "none.conf", t.TempDir(), ""); !errors.Is(err, ErrNotFound) {
			t.Errorf("Parse() error = %v, want %v", err, ErrNotFound)
		}
	})
}

func TestParseLineTooLong(t *testing.T) {
	e, c := newTestEngine(t, WithBufferSize(32))
	rec := &recorder{}
	e.RegisterContext("site", rec)

	parseString(t, e, header+"begin site\n"+strings.Repeat("z", 100)+"\nshort\nend\n")

	if !slices.Equal(rec.lines(), []string{"short"}) {
		t.Errorf("lines = %q", rec.lines())
	}

	if !hasDiag(c, ErrLineTooLong) {
		t.Errorf("diagnostics = %v", c.Diagnostics)
	}

	if d := c.Diagnostics[0]; d.Line != 3 {
		t.Errorf("line = %d, want 3", d.Line)
	}
}

func TestParseUnclosed(t *testing.T) {
	e, c := newTestEngine(t)
	rec := &recorder{}
	e.RegisterContext("site", rec)

	parseString(t, e, header+"begin site\nopen\n")

	if n := len(rec.calls); n != 3 || rec.calls[2].ev != EventEnd {
		t.Errorf("calls = %+v", rec.calls)
	}

	if !hasDiag(c, ErrUnclosed) || e.Depth() != 0 {
		t.Errorf("diagnostics = %v, depth %d", c.Diagnostics, e.Depth())
	}
}

func TestParsePreproc(t *testing.T) {
	requireShell(t)

	tmp := t.TempDir()
	e, c := newTestEngine(t, WithTempDir(tmp))
	rec := &recorder{}
	e.RegisterContext("site", rec)

	parseString(t, e, header+"%preproc tr a-z A-Z\nbegin site\nhello world\nend\n")

	if !slices.Equal(rec.lines(), []string{"HELLO WORLD"}) {
		t.Errorf("lines = %q", rec.lines())
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", c.Diagnostics)
	}

	left, _ := filepath.Glob(filepath.Join(tmp, "*-preproc-*"))
	if len(left) != 0 {
		t.Errorf("scratch files left behind: %v", left)
	}
}

func TestParseReader(t *testing.T) {
	e, c := newTestEngine(t, WithProgram("", ""))
	rec := &recorder{}
	e.RegisterContext("site", rec)

	err := e.ParseReader(context.Background(), "inline",
		strings.NewReader("begin site\nvalue %get(v none)\nend"))
	if err != nil {
		t.Fatal(err)
	}

	if !slices.Equal(rec.lines(), []string{"value none"}) {
		t.Errorf("lines = %q", rec.lines())
	}

	if len(c.Diagnostics) != 0 {
		t.Errorf("diagnostics: %v", c.Diagnostics)
	}
}

func TestParseContextCanceled(t *testing.T) {
	e, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeFile(t, t.TempDir(), "x.conf", header+"a\n")
	if _, err := e.Parse(ctx, path, "", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Parse() error = %v", err)
	}

	if e.File() != "" {
		t.Errorf("file %q left open", e.File())
	}
}

func TestParseArg(t *testing.T) {
	e, c := newTestEngine(t)
	rec := &recorder{}
	e.RegisterContext("site", rec)

	if err := e.ParseArg(context.Background(), "site name $FOO"); err != nil {
		t.Fatal(err)
	}

	want := []call{{ev: EventBegin}, {ev: EventLine, line: "name bar"}, {ev: EventEnd}}
	if !slices.Equal(rec.calls, want) {
		t.Errorf("calls = %+v", rec.calls)
	}

	if err := e.ParseArg(context.Background(), "bogus x"); !errors.Is(err, ErrUnknownContext) {
		t.Errorf("ParseArg(bogus) error = %v", err)
	}

	if d := c.Diagnostics[0]; d.File != argvPath {
		t.Errorf("diagnostic file = %q", d.File)
	}

	if e.File() != "" || e.Depth() != 0 {
		t.Errorf("state left behind: file %q depth %d", e.File(), e.Depth())
	}
}

func TestParseNoFile(t *testing.T) {
	e, _ := newTestEngine(t)

	if _, err := e.Parse(context.Background(), " ", "", ""); !errors.Is(err, ErrNoFile) {
		t.Errorf("Parse() error = %v, want ErrNoFile", err)
	}
}
