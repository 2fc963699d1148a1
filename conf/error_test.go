package conf

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

func TestErrorFormat(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrArity, "wrong number of arguments"},
		{ErrOpenFile.Wrap(io.EOF), "cannot open file: EOF"},
		{ErrUnknownContext.With(slog.String("context", "x")), "unknown context [context=x]"},
		{WrapError(io.EOF), "EOF"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestErrorIs(t *testing.T) {
	err := ErrExec.Wrap(io.ErrClosedPipe).With(slog.String("command", "x"))

	if !errors.Is(err, ErrExec) {
		t.Error("derived error does not match its sentinel")
	}

	if !errors.Is(err, io.ErrClosedPipe) {
		t.Error("derived error does not match its cause")
	}

	if errors.Is(err, ErrEval) {
		t.Error("derived error matches another sentinel")
	}

	if WrapError(err) != err {
		t.Error("WrapError did not return the existing *Error")
	}

	if len(ErrExec.attrs) != 0 {
		t.Error("With modified the sentinel")
	}
}

func TestDiagnostic(t *testing.T) {
	d := Diagnostic{Severity: SeverityError, File: "a.conf", Line: 3, Err: ErrArity}

	if got := d.Error(); got != "a.conf:3: wrong number of arguments" {
		t.Errorf("Error() = %q", got)
	}

	if got := (Diagnostic{File: "b.conf", Err: ErrMagic}).Error(); got != "b.conf: "+ErrMagic.Error() {
		t.Errorf("Error() = %q", got)
	}

	if !errors.Is(d, ErrArity) {
		t.Error("Diagnostic does not unwrap")
	}

	if SeverityWarning.String() != "warning" || Severity(9).String() != "Severity(9)" {
		t.Error("Severity.String")
	}
}

func TestCollector(t *testing.T) {
	var c Collector

	ctx := context.Background()

	if c.Err() != nil {
		t.Error("empty collector has an error")
	}

	c.Report(ctx, Diagnostic{Severity: SeverityWarning, Err: ErrTruncated})

	if c.Err() != nil {
		t.Error("warning counted as error")
	}

	c.Report(ctx, Diagnostic{Severity: SeverityError, File: "x", Line: 1, Err: ErrArity})
	c.Report(ctx, Diagnostic{Severity: SeverityError, File: "x", Line: 2, Err: ErrUnbalanced})

	err := c.Err()

	var chain pkg.Error
	if !errors.As(err, &chain) || len(chain) != 2 {
		t.Fatalf("Err() = %#v", err)
	}

	if !errors.Is(err, ErrUnbalanced) || errors.Is(err, ErrTruncated) {
		t.Errorf("Err() = %v", err)
	}

	if c.Count(SeverityWarning) != 1 || c.Count(SeverityError) != 2 {
		t.Errorf("counts = %d, %d", c.Count(SeverityWarning), c.Count(SeverityError))
	}

	c.Reset()

	if len(c.Diagnostics) != 0 {
		t.Error("Reset kept diagnostics")
	}
}

func TestLogReporter(t *testing.T) {
	var buf bytes.Buffer

	logger := log.Make(&buf,
		log.WithFormat(log.FormatText),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	var c Collector

	r := MultiReporter(LogReporter(logger), nil, &c)
	r.Report(context.Background(), Diagnostic{
		Severity: SeverityWarning,
		File:     "site.conf",
		Line:     7,
		Err:      ErrNoOutput,
	})

	out := buf.String()
	for _, want := range []string{"level=WARN", "configuration warning", "file=site.conf", "line=7"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}

	if len(c.Diagnostics) != 1 {
		t.Errorf("collector got %d diagnostics", len(c.Diagnostics))
	}
}
