package conf

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// Severity classifies a [Diagnostic].
type Severity int

const (
	SeverityWarning Severity = iota // warning
	SeverityError                   // error
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "Severity(" + strconv.Itoa(int(s)) + ")"
	}
}

// Diagnostic is a problem found while parsing, located at the file and line
// being read when it was reported.
type Diagnostic struct {
	Err      error
	File     string
	Line     int
	Severity Severity
}

// Error formats the diagnostic as "file:line: message".
func (d Diagnostic) Error() string {
	switch {
	case d.File == "":
		return d.Err.Error()
	case d.Line <= 0:
		return d.File + ": " + d.Err.Error()
	default:
		return d.File + ":" + strconv.Itoa(d.Line) + ": " + d.Err.Error()
	}
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error { return d.Err }

// Attrs returns the location and error as logging attributes.
func (d Diagnostic) Attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)

	if d.File != "" {
		attrs = append(attrs, slog.String("file", d.File))
	}

	if d.Line > 0 {
		attrs = append(attrs, slog.Int("line", d.Line))
	}

	return append(attrs, slog.Any("error", d.Err))
}

// Reporter receives diagnostics from an [Engine].
type Reporter interface {
	Report(ctx context.Context, d Diagnostic)
}

// ReporterFunc adapts a function to the [Reporter] interface.
type ReporterFunc func(ctx context.Context, d Diagnostic)

// Report calls f(ctx, d).
func (f ReporterFunc) Report(ctx context.Context, d Diagnostic) { f(ctx, d) }

// LogReporter returns a [Reporter] that writes each diagnostic to logger at
// warn or error level.
func LogReporter(logger log.Logger) Reporter {
	return ReporterFunc(func(ctx context.Context, d Diagnostic) {
		msg := "configuration " + d.Severity.String()

		if d.Severity >= SeverityError {
			logger.ErrorContext(ctx, msg, d.Attrs()...)
		} else {
			logger.WarnContext(ctx, msg, d.Attrs()...)
		}
	})
}

// MultiReporter returns a [Reporter] that forwards each diagnostic to every
// non-nil reporter in order.
func MultiReporter(reporters ...Reporter) Reporter {
	return ReporterFunc(func(ctx context.Context, d Diagnostic) {
		for _, r := range reporters {
			if r != nil {
				r.Report(ctx, d)
			}
		}
	})
}

// Collector is a [Reporter] that records every diagnostic.
type Collector struct {
	Diagnostics []Diagnostic
}

// Report appends d.
func (c *Collector) Report(_ context.Context, d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// Count returns the number of diagnostics recorded with severity s.
func (c *Collector) Count(s Severity) int {
	n := 0

	for _, d := range c.Diagnostics {
		if d.Severity == s {
			n++
		}
	}

	return n
}

// Err returns the error-severity diagnostics as a [pkg.Error] chain,
// or nil if there are none.
func (c *Collector) Err() error {
	var chain pkg.Error

	for _, d := range c.Diagnostics {
		if d.Severity >= SeverityError {
			chain = chain.Wrap(d)
		}
	}

	if len(chain) == 0 {
		return nil
	}

	return chain
}

// Reset discards all recorded diagnostics.
func (c *Collector) Reset() { c.Diagnostics = c.Diagnostics[:0] }
