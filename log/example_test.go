package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/blockconf/log"
)

// plain omits timestamps and colors so output is reproducible.
func plain(opts ...log.Option) log.Logger {
	return log.Make(os.Stdout, append([]log.Option{
		log.WithTimeLayout("none"),
		log.WithPretty(false),
	}, opts...)...)
}

func ExampleMake() {
	logger := plain()
	logger.Info("parse started", slog.String("file", "site.conf"))
	// Output:
	// level=INFO msg="parse started" file=site.conf
}

func ExampleWithLevel() {
	logger := plain(log.WithLevel(log.LevelWarn))

	logger.Debug("begin block")
	logger.Info("push file")
	logger.Warn("unterminated block", slog.String("context", "server"))
	// Output:
	// level=WARN msg="unterminated block" context=server
}

func ExampleWithFormat() {
	logger := plain(log.WithFormat(log.FormatJSON))
	logger.Error("unknown context", slog.Int("line", 12))
	// Output:
	// {"level":"ERROR","msg":"unknown context","line":12}
}

func ExampleLogger_With() {
	logger := plain(log.WithLevel(log.LevelTrace)).
		With(slog.String("file", "site.conf"))

	logger.TraceContext(context.Background(), "line", slog.Int("line", 3))
	// Output:
	// level=TRACE msg=line file=site.conf line=3
}
