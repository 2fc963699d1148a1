// Package log provides a concurrency-safe simplified logging interface
// based on [log/slog].
//
// Loggers are values: configuration is applied at creation time using
// functional options and copied by [Logger.Wrap] and [Logger.With], so a
// logger handed to a component never changes underneath it.
//
// # Basic Usage
//
//	logger := log.Make(os.Stderr)
//	logger.Info("parse started", slog.String("file", path))
//	logger.Error("parse failed", slog.Any("error", err))
//
// # Configuration
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatJSON),
//		log.WithTimeLayout("kitchen"),
//		log.WithCaller(true))
//
// # Default Logger
//
// The package maintains a process default logger used by the package-level
// functions ([Info], [WarnContext], ...). The command-line interface adjusts
// it with [Config] while flags are being parsed, so even parse errors are
// rendered in the requested format. Components that accept a [Logger] should
// be given [Default] (or a derivative from [With]) rather than reaching for
// the package-level functions.
//
// # Levels
//
// Five levels are supported: [LevelTrace], [LevelDebug], [LevelInfo],
// [LevelWarn], and [LevelError]. Trace sits below slog's debug level and is
// used for per-line interpreter tracing.
//
// # Output Formats
//
// [FormatText] (default) and [FormatJSON]. Pretty output, enabled by default,
// colorizes either one; disable it with [WithPretty] when writing to a file.
package log
