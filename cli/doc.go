// Package cli contains the command line interface for blockconf.
//
// # Usage
//
//	blockconf [flags] <command> [args]
//
// Commands:
//
//   - parse: interpret a configuration file and print its blocks
//   - expand: expand text as a configuration line
//   - find: locate a configuration file on the search path
//   - init: write the default configuration file
//   - repl: start an interactive expansion shell
//
// # Configuration File
//
// Flag defaults are read from "config" in the user configuration directory,
// itself a blockconf file. Each line of its "flags" block sets one long flag:
//
//	<blockconf-0.1.0>
//	begin flags
//	  log-level debug
//	  path ~/.local/share/blockconf
//	end
//
// Lines are expanded before use, so variables and builtins are available.
// A "config.json" file in the same directory is also read. Command-line flags
// take precedence over both.
//
// # Global Options
//
//   - --define/-D NAME=VALUE: set a variable before interpreting input
//   - --path/-P DIR: search DIR for configuration files
//   - --backquote: run backquoted shell commands
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (text, json)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o blockconf .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/blockconf/pprof)
package cli
