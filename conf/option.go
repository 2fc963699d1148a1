package conf

import (
	"io"
	"os"

	"github.com/ardnew/blockconf/log"
)

const (
	// DefaultBufferSize bounds the length of an input line and of the text
	// produced by a single expansion. Expanded text is limited to one byte
	// less than this.
	DefaultBufferSize = 20480

	// DefaultMaxDepth bounds builtin and backquote recursion during
	// expansion and the number of simultaneously open files.
	DefaultMaxDepth = 64

	// DefaultShell runs commands for exec, backquotes, and %preproc.
	DefaultShell = "/bin/sh"

	// DefaultTempPrefix starts the name of every scratch file.
	DefaultTempPrefix = "conf"

	minBufferSize = 16
)

// Option applies a configuration option to an [Engine].
type Option func(options) options

type options struct {
	logger     log.Logger
	reporter   Reporter
	env        func(string) (string, bool)
	stderr     io.Writer
	name       string
	version    string
	shell      string
	tempDir    string
	tempPrefix string
	bufferSize int
	maxDepth   int
	backquote  bool
}

func apply(o options, opts ...Option) options {
	for _, opt := range opts {
		if opt != nil {
			o = opt(o)
		}
	}

	return o
}

func makeOptions(opts ...Option) options {
	o := apply(options{
		logger:     log.Default(),
		env:        os.LookupEnv,
		stderr:     os.Stderr,
		shell:      DefaultShell,
		tempDir:    os.TempDir(),
		tempPrefix: DefaultTempPrefix,
		bufferSize: DefaultBufferSize,
		maxDepth:   DefaultMaxDepth,
	}, opts...)

	if o.reporter == nil {
		o.reporter = LogReporter(o.logger)
	}

	return o
}

// WithProgram sets the program name and version returned by the appname and
// version builtins and checked against every file header. An empty name
// disables the header check.
func WithProgram(name, version string) Option {
	return func(o options) options {
		o.name, o.version = name, version

		return o
	}
}

// WithLogger sets the logger used for tracing and, unless [WithReporter] is
// given, for diagnostics.
func WithLogger(logger log.Logger) Option {
	return func(o options) options {
		o.logger = logger

		return o
	}
}

// WithReporter sets the diagnostics sink.
func WithReporter(r Reporter) Option {
	return func(o options) options {
		o.reporter = r

		return o
	}
}

// WithBufferSize sets the maximum line length and expansion size.
func WithBufferSize(n int) Option {
	return func(o options) options {
		o.bufferSize = max(n, minBufferSize)

		return o
	}
}

// WithMaxDepth sets the expansion recursion and file nesting limit.
// A value less than 1 removes the limit.
func WithMaxDepth(n int) Option {
	return func(o options) options {
		o.maxDepth = n

		return o
	}
}

// WithBackquote enables command substitution with `command`.
func WithBackquote(enable bool) Option {
	return func(o options) options {
		o.backquote = enable

		return o
	}
}

// WithShell sets the shell used to run commands. Commands are passed to it
// with "-c".
func WithShell(path string) Option {
	return func(o options) options {
		if path != "" {
			o.shell = path
		}

		return o
	}
}

// WithTempDir sets the directory for scratch files. An empty dir selects
// the system default.
func WithTempDir(dir string) Option {
	return func(o options) options {
		if dir != "" {
			o.tempDir = dir
		}

		return o
	}
}

// WithTempPrefix sets the prefix of scratch file names.
func WithTempPrefix(prefix string) Option {
	return func(o options) options {
		if prefix != "" {
			o.tempPrefix = prefix
		}

		return o
	}
}

// WithEnv sets the environment lookup used for ~ and $NAME expansion.
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(o options) options {
		if lookup != nil {
			o.env = lookup
		}

		return o
	}
}

// WithStderr sets the writer that receives the standard error of commands.
func WithStderr(w io.Writer) Option {
	return func(o options) options {
		if w == nil {
			w = io.Discard
		}

		o.stderr = w

		return o
	}
}
