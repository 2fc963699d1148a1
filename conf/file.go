package conf

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/blockconf/pkg"
)

// argvPath names the frame of a line given on the command line.
const argvPath = "<argv>"

// fileFrame is one open input. A nil stream marks a line injected with
// ParseArg rather than read from a file.
type fileFrame struct {
	stream  *bufio.Reader
	closer  io.Closer
	path    string
	scratch string // preprocessor output, removed on pop
	line    int
	skip    int // nesting of unknown blocks being discarded
	depth   int // open blocks when the file was pushed
	preproc bool
}

func (e *Engine) push(ctx context.Context, f *fileFrame) int {
	e.files = append(e.files, f)

	e.opts.logger.TraceContext(ctx, "push file",
		slog.String("file", f.path),
		slog.Int("files", len(e.files)))

	return len(e.files) - 1
}

// pop closes the current file and removes its scratch output.
// It panics if no file is open.
func (e *Engine) pop() error {
	n := len(e.files) - 1
	if n < 0 {
		panic("conf: pop of empty file stack")
	}

	f := e.files[n]
	e.files[n] = nil
	e.files = e.files[:n]

	e.opts.logger.Trace("pop file",
		slog.String("file", f.path),
		slog.Int("line", f.line))

	var errs pkg.Error

	if f.closer != nil {
		if err := f.closer.Close(); err != nil {
			errs = errs.Wrap(err)
		}
	}

	if f.scratch != "" {
		if err := os.Remove(f.scratch); err != nil {
			errs = errs.Wrap(err)
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func (e *Engine) top() *fileFrame {
	if len(e.files) == 0 {
		return nil
	}

	return e.files[len(e.files)-1]
}

// File returns the path of the file being read, or "" if none is open.
func (e *Engine) File() string {
	if f := e.top(); f != nil {
		return f.path
	}

	return ""
}

// Line returns the number of the line being read in the current file.
func (e *Engine) Line() int {
	if f := e.top(); f != nil {
		return f.line
	}

	return 0
}

// Preprocessed reports whether the current file is being read from
// preprocessor output.
func (e *Engine) Preprocessed() bool {
	f := e.top()

	return f != nil && f.preproc
}

// readLine returns the next line of f. Lines longer than the buffer are
// reported and discarded.
func (e *Engine) readLine(ctx context.Context, f *fileFrame) (string, error) {
	if f.stream == nil {
		return "", io.EOF
	}

	for {
		b, more, err := f.stream.ReadLine()
		if err != nil {
			return "", err
		}

		f.line++

		if !more {
			return string(b), nil
		}

		e.Report(ctx, SeverityError,
			ErrLineTooLong.With(slog.Int("limit", e.opts.bufferSize)))

		for more {
			if _, more, err = f.stream.ReadLine(); err != nil {
				return "", err
			}
		}
	}
}
