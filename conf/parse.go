package conf

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
)

// Parse locates the file name, checks its header, and interprets it and
// every file it includes. It returns the directory containing the file, or
// "." when neither dir nor path is set.
//
// When dir or path is set the file is located with [FindFile]; otherwise
// name is opened as given. Relative %include names are resolved against the
// directory containing the file and then path.
//
// Problems within the input are sent to the reporter and parsing continues;
// an error is returned only when the file cannot be located or opened, or
// when ctx is done. Blocks left open at the end are reported and closed.
func (e *Engine) Parse(ctx context.Context, name, dir, path string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrNoFile
	}

	full := name

	if dir != "" || path != "" {
		var err error
		if full, err = FindFile(name, dir, path); err != nil {
			return "", err
		}
	}

	src, err := e.Open(ctx, full)
	if err != nil {
		return "", err
	}

	base := filepath.Dir(full)

	ret := base
	if dir == "" && path == "" {
		ret = "."
	}

	return ret, e.parse(ctx, src, base, path)
}

// ParseReader interprets r, which is named name in diagnostics. Relative
// %include names are resolved against the current directory.
func (e *Engine) ParseReader(ctx context.Context, name string, r io.Reader) error {
	src, err := e.OpenReader(ctx, name, r)
	if err != nil {
		return err
	}

	return e.parse(ctx, src, ".", "")
}

func (e *Engine) parse(ctx context.Context, src *Source, base, path string) error {
	prevBase, prevSearch := e.baseDir, e.search
	e.baseDir, e.search = base, path

	defer func() { e.baseDir, e.search = prevBase, prevSearch }()

	depth := e.Depth()
	floor := len(e.files)

	e.push(ctx, &fileFrame{
		stream: src.Reader,
		closer: src.Closer,
		path:   src.Path,
		line:   src.Lines,
		depth:  depth,
	})

	err := e.run(ctx, floor)

	if e.Depth() > depth {
		e.Report(ctx, SeverityWarning,
			ErrUnclosed.With(slog.String("context", e.ContextName(e.PeekID()))))
		e.endTo(ctx, depth)
	}

	return err
}

// run reads lines until the file stack shrinks to floor.
func (e *Engine) run(ctx context.Context, floor int) error {
	for len(e.files) > floor {
		if err := ctx.Err(); err != nil {
			for len(e.files) > floor {
				_ = e.pop()
			}

			return err
		}

		f := e.top()

		line, err := e.readLine(ctx, f)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				e.Report(ctx, SeverityError, ErrRead.Wrap(err))
			}

			if err := e.pop(); err != nil {
				e.opts.logger.WarnContext(ctx, "close file", slog.Any("error", err))
			}

			continue
		}

		e.handleLine(ctx, f, line)
	}

	return nil
}

// handleLine classifies and processes one input line of f.
func (e *Engine) handleLine(ctx context.Context, f *fileFrame, raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || line[0] == '#' || line[0] == '<' {
		return
	}

	if f.skip > 0 {
		switch {
		case keyword(line, "begin"):
			f.skip++
		case keyword(line, "end"):
			f.skip--
		}

		return
	}

	e.opts.logger.TraceContext(ctx, "line",
		slog.String("file", f.path),
		slog.Int("line", f.line),
		slog.String("text", line))

	switch {
	case line[0] == '%':
		e.directive(ctx, f, line)

	case keyword(line, "begin"):
		e.begin(ctx, f, Word(2, line))

	case keyword(line, "end"):
		e.end(ctx)

	default:
		if text, ok := e.expandLine(ctx, f, line); ok {
			e.dispatch(ctx, text)
		}
	}
}

// keyword reports whether line is kw or starts with kw and whitespace,
// ignoring case.
func keyword(line, kw string) bool {
	if len(line) < len(kw) || !strings.EqualFold(line[:len(kw)], kw) {
		return false
	}

	return len(line) == len(kw) || isSpace(line[len(kw)])
}

// expandLine expands text read from f. A failed expansion abandons the rest
// of f, closing the blocks opened since f was pushed.
func (e *Engine) expandLine(ctx context.Context, f *fileFrame, text string) (string, bool) {
	x, err := e.Expand(ctx, text)
	if err != nil {
		e.Report(ctx, SeverityError, err)
		e.unwind(ctx, f)

		return "", false
	}

	if x.Truncated {
		e.Report(ctx, SeverityWarning,
			ErrTruncated.With(slog.Int("limit", e.opts.bufferSize-1)))
	}

	return x.Text, true
}

func (e *Engine) unwind(ctx context.Context, f *fileFrame) {
	e.opts.logger.DebugContext(ctx, "abandon file",
		slog.String("file", f.path),
		slog.Int("line", f.line))

	e.endTo(ctx, f.depth)

	if f.stream != nil {
		// The file is popped by run when its next read fails.
		f.stream.Reset(strings.NewReader(""))
	}
}

func (e *Engine) directive(ctx context.Context, f *fileFrame, line string) {
	switch {
	case keyword(line, "%include"):
		if text, ok := e.expandLine(ctx, f, line[len("%include"):]); ok {
			e.include(ctx, Word(1, text))
		}

	case keyword(line, "%preproc"):
		e.preproc(ctx, f, strings.TrimSpace(line[len("%preproc"):]))

	default:
		e.expandLine(ctx, f, line)
	}
}

func (e *Engine) include(ctx context.Context, name string) {
	if name == "" {
		e.Report(ctx, SeverityError, arity("include", 0, "file"))

		return
	}

	if e.opts.maxDepth > 0 && len(e.files) >= e.opts.maxDepth {
		e.Report(ctx, SeverityError,
			ErrMaxDepth.With(slog.String("include", name), slog.Int("limit", e.opts.maxDepth)))

		return
	}

	path, err := FindFile(name, e.baseDir, e.search)
	if err != nil {
		e.Report(ctx, SeverityError, err)

		return
	}

	src, err := e.Open(ctx, path)
	if err != nil {
		sev := SeverityError
		if errors.Is(err, ErrMagic) {
			sev = SeverityWarning
		}

		e.Report(ctx, sev, err)

		return
	}

	e.push(ctx, &fileFrame{
		stream: src.Reader,
		closer: src.Closer,
		path:   src.Path,
		line:   src.Lines,
		depth:  e.Depth(),
	})
}

// ParseArg interprets a line given outside any file, such as on the command
// line. The first word names a context; the rest of arg is expanded and
// passed to it as a single body line within its own block.
func (e *Engine) ParseArg(ctx context.Context, arg string) error {
	f := &fileFrame{path: argvPath, depth: e.Depth()}
	e.push(ctx, f)

	defer func() { _ = e.pop() }()

	if !e.begin(ctx, f, Word(1, arg)) {
		return ErrUnknownContext.With(slog.String("context", Word(1, arg)))
	}

	defer e.endTo(ctx, f.depth)

	x, err := e.Expand(ctx, PWord(2, arg))
	if err != nil {
		e.Report(ctx, SeverityError, err)

		return err
	}

	if x.Truncated {
		e.Report(ctx, SeverityWarning,
			ErrTruncated.With(slog.Int("limit", e.opts.bufferSize-1)))
	}

	e.dispatch(ctx, x.Text)

	return nil
}
