package conf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

func (e *Engine) command(ctx context.Context, cmd string, stdin io.Reader, stdout io.Writer) error {
	c := exec.CommandContext(ctx, e.opts.shell, "-c", cmd)
	c.Stdin = stdin
	c.Stdout = stdout
	c.Stderr = e.opts.stderr

	err := c.Run()

	var exit *exec.ExitError
	if errors.As(err, &exit) {
		e.opts.logger.DebugContext(ctx, "command exit status",
			slog.String("command", cmd),
			slog.Int("status", exit.ExitCode()))

		return nil
	}

	return err
}

// exec runs cmd with the shell, capturing its output in a scratch file.
// Runs of whitespace in the output are collapsed to single spaces.
func (e *Engine) exec(ctx context.Context, cmd string) (string, bool) {
	f, err := os.CreateTemp(e.opts.tempDir, e.opts.tempPrefix+"-exec-*")
	if err != nil {
		e.Report(ctx, SeverityError, ErrTempFile.Wrap(err))

		return "", false
	}

	defer func() {
		_ = f.Close()
		_ = os.Remove(f.Name())
	}()

	if err := e.command(ctx, cmd, nil, f); err != nil {
		e.Report(ctx, SeverityError,
			ErrExec.Wrap(err).With(slog.String("command", cmd)))

		return "", false
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		e.Report(ctx, SeverityError, ErrRead.Wrap(err))

		return "", false
	}

	data, err := io.ReadAll(f)
	if err != nil {
		e.Report(ctx, SeverityError, ErrRead.Wrap(err))

		return "", false
	}

	out := strings.Join(strings.Fields(string(data)), " ")
	if out == "" {
		e.Report(ctx, SeverityWarning,
			ErrNoOutput.With(slog.String("command", cmd)))

		return "", false
	}

	return out, true
}

// preproc replaces the input of f with the output of cmd run on the
// contents of f's file. It does nothing if f is already preprocessor output
// or was not read from a file.
func (e *Engine) preproc(ctx context.Context, f *fileFrame, cmd string) {
	if f.preproc || f.stream == nil {
		e.opts.logger.DebugContext(ctx, "preproc ignored",
			slog.String("file", f.path),
			slog.Bool("preprocessed", f.preproc))

		return
	}

	if cmd == "" {
		e.Report(ctx, SeverityError, arity("preproc", 0, "command"))

		return
	}

	in, err := os.Open(f.path)
	if err != nil {
		e.Report(ctx, SeverityError, ErrOpenFile.Wrap(err))

		return
	}

	defer in.Close()

	out, err := os.CreateTemp(e.opts.tempDir, e.opts.tempPrefix+"-preproc-*")
	if err != nil {
		e.Report(ctx, SeverityError, ErrTempFile.Wrap(err))

		return
	}

	err = e.command(ctx, cmd, in, out)
	if err == nil {
		_, err = out.Seek(0, io.SeekStart)
	}

	if err != nil {
		e.Report(ctx, SeverityError,
			ErrPreproc.Wrap(err).With(slog.String("command", cmd)))

		_ = out.Close()
		_ = os.Remove(out.Name())

		return
	}

	e.opts.logger.TraceContext(ctx, "preproc",
		slog.String("file", f.path),
		slog.String("scratch", out.Name()),
		slog.String("command", cmd))

	if f.closer != nil {
		_ = f.closer.Close()
	}

	f.stream = bufio.NewReaderSize(out, e.opts.bufferSize)
	f.closer = out
	f.scratch = out.Name()
	f.preproc = true
	f.line = 0
}
