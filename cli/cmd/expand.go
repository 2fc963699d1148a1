package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/pkg"
)

// Expand expands text the way configuration lines are expanded and prints
// the result.
type Expand struct {
	Source []string `help:"Expand each line of file(s) or '-' for stdin" name:"source" short:"s" type:"existingfile"`

	Text []string `arg:"" help:"Text to expand; stdin is read when no text or source is given" name:"text" optional:""`
}

// Run executes the expand command.
func (x *Expand) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return x.run(WithSourceFiles(ctx, x.sources()), os.Stdout)
}

func (x *Expand) sources() []string {
	if len(x.Text) == 0 && len(x.Source) == 0 {
		return []string{stdinSource}
	}

	return x.Source
}

func (x *Expand) run(ctx context.Context, w io.Writer) error {
	var diag conf.Collector

	engine, err := newEngine(ctx, logged(&diag))
	if err != nil {
		return err
	}
	defer engine.Close()

	for _, text := range x.Text {
		if err := expandTo(ctx, w, engine, text); err != nil {
			return err
		}
	}

	if src := sourceFilesFrom(ctx); src != nil {
		for line, err := range src.Lines() {
			if err != nil {
				return pkg.ErrReadInput.Wrap(err)
			}

			if err := expandTo(ctx, w, engine, line); err != nil {
				return err
			}
		}
	}

	if err := diag.Err(); err != nil {
		return pkg.ErrConfig.Wrap(err)
	}

	return nil
}

// expandTo writes the expansion of text to w as a single line.
func expandTo(ctx context.Context, w io.Writer, e *conf.Engine, text string) error {
	x, err := e.Expand(ctx, text)
	if err != nil {
		e.Report(ctx, conf.SeverityError,
			conf.WrapError(err).With(slog.String("text", text)))
	}

	if x.Truncated {
		e.Report(ctx, conf.SeverityWarning, conf.ErrTruncated)
	}

	_, err = fmt.Fprintln(w, x.Text)

	return err
}
