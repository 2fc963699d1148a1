package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
)

// Find prints the path a configuration file name resolves to.
type Find struct {
	Dir string `help:"Try DIR before the search path" short:"d" type:"path"`

	Name string `arg:"" help:"File name to locate" name:"name"`
}

// Run executes the find command.
func (f *Find) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return f.run(ctx, os.Stdout)
}

func (f *Find) run(ctx context.Context, w io.Writer) error {
	path := settingsFrom(ctx).Path

	log.TraceContext(ctx, "find",
		slog.String("name", f.Name),
		slog.String("dir", f.Dir),
		slog.String("path", path),
	)

	full, err := conf.FindFile(f.Name, f.Dir, path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, full)

	return err
}
