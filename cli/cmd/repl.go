package cmd

import (
	"context"

	"github.com/ardnew/blockconf/cli/cmd/repl"
	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// Repl starts an interactive expansion shell.
type Repl struct {
	Load []string `help:"Interpret configuration file(s) before starting" placeholder:"FILE" short:"l"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	// Diagnostics are shown inline rather than logged over the terminal UI.
	var diag conf.Collector

	engine, err := newEngine(ctx, &diag)
	if err != nil {
		return err
	}
	defer engine.Close()

	path := settingsFrom(ctx).Path

	for _, name := range r.Load {
		if _, err := engine.Parse(ctx, name, "", path); err != nil {
			return ErrParse.Wrap(err)
		}
	}

	if err := diag.Err(); err != nil {
		return pkg.ErrConfig.Wrap(err)
	}

	diag.Reset()

	return repl.Run(ctx, repl.Session{
		Engine:      engine,
		Diagnostics: &diag,
		Path:        path,
	}, kongVar(ctx, CacheIdentifier), log.Default())
}
