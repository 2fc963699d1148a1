package conf

import (
	"context"
	"math/rand/v2"

	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// Engine holds the state of one interpreter session: registered contexts and
// builtins, the variable store, and the stacks of open files and blocks.
//
// An Engine is not safe for concurrent use.
type Engine struct {
	rng      *rand.Rand
	opts     options
	baseDir  string
	search   string
	vars     Vars
	contexts []contextDesc
	stack    []contextFrame
	builtins []builtin
	files    []*fileFrame
}

// New returns an Engine with the null context and the default builtins
// registered.
func New(opts ...Option) *Engine {
	e := &Engine{opts: makeOptions(opts...)}

	e.contexts = []contextDesc{{name: NullContext, handler: HandlerFunc(e.handleNull)}}
	e.stack = []contextFrame{{id: 0}}
	e.registerDefaults()

	return e
}

// Close closes every open file, removing scratch files, and discards any
// open blocks without calling their handlers.
func (e *Engine) Close() error {
	var errs pkg.Error

	for len(e.files) > 0 {
		if err := e.pop(); err != nil {
			errs = errs.Wrap(err)
		}
	}

	e.stack = e.stack[:1]

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// Vars returns the variable store.
func (e *Engine) Vars() *Vars { return &e.vars }

// Logger returns the logger the engine traces to.
func (e *Engine) Logger() log.Logger { return e.opts.logger }

// Program returns the name and version given with [WithProgram].
func (e *Engine) Program() (name, version string) {
	return e.opts.name, e.opts.version
}

// Report sends err to the reporter, located at the current file and line.
func (e *Engine) Report(ctx context.Context, sev Severity, err error) {
	d := Diagnostic{Severity: sev, Err: err}

	if f := e.top(); f != nil {
		d.File, d.Line = f.path, f.line
	}

	e.opts.reporter.Report(ctx, d)
}

func (e *Engine) getenv(name string) string {
	v, _ := e.opts.env(name)

	return v
}
