package conf

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// BuiltinFunc implements a builtin. It receives the expanded argument text
// and returns the replacement text, or false for no output.
type BuiltinFunc func(ctx context.Context, e *Engine, args string) (string, bool)

type builtin struct {
	fn   BuiltinFunc
	name string
}

// RegisterBuiltin makes fn callable as %name(...) and returns its index.
// Registering an existing name, compared without regard to case, replaces
// its function.
//
// Builtins are matched in registration order, so a name that is a prefix of
// another only shadows it when the following character is also a match.
func (e *Engine) RegisterBuiltin(name string, fn BuiltinFunc) int {
	for i, b := range e.builtins {
		if strings.EqualFold(b.name, name) {
			e.builtins[i].fn = fn

			return i
		}
	}

	e.builtins = append(e.builtins, builtin{name: name, fn: fn})

	return len(e.builtins) - 1
}

// Builtins returns the registered builtin names in registration order.
func (e *Engine) Builtins() []string {
	names := make([]string, len(e.builtins))
	for i, b := range e.builtins {
		names[i] = b.name
	}

	return names
}

func (e *Engine) registerDefaults() {
	e.RegisterBuiltin("appname", builtinAppname)
	e.RegisterBuiltin("version", builtinVersion)
	e.RegisterBuiltin("exec", builtinExec)
	e.RegisterBuiltin("get", builtinGet)
	e.RegisterBuiltin("put", builtinPut)
	e.RegisterBuiltin("dirscan", builtinDirscan)
	e.RegisterBuiltin("random", builtinRandom)
	e.RegisterBuiltin("eval", builtinEval)
}

func arity(name string, got int, want string) error {
	return ErrArity.With(
		slog.String("builtin", name),
		slog.Int("words", got),
		slog.String("want", want))
}

func builtinAppname(_ context.Context, e *Engine, _ string) (string, bool) {
	return e.opts.name + "-" + e.opts.version, true
}

func builtinVersion(_ context.Context, e *Engine, _ string) (string, bool) {
	return e.opts.version, true
}

func builtinExec(ctx context.Context, e *Engine, args string) (string, bool) {
	if strings.TrimSpace(args) == "" {
		e.Report(ctx, SeverityError, arity("exec", 0, "command"))

		return "", false
	}

	return e.exec(ctx, args)
}

func builtinGet(ctx context.Context, e *Engine, args string) (string, bool) {
	w := Words(args)
	if len(w) == 0 || len(w) > 2 {
		e.Report(ctx, SeverityError, arity("get", len(w), "name [default]"))

		return "", false
	}

	if v, ok := e.vars.Get(w[0]); ok {
		return v, true
	}

	if len(w) == 2 {
		return w[1], true
	}

	return "", false
}

func builtinPut(ctx context.Context, e *Engine, args string) (string, bool) {
	w := Words(args)
	if len(w) != 2 {
		e.Report(ctx, SeverityError, arity("put", len(w), "name value"))

		return "", false
	}

	e.vars.Put(w[0], w[1])

	return "", false
}

func builtinDirscan(ctx context.Context, e *Engine, args string) (string, bool) {
	w := Words(args)
	if len(w) != 1 {
		e.Report(ctx, SeverityError, arity("dirscan", len(w), "directory"))

		return "", false
	}

	entries, err := os.ReadDir(w[0])
	if err != nil {
		e.Report(ctx, SeverityWarning, ErrDirScan.Wrap(err))

		return "", false
	}

	var (
		out     strings.Builder
		skipped int
	)

	// Names that do not fit are skipped; later, shorter ones may still fit.
	for _, ent := range entries {
		info, err := os.Stat(filepath.Join(w[0], ent.Name()))
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		sep := min(out.Len(), 1)
		if out.Len()+sep+len(ent.Name()) > e.opts.bufferSize-1 {
			skipped++

			continue
		}

		if sep > 0 {
			_ = out.WriteByte(' ')
		}

		out.WriteString(ent.Name())
	}

	if skipped > 0 {
		e.Report(ctx, SeverityWarning, ErrTruncated.With(
			slog.String("builtin", "dirscan"), slog.Int("skipped", skipped)))
	}

	return out.String(), out.Len() > 0
}

func builtinRandom(_ context.Context, e *Engine, args string) (string, bool) {
	w := Words(args)
	if len(w) == 0 {
		return "", false
	}

	if e.rng == nil {
		now := uint64(time.Now().UnixNano())
		e.rng = rand.New(rand.NewPCG(uint64(os.Getpid())*now, now))
	}

	return w[e.rng.IntN(len(w))], true
}
