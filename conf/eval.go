package conf

// This file defines the environment available to %eval expressions.
// Helper functions are built once per process and cloned for each call;
// variables from the store are added on top and shadow helpers of the
// same name.

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
)

// evalHelpers returns the process-wide helper functions and values.
//
//nolint:gochecknoglobals
var evalHelpers = sync.OnceValue(func() map[string]any {
	return map[string]any{
		"platform": map[string]any{
			"os":   runtime.GOOS,
			"arch": runtime.GOARCH,
		},
		"hostname": hostname(),
		"cwd":      cwd,

		"file": map[string]any{
			"exists":    fileExists,
			"isDir":     isDir,
			"isRegular": fileIsRegular,
			"readable":  readable,
		},

		"path": map[string]any{
			"abs":  pathAbs,
			"cat":  filepath.Join,
			"base": filepath.Base,
			"dir":  filepath.Dir,
		},

		"bool": map[string]any{
			"true":  IsTrue,
			"false": IsFalse,
		},

		"search": SearchPath,
	}
})

// EvalKeys returns the top-level names available to %eval besides
// variables, sorted.
func EvalKeys() []string {
	keys := slices.Collect(maps.Keys(evalHelpers()))
	keys = append(keys, "env", "vars")
	slices.Sort(keys)

	return keys
}

func (e *Engine) evalEnv() map[string]any {
	env := maps.Clone(evalHelpers())
	vars := make(map[string]any, e.vars.Len())

	for name, value := range e.vars.All() {
		v := nativeValue(value)
		vars[name] = v
		env[name] = v
	}

	env["vars"] = vars
	env["env"] = e.getenv

	return env
}

// Eval evaluates an expression over the variable store and helper
// functions and returns its result.
func (e *Engine) Eval(src string) (any, error) {
	env := e.evalEnv()

	program, err := expr.Compile(src, expr.Env(env))
	if err != nil {
		return nil, ErrEval.Wrap(err).With(slog.String("expression", src))
	}

	out, err := expr.Run(program, env)
	if err != nil {
		return nil, ErrEval.Wrap(err).With(slog.String("expression", src))
	}

	return out, nil
}

func builtinEval(ctx context.Context, e *Engine, args string) (string, bool) {
	if strings.TrimSpace(args) == "" {
		e.Report(ctx, SeverityError, arity("eval", 0, "expression"))

		return "", false
	}

	out, err := e.Eval(args)
	if err != nil {
		e.Report(ctx, SeverityError, err)

		return "", false
	}

	if out == nil {
		return "", false
	}

	return fmt.Sprint(out), true
}

// nativeValue converts a variable to a bool ("true" or "false"), integer,
// or float when it parses as one, otherwise it is kept as a string.
func nativeValue(s string) any {
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}

	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return i
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}

	return s
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}

	return h
}

func cwd() string {
	d, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return d
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}
