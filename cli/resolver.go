package cli

import (
	"context"
	"io"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/cli/cmd"
	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// resolve returns a [kong.ConfigurationLoader] that interprets a blockconf
// configuration file. Each line of a "flags" block has the form
//
//	name value
//
// where name is a long flag name. Repeating a name accumulates a list for
// flags that accept one. Diagnostics are logged and do not stop the program.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		engine := conf.New(
			conf.WithProgram(pkg.Name, pkg.Version),
			conf.WithLogger(log.Default()),
		)
		defer engine.Close()

		cfg := make(config)
		engine.RegisterContext(cmd.FlagsContext, conf.HandlerFunc(cfg.handle))

		err := engine.ParseReader(ctx, configPath(baseConfig), r)
		if err != nil {
			return nil, err
		}

		return cfg, nil
	}
}

// config implements [kong.Resolver] for blockconf configuration files.
type config map[string]any

// handle records one "name value" line of a flags block.
func (r config) handle(
	_ context.Context,
	ev conf.Event,
	line string,
	state any,
) any {
	if ev != conf.EventLine {
		return state
	}

	name := conf.Word(1, line)
	if name == "" {
		return state
	}

	value := configValue(conf.PWord(2, line))

	switch prev := r[name].(type) {
	case nil:
		r[name] = value
	case []any:
		r[name] = append(prev, value)
	default:
		r[name] = []any{prev, value}
	}

	return state
}

// configValue converts the text of a flag value. Boolean words become bool;
// everything else is passed to kong as a string for its own mappers.
func configValue(s string) any {
	s = strings.TrimSpace(s)

	switch {
	case s == "":
		return true
	case conf.IsTrue(s) && !isDigits(s):
		return true
	case conf.IsFalse(s) && !isDigits(s):
		return false
	}

	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}

	return s
}

func isDigits(s string) bool {
	return strings.Trim(s, "0123456789") == ""
}

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	// Diagnostics were already reported while parsing
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	// Kong flags use hyphens (e.g., "log-level") but configuration files
	// may use underscores. Try both forms.
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}
