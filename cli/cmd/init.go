package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
	"github.com/ardnew/blockconf/profile"
)

// FlagsContext is the name of the configuration file block holding flag
// values.
const FlagsContext = "flags"

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	confPath := kongVar(ctx, ConfigIdentifier)
	if confPath == "" {
		panic("internal error: configuration path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	err = writeConfig(file, flagEntries(kongContextFrom(ctx)), defaultConfigIndent)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// flagEntries returns a "name value" entry for the current value of each
// flag that can be set from the configuration file. A list flag yields one
// entry per element.
func flagEntries(ktx *kong.Context) []Entry {
	if ktx == nil {
		return nil
	}

	var entries []Entry

	prefixIgnore := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		for _, v := range flagValues(ktx.FlagValue(flag)) {
			entries = append(entries, Entry{Key: flag.Name, Value: v})
		}
	}

	return entries
}

// flagValues formats a flag value as configuration text.
func flagValues(val any) []string {
	switch v := val.(type) {
	case nil:
		return nil

	case bool:
		if v {
			return []string{"true"}
		}

		return []string{"false"}

	case string:
		if v == "" {
			return nil
		}

		return []string{quote(v)}

	case []string:
		out := make([]string, 0, len(v))
		for _, s := range v {
			out = append(out, quote(s))
		}

		return out

	case fmt.Stringer:
		return flagValues(v.String())
	}

	return []string{quote(fmt.Sprint(val))}
}

// quote returns s in a form that expands back to s. Text containing
// whitespace or expansion characters is double-quoted with each special
// byte escaped.
func quote(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\$%`~#") {
		return s
	}

	var sb strings.Builder

	sb.WriteByte('"')

	for i := range len(s) {
		if strings.IndexByte("\"'\\$%`", s[i]) >= 0 {
			sb.WriteByte('\\')
		}

		sb.WriteByte(s[i])
	}

	sb.WriteByte('"')

	return sb.String()
}

// writeConfig writes a configuration file holding entries in a flags block.
func writeConfig(w io.Writer, entries []Entry, indent int) error {
	_, err := fmt.Fprintf(w, "<%s-%s>\n", pkg.Name, pkg.Version)
	if err != nil {
		return err
	}

	return writeText(w, []Entry{{Block: &Block{
		Context: FlagsContext,
		Entries: entries,
	}}}, 0, indent)
}
