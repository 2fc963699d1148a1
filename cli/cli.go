package cli

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/cli/cmd"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// CLI is the top-level command-line interface for blockconf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Define    []string `help:"Set variable NAME to VALUE before interpreting input" placeholder:"NAME=VALUE" short:"D"`
	Path      []string `help:"Search DIR for configuration files before the defaults" placeholder:"DIR" short:"P" type:"path"`
	Backquote bool     `help:"Run backquoted shell commands during expansion"`

	Parse  cmd.Parse  `cmd:"" help:"Interpret a configuration file and print its blocks"`
	Expand cmd.Expand `cmd:"" help:"Expand text as a configuration line"`
	Find   cmd.Find   `cmd:"" help:"Locate a configuration file"`
	Init   cmd.Init   `cmd:"" help:"Initialize configuration file"`
	Repl   cmd.Repl   `cmd:"" help:"Start an interactive expansion shell"`
}

// Run executes the blockconf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier: configFilePath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
	cli.Log.scan(args)

	// Parse command line
	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configFilePath+".json"),
		kong.Configuration(resolve(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Stuff additional context values for use by commands
	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSettings(ctx, cli.settings())

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx, ktx.Command())()

	log.TraceContext(ctx, "run",
		slog.String("command", ktx.Command()),
		slog.String("config", configFilePath),
	)

	// Execute the selected command
	return ktx.Run(ctx, &cli)
}

// settings returns the engine settings selected by the global flags.
func (c *CLI) settings() cmd.Settings {
	return cmd.Settings{
		Defines:   c.Define,
		Path:      searchPath(c.Path...),
		Backquote: c.Backquote,
	}
}
