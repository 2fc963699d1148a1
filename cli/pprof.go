//go:build pprof

package cli

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/profile"
)

type pprofConfig struct {
	Mode  string `default:""            enum:",${pprofModeEnum}" help:"Collect a runtime profile of the selected command" placeholder:"${enum}" short:"p"`
	Dir   string `default:"${pprofDir}" help:"Profile output directory; each command writes to its own subdirectory" type:"path"`
	Quiet bool   `default:"true"        help:"Silence the profiler's own messages" negatable:""`
}

func (pprofConfig) vars() kong.Vars {
	return kong.Vars{
		"pprofModeEnum": strings.Join(profile.Modes(), ","),
		"pprofDir":      filepath.Join(cacheDir(), profile.Tag),
	}
}

func (pprofConfig) group() kong.Group {
	return kong.Group{Key: profile.Tag, Title: "Profiling options"}
}

// start begins profiling command if a mode is selected and returns the
// function that writes the profile.
func (f pprofConfig) start(ctx context.Context, command string) (stop func()) {
	s := profile.Settings{
		Mode:  f.Mode,
		Dir:   f.Dir,
		Label: command,
		Quiet: f.Quiet,
	}

	if s.Mode == "" {
		return func() {}
	}

	attrs := []slog.Attr{
		slog.String("mode", s.Mode),
		slog.String("path", s.Path()),
	}

	log.DebugContext(ctx, "profile start", attrs...)

	p := s.Start()

	return func() {
		p.Stop()
		log.DebugContext(ctx, "profile written", attrs...)
	}
}
