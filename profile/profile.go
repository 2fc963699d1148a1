package profile

import (
	"path/filepath"
	"strings"
)

// Tag is the build tag that enables profiling, also used as the name of the
// default output subdirectory.
const Tag = "pprof"

// Stopper ends a profile and flushes it to disk.
type Stopper interface{ Stop() }

// Settings selects which profile is collected and where it is written.
type Settings struct {
	// Mode is one of [Modes]. An empty Mode disables profiling.
	Mode string
	// Dir is the base output directory.
	Dir string
	// Label names a subdirectory of Dir, typically the command being run,
	// so profiles of different commands do not overwrite each other.
	Label string
	// Quiet suppresses the profiler's own log output.
	Quiet bool
}

// Path returns the directory the profile is written to.
func (s Settings) Path() string {
	label := strings.Join(strings.Fields(s.Label), "-")
	if s.Dir == "" || label == "" {
		return s.Dir
	}

	return filepath.Join(s.Dir, label)
}

// Start begins collecting the selected profile.
// Without the pprof build tag, or with an unknown or empty Mode, the returned
// Stopper does nothing. Stop is always safe to call.
func (s Settings) Start() Stopper {
	if s.Mode == "" {
		return ignore{}
	}

	return start(s.Mode, s.Path(), s.Quiet)
}

type ignore struct{}

func (ignore) Stop() {}
