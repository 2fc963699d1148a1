// Package profile provides optional runtime profiling for blockconf.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only when
// the "pprof" build tag is set:
//
//	go build -tags pprof .
//	./blockconf --pprof-mode cpu parse site.conf
//
// Without the tag every operation is a no-op and [Modes] is empty, so the
// command-line flags are hidden and [Settings.Start] returns a [Stopper] that
// does nothing.
//
// Profiles are written to a per-command subdirectory of --pprof-dir, which
// defaults to the "pprof" subdirectory of the user cache directory:
//
//	$XDG_CACHE_HOME/blockconf/pprof   (Linux/Unix)
//	~/Library/Caches/blockconf/pprof  (macOS)
//
// Analyze them with the standard tooling:
//
//	go tool pprof -http=: ~/.cache/blockconf/pprof/parse/cpu.pprof
package profile
