package cmd

import (
	"bufio"
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// kongVar returns the kong variable named id, or "" if there is no kong
// context or no such variable.
func kongVar(ctx context.Context, id string) string {
	ktx := kongContextFrom(ctx)
	if ktx == nil {
		return ""
	}

	return ktx.Model.Vars()[id]
}

// Settings holds the global flags that configure every engine a command
// creates.
type Settings struct {
	// Defines are "name=value" pairs stored in the variable store.
	Defines []string
	// Path is the colon-separated list of directories searched for files.
	Path string
	// Backquote enables backquoted shell commands.
	Backquote bool
}

type settingsKey struct{}

// WithSettings returns a new context.Context containing s.
func WithSettings(ctx context.Context, s Settings) context.Context {
	return context.WithValue(ctx, settingsKey{}, s)
}

func settingsFrom(ctx context.Context) Settings {
	s, _ := ctx.Value(settingsKey{}).(Settings)

	return s
}

// logged returns a reporter that records diagnostics in c and logs them.
func logged(c *conf.Collector) conf.Reporter {
	return conf.MultiReporter(c, conf.LogReporter(log.Default()))
}

// newEngine returns an engine configured from the settings in ctx that sends
// diagnostics to r.
func newEngine(ctx context.Context, r conf.Reporter) (*conf.Engine, error) {
	s := settingsFrom(ctx)

	e := conf.New(
		conf.WithProgram(pkg.Name, pkg.Version),
		conf.WithLogger(log.Default()),
		conf.WithReporter(r),
		conf.WithBackquote(s.Backquote),
		conf.WithTempDir(kongVar(ctx, CacheIdentifier)),
	)

	for _, def := range s.Defines {
		name, value, ok := strings.Cut(def, "=")
		if !ok || strings.TrimSpace(name) == "" {
			_ = e.Close()

			return nil, ErrDefine.With(slog.String("define", def))
		}

		e.Vars().Put(strings.TrimSpace(name), value)
	}

	return e, nil
}

type (
	sourceFilesKey struct{}
	sourceFiles    struct {
		read     []io.Reader
		hasStdin bool
	}

	// SourceFiles is the ordered, deduplicated set of input files given on
	// the command line.
	SourceFiles interface {
		IsZero() bool
		Lines() iter.Seq2[string, error]
		io.Reader
	}
)

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

func (s *sourceFiles) readers() []io.Reader {
	readers := s.read
	if s.hasStdin {
		readers = append(readers, os.Stdin)
	}

	return readers
}

// Read implements io.Reader by reading from all source files in order,
// including stdin if present.
func (s *sourceFiles) Read(p []byte) (n int, err error) {
	return io.MultiReader(s.readers()...).Read(p)
}

// Lines yields each line of every source file in order, with the trailing
// newline removed.
func (s *sourceFiles) Lines() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, r := range s.readers() {
			scan := bufio.NewScanner(r)
			for scan.Scan() {
				if !yield(scan.Text(), nil) {
					return
				}
			}

			if err := scan.Err(); err != nil {
				yield("", err)

				return
			}
		}
	}
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// WithSourceFiles returns a new context.Context containing the given source
// files.
//
// Files are deduplicated by device and inode after resolving symlinks. All
// occurrences of "-" are replaced with a single stdin reader, placed last so
// it reads after all regular files.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourceFilesKey{}, buildSourceFiles(sources))
}

func buildSourceFiles(sources []string) SourceFiles {
	if len(sources) == 0 {
		return nil
	}

	var srcs sourceFiles

	srcs.read = make([]io.Reader, 0, len(sources))
	seen := make(map[fileKey]struct{})

	stdinInfo, _ := os.Stdin.Stat()
	stdinKey, _ := makeFileKey(stdinInfo)

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		reader, ok := openUniqueFile(src, seen)
		if !ok {
			continue
		}

		srcs.read = append(srcs.read, reader)
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]
	delete(seen, stdinKey)

	if srcs.IsZero() {
		return nil
	}

	return &srcs
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It returns false if the file is a duplicate or cannot be opened.
func openUniqueFile(path string, seen map[fileKey]struct{}) (io.Reader, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, false
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, false
	}

	key, ok := makeFileKey(info)
	if !ok {
		return nil, false
	}

	if _, exists := seen[key]; exists {
		return nil, false
	}

	seen[key] = struct{}{}

	file, err := os.Open(resolved)
	if err != nil {
		return nil, false
	}

	return file, true
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	if info == nil {
		return key, false
	}

	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourceFilesFrom retrieves the files stored in ctx by WithSourceFiles.
// Returns nil if none were stored.
func sourceFilesFrom(ctx context.Context) SourceFiles {
	r, _ := ctx.Value(sourceFilesKey{}).(SourceFiles)

	return r
}
