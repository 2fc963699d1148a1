package conf

import (
	"bufio"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
	"golang.org/x/mod/semver"
	"golang.org/x/sys/unix"
)

// FindFile returns the first readable regular file named name, trying
// dir/name (or name itself when dir is empty) and then name within each
// directory of the list path. An absolute name is only tried as given.
func FindFile(name, dir, path string) (string, error) {
	if filepath.IsAbs(name) {
		if readable(name) {
			return name, nil
		}

		return "", ErrNotFound.With(slog.String("name", name))
	}

	candidate := name
	if dir != "" {
		candidate = filepath.Join(dir, name)
	}

	if readable(candidate) {
		return candidate, nil
	}

	for _, d := range filepath.SplitList(path) {
		if d == "" {
			continue
		}

		if candidate = filepath.Join(d, name); readable(candidate) {
			return candidate, nil
		}
	}

	return "", ErrNotFound.With(slog.String("name", name), slog.String("path", path))
}

func readable(path string) bool {
	if unix.Access(path, unix.R_OK) != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

func isDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

// SearchPath returns the directory list base with each existing directory
// in extra placed in front of it.
func SearchPath(base string, extra ...string) string {
	return mung.Make(
		mung.WithSubjectItems(base),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(extra...),
		mung.WithFilter(isDir),
	).String()
}

// Source is an input whose header has been checked.
type Source struct {
	*bufio.Reader
	io.Closer

	// Path names the input in diagnostics.
	Path string
	// Version is the version token of the header.
	Version string
	// Lines is the number of lines consumed by the header check.
	Lines int
}

// Open opens the file at path and checks its header.
func (e *Engine) Open(ctx context.Context, path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrOpenFile.Wrap(err).With(slog.String("file", path))
	}

	src, err := e.OpenReader(ctx, path, f)
	if err != nil {
		_ = f.Close()

		return nil, err
	}

	src.Closer = f

	return src, nil
}

// OpenReader checks the header of r, which is named path in diagnostics.
//
// The first line must begin with "<name-", where name is the program name
// given with [WithProgram], compared without regard to case. The text up to
// the following '>' is the version of the input; a version newer than the
// program's is reported as a warning. No header is required when the
// program name is empty.
func (e *Engine) OpenReader(ctx context.Context, path string, r io.Reader) (*Source, error) {
	src := &Source{
		Reader: bufio.NewReaderSize(r, e.opts.bufferSize),
		Closer: nopCloser{},
		Path:   path,
	}

	if e.opts.name == "" {
		return src, nil
	}

	header, err := src.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || header == "") {
		return nil, ErrMagic.Wrap(err).With(slog.String("file", path))
	}

	src.Lines = 1
	header = strings.TrimRight(header, "\r\n")

	prefix := "<" + e.opts.name + "-"
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return nil, ErrMagic.With(
			slog.String("file", path),
			slog.String("want", prefix+e.opts.version+">"))
	}

	src.Version, _, _ = strings.Cut(header[len(prefix):], ">")

	if newerVersion(src.Version, e.opts.version) {
		d := Diagnostic{
			Severity: SeverityWarning,
			File:     path,
			Line:     1,
			Err: ErrNewerVersion.With(
				slog.String("version", src.Version),
				slog.String("program", e.opts.version)),
		}
		e.opts.reporter.Report(ctx, d)
	}

	return src, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// newerVersion reports whether version v is newer than program version p.
// Versions are compared semantically when both are valid semantic versions
// (with or without a leading "v"), otherwise by the first len(p) bytes
// without regard to case.
func newerVersion(v, p string) bool {
	if p == "" {
		return false
	}

	sv, sp := "v"+strings.TrimPrefix(v, "v"), "v"+strings.TrimPrefix(p, "v")
	if semver.IsValid(sv) && semver.IsValid(sp) {
		return semver.Compare(sv, sp) > 0
	}

	if len(v) > len(p) {
		v = v[:len(p)]
	}

	return strings.ToLower(v) > strings.ToLower(p)
}
