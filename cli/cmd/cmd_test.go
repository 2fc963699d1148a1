package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ardnew/blockconf/conf"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return path
}

// TestWithSourceFilesEmpty tests that an empty source list stores no files.
func TestWithSourceFilesEmpty(t *testing.T) {
	for _, sources := range [][]string{nil, {}} {
		if src := sourceFilesFrom(WithSourceFiles(context.Background(), sources)); src != nil {
			t.Errorf("WithSourceFiles(%v) stored %v, want nil", sources, src)
		}
	}
}

// TestWithSourceFilesMissing tests that unreadable files are skipped.
func TestWithSourceFilesMissing(t *testing.T) {
	ctx := WithSourceFiles(context.Background(),
		[]string{filepath.Join(t.TempDir(), "missing")})

	if src := sourceFilesFrom(ctx); src != nil {
		t.Errorf("sourceFilesFrom() = %v, want nil", src)
	}
}

// TestWithSourceFilesDeduplicates tests that the same file given as a
// relative path, an absolute path, and a symlink is read once.
func TestWithSourceFilesDeduplicates(t *testing.T) {
	dir := t.TempDir()
	first := writeTemp(t, dir, "first.txt", "one\ntwo\n")
	second := writeTemp(t, dir, "second.txt", "three\n")

	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(first, link); err != nil {
		t.Skipf("symlink: %v", err)
	}

	t.Chdir(dir)

	ctx := WithSourceFiles(context.Background(),
		[]string{"first.txt", first, link, second, second})

	src := sourceFilesFrom(ctx)
	if src == nil || src.IsZero() {
		t.Fatal("sourceFilesFrom() is empty")
	}

	var lines []string

	for line, err := range src.Lines() {
		if err != nil {
			t.Fatalf("Lines() error = %v", err)
		}

		lines = append(lines, line)
	}

	if want := []string{"one", "two", "three"}; !slices.Equal(lines, want) {
		t.Errorf("Lines() = %q, want %q", lines, want)
	}
}

// TestSourceFilesRead tests reading the concatenated files.
func TestSourceFilesRead(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a", "first")
	b := writeTemp(t, dir, "b", "second")

	src := sourceFilesFrom(WithSourceFiles(context.Background(), []string{a, b}))
	if src == nil {
		t.Fatal("sourceFilesFrom() = nil")
	}

	data, err := io.ReadAll(src)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "firstsecond" {
		t.Errorf("read %q, want %q", data, "firstsecond")
	}
}

func TestNewEngineDefines(t *testing.T) {
	ctx := WithSettings(context.Background(), Settings{
		Defines: []string{"name=value", " spaced =x=y", "empty="},
	})

	var diag conf.Collector

	e, err := newEngine(ctx, &diag)
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}

	t.Cleanup(func() { _ = e.Close() })

	tests := []struct {
		name  string
		value string
		ok    bool
	}{
		{"name", "value", true},
		{"spaced", "x=y", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := e.Vars().Get(tt.name)
			if ok != tt.ok || got != tt.value {
				t.Errorf("Get(%q) = %q, %v; want %q, %v", tt.name, got, ok, tt.value, tt.ok)
			}
		})
	}
}

func TestNewEngineInvalidDefine(t *testing.T) {
	for _, def := range []string{"novalue", "=value"} {
		t.Run(def, func(t *testing.T) {
			ctx := WithSettings(context.Background(), Settings{Defines: []string{def}})

			if _, err := newEngine(ctx, &conf.Collector{}); !errors.Is(err, ErrDefine) {
				t.Errorf("newEngine() error = %v, want ErrDefine", err)
			}
		})
	}
}
