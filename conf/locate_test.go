package conf

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestFindFile(t *testing.T) {
	a, b, empty := t.TempDir(), t.TempDir(), t.TempDir()
	list := a + string(os.PathListSeparator) + b

	writeFile(t, b, "app.cfg", "")
	writeFile(t, b, "only-b.cfg", "")
	writeFile(t, empty, "here.cfg", "")

	if err := os.Mkdir(filepath.Join(a, "only-b.cfg"), 0o700); err != nil {
		t.Fatal(err)
	}

	t.Run("second entry", func(t *testing.T) {
		got, err := FindFile("app.cfg", "", list)
		if err != nil || got != filepath.Join(b, "app.cfg") {
			t.Errorf("FindFile = %q, %v", got, err)
		}
	})

	t.Run("first entry wins", func(t *testing.T) {
		writeFile(t, a, "app.cfg", "")

		got, err := FindFile("app.cfg", "", list)
		if err != nil || got != filepath.Join(a, "app.cfg") {
			t.Errorf("FindFile = %q, %v", got, err)
		}
	})

	t.Run("directory skipped", func(t *testing.T) {
		got, err := FindFile("only-b.cfg", "", list)
		if err != nil || got != filepath.Join(b, "only-b.cfg") {
			t.Errorf("FindFile = %q, %v", got, err)
		}
	})

	t.Run("dir before path", func(t *testing.T) {
		got, err := FindFile("here.cfg", empty, list)
		if err != nil || got != filepath.Join(empty, "here.cfg") {
			t.Errorf("FindFile = %q, %v", got, err)
		}
	})

	t.Run("absolute", func(t *testing.T) {
		abs := filepath.Join(b, "app.cfg")

		got, err := FindFile(abs, a, "")
		if err != nil || got != abs {
			t.Errorf("FindFile = %q, %v", got, err)
		}
	})

	t.Run("missing", func(t *testing.T) {
		if _, err := FindFile("none.cfg", empty, list); !errors.Is(err, ErrNotFound) {
			t.Errorf("FindFile error = %v", err)
		}
	})
}

func TestNewerVersion(t *testing.T) {
	tests := []struct {
		file, prog string
		want       bool
	}{
		{"2.0", "1.5", true},
		{"1.5", "1.5", false},
		{"1.4.9", "1.5", false},
		{"1.10", "1.9", true},
		{"v1.2.3", "1.2.3", false},
		{"1.2.4", "v1.2.3", true},
		{"beta", "alpha", true},
		{"ALPHA", "alpha", false},
		{"9.9", "", false},
	}

	for _, tt := range tests {
		if got := newerVersion(tt.file, tt.prog); got != tt.want {
			t.Errorf("newerVersion(%q, %q) = %v, want %v", tt.file, tt.prog, got, tt.want)
		}
	}
}

func TestSearchPath(t *testing.T) {
	extra := t.TempDir()

	got := filepath.SplitList(SearchPath("/etc", extra))
	if !slices.Contains(got, extra) {
		t.Errorf("SearchPath() = %q, missing %q", got, extra)
	}
}
