package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/pkg"
)

// initCLI is a minimal command line whose flags are written by Init.
type initCLI struct {
	Verbose bool     `help:"Enable verbose output"`
	Output  string   `default:"out file.txt" help:"Output file"`
	Count   int      `default:"3"            help:"Number of items"`
	Define  []string `default:"a=1,b=$x"     help:"Definitions"`
	Empty   string   `help:"Unset"`
	Secret  string   `default:"hidden"       help:"Hidden" hidden:""`

	Init Init `cmd:"" help:"Initialize configuration file"`
}

func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(append([]string{"init"}, args...))
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(context.Background(), ktx)
}

// TestInitRun tests the Init.Run command.
func TestInitRun(t *testing.T) {
	tests := []struct {
		name    string
		force   bool
		exists  bool
		wantErr error
	}{
		{"create_new_config", false, false, nil},
		{"overwrite_existing_with_force", true, true, nil},
		{"fail_without_force", false, true, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config")

			if tt.exists {
				if err := os.WriteFile(confPath, []byte("existing content"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			err := (&Init{Force: tt.force}).Run(initContext(t, confPath))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) || !errors.Is(err, ErrWriteConfig) {
					t.Errorf("Init.Run() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("Init.Run() error = %v", err)
			}

			content, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			if !strings.HasPrefix(string(content), configHeader()+"begin flags\n") {
				t.Errorf("config does not start with header and flags block:\n%s", content)
			}
		})
	}
}

// TestInitRoundTrip tests that the generated file parses back to the flag
// values it was written from.
func TestInitRoundTrip(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "config")
	ctx := initContext(t, confPath, "--verbose")

	if err := (&Init{}).Run(ctx); err != nil {
		t.Fatalf("Init.Run() error = %v", err)
	}

	var diag conf.Collector

	e := conf.New(conf.WithProgram(pkg.Name, pkg.Version), conf.WithReporter(&diag))
	t.Cleanup(func() { _ = e.Close() })

	rec := &treeRecorder{engine: e}
	e.RegisterContext(FlagsContext, rec)

	if _, err := e.Parse(context.Background(), confPath, "", ""); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if err := diag.Err(); err != nil {
		t.Fatalf("diagnostics: %v", err)
	}

	if len(rec.root.Entries) != 1 || rec.root.Entries[0].Block == nil {
		t.Fatalf("entries = %+v, want one flags block", rec.root.Entries)
	}

	var got []string
	for _, ent := range rec.root.Entries[0].Block.Entries {
		got = append(got, ent.Key+"="+ent.Value)
	}

	want := []string{
		"verbose=true",
		`output="out file.txt"`,
		"count=3",
		"define=a=1",
		`define="b=$x"`,
	}

	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("entries =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"two words", `"two words"`},
		{"$HOME", `"\$HOME"`},
		{"100%", `"100\%"`},
		{`say "hi"`, `"say \"hi\""`},
		{"it's", `"it\'s"`},
		{`a\b`, `"a\\b"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := quote(tt.in); got != tt.want {
				t.Errorf("quote(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
