package profile

import (
	"path/filepath"
	"testing"
)

func TestSettingsPath(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want string
	}{
		{"no label", Settings{Dir: "/tmp/prof"}, "/tmp/prof"},
		{"label", Settings{Dir: "/tmp/prof", Label: "parse"}, filepath.Join("/tmp/prof", "parse")},
		{"spaced label", Settings{Dir: "/tmp/prof", Label: "repl  load"}, filepath.Join("/tmp/prof", "repl-load")},
		{"no dir", Settings{Label: "parse"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.s.Path(); got != tt.want {
				t.Errorf("Path() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStartDisabled(t *testing.T) {
	p := Settings{Dir: t.TempDir()}.Start()
	if _, ok := p.(ignore); !ok {
		t.Errorf("Start() with empty mode = %T", p)
	}

	p.Stop()
}
