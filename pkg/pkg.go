//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the blockconf module embedded at build
// time. It is also the version written into generated configuration headers
// and compared against the header of every file the CLI opens.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, default config paths, and the magic
	// header "<blockconf-VERSION>" of the CLI's own configuration file.
	Name = "blockconf"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Block-structured configuration interpreter"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
