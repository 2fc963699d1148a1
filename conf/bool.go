package conf

import "strings"

// IsTrue reports whether s is one of "1", "on", "true", or "yes",
// ignoring case and surrounding whitespace.
func IsTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "on", "true", "yes":
		return true
	}

	return false
}

// IsFalse reports whether s is one of "0", "off", "false", or "no",
// ignoring case and surrounding whitespace.
func IsFalse(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0", "off", "false", "no":
		return true
	}

	return false
}
