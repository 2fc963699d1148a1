package conf

import "strings"

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}

	return false
}

func trimLeft(s string) string {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	return s[i:]
}

// scanWord returns the first word of s, which must not begin with
// whitespace, and the number of bytes it occupies. A word beginning with a
// quote runs to the matching quote; the quotes are removed and a backslash
// takes the following byte literally.
func scanWord(s string) (string, int) {
	if q := s[0]; q == '"' || q == '\'' {
		var b strings.Builder

		for i := 1; i < len(s); i++ {
			switch c := s[i]; {
			case c == '\\' && i+1 < len(s):
				i++
				b.WriteByte(s[i])
			case c == q:
				return b.String(), i + 1
			default:
				b.WriteByte(c)
			}
		}

		return b.String(), len(s)
	}

	n := 0
	for n < len(s) && !isSpace(s[n]) {
		n++
	}

	return s[:n], n
}

// Words splits s into whitespace-separated words. Quoted words may contain
// whitespace.
func Words(s string) []string {
	var words []string

	for rest := trimLeft(s); rest != ""; rest = trimLeft(rest) {
		w, n := scanWord(rest)
		words = append(words, w)
		rest = rest[n:]
	}

	return words
}

// NumWords returns the number of words in s.
func NumWords(s string) int {
	n := 0

	for rest := trimLeft(s); rest != ""; rest = trimLeft(rest) {
		_, k := scanWord(rest)
		rest = rest[k:]
		n++
	}

	return n
}

// Word returns the n-th word of s, counting from 1, or "" if there is none.
func Word(n int, s string) string {
	if n < 1 {
		return ""
	}

	rest := trimLeft(s)
	for ; rest != ""; rest = trimLeft(rest) {
		w, k := scanWord(rest)
		if n--; n == 0 {
			return w
		}

		rest = rest[k:]
	}

	return ""
}

// PWord returns s from the start of its n-th word to the end, unmodified,
// or "" if there is no such word.
func PWord(n int, s string) string {
	if n < 1 {
		return ""
	}

	rest := trimLeft(s)
	for ; rest != "" && n > 1; n-- {
		_, k := scanWord(rest)
		rest = trimLeft(rest[k:])
	}

	return rest
}
