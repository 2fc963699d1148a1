package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/blockconf/conf"
)

// commands are the REPL command names completed after ':'.
var commands = []string{"help", "vars", "builtins", "load", "clear", "quit"}

// isWordBoundary returns true if the rune is a word delimiter for completion
// purposes. The sigils '%', '$', and ':' begin a word and are not
// boundaries; '-' and '.' appear in variable and eval names.
func isWordBoundary(r rune) bool {
	switch r {
	case ' ', '\t',
		'(', ')', '{', '}', '[', ']',
		'"', '\'', '`', ',', '+', '*', '/',
		'<', '>', '=', '!', '&', '|', '?', ';':
		return true
	}

	return false
}

// wordBounds returns the current word at the cursor position and its byte
// boundaries within input.
// Returns an empty word when the cursor sits on a boundary.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if isWordBoundary(r) {
			break
		}

		start -= size
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if isWordBoundary(r) {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// candidates returns the completions for word, which begins at start in
// input. The sigil of the word selects the set:
//
//	%name   builtin functions
//	$name   variables
//	:name   REPL commands, only at the start of input
//
// Within the argument of %eval, bare words complete to eval helper names.
func candidates(e *conf.Engine, input, word string, start int) []string {
	switch {
	case strings.HasPrefix(word, "%"):
		return prefixed("%", e.Builtins())

	case strings.HasPrefix(word, "$"):
		return prefixed("$", e.Vars().Names())

	case strings.HasPrefix(word, commandPrefix):
		if strings.TrimSpace(input[:start]) != "" {
			return nil
		}

		return prefixed(commandPrefix, commands)

	case word != "" && inEval(input[:start]):
		return append(conf.EvalKeys(), e.Vars().Names()...)
	}

	return nil
}

// inEval reports whether the text before a word ends inside the argument
// list of an %eval call.
func inEval(before string) bool {
	i := strings.LastIndex(before, "%eval(")
	if i < 0 {
		return false
	}

	depth := 0

	for _, r := range before[i+len("%eval"):] {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
	}

	return depth > 0
}

func prefixed(prefix string, names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = prefix + name
	}

	return out
}

// computeMatches calculates the fuzzy match results for the word at the
// cursor, ranked best-first, and the word boundaries. A bare sigil matches
// every candidate of its set.
func computeMatches(e *conf.Engine, input string, cursor int) (
	matches fuzzy.Matches,
	start, end int,
) {
	word, start, end := wordBounds(input, cursor)
	if word == "" || e == nil {
		return nil, start, end
	}

	cands := candidates(e, input, word, start)
	if len(cands) == 0 {
		return nil, start, end
	}

	if len(word) == 1 && strings.ContainsAny(word, "%$"+commandPrefix) {
		matches = make(fuzzy.Matches, len(cands))
		for i, c := range cands {
			matches[i] = fuzzy.Match{Str: c, Index: i}
		}

		return matches, start, end
	}

	return fuzzy.Find(word, cands), start, end
}

// completion holds the candidates for the word under the cursor and the
// state of Tab cycling through them.
type completion struct {
	matches  fuzzy.Matches
	start    int // byte offset of the word
	end      int
	selected int // index of the inserted candidate while cycling
	cycling  bool

	// input and cursor before cycling began, restored by Esc
	saved    string
	savedPos int
}

// update recomputes the candidates for input with the cursor at pos. With
// settle set, a word that already equals its only candidate is considered
// complete and the candidates are dropped.
func (c *completion) update(e *conf.Engine, input string, pos int, settle bool) {
	c.matches, c.start, c.end = computeMatches(e, input, pos)

	if !c.cycling {
		c.selected = -1
	}

	if settle && len(c.matches) == 1 && input[c.start:c.end] == c.matches[0].Str {
		c.clear()
	}
}

// clear drops the candidates and stops cycling.
func (c *completion) clear() {
	c.matches = nil
	c.selected = -1
	c.cycling = false
}

// next selects the candidate step places from the current one, beginning a
// cycle at the first (or last, for a negative step) candidate. It reports the
// selected string, or "" when there is nothing to select.
func (c *completion) next(input string, pos, step int) string {
	n := len(c.matches)
	if n == 0 {
		return ""
	}

	if c.cycling {
		c.selected = (c.selected + step + n) % n

		return c.matches[c.selected].Str
	}

	c.cycling = true
	c.saved, c.savedPos = input, pos

	c.selected = 0
	if step < 0 {
		c.selected = n - 1
	}

	return c.matches[c.selected].Str
}

// splice returns input with the completed word replaced by s and the cursor
// position following it. The word boundary moves to the new cursor.
func (c *completion) splice(input, s string) (string, int) {
	pos := c.start + len(s)
	out := input[:c.start] + s + input[c.end:]
	c.end = pos

	return out, pos
}

// bar renders the candidates on one line ellipsized to width, with the
// matched characters of each highlighted and the selected one inverted.
func (c completion) bar(width int) string {
	if len(c.matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range c.matches {
		rendered := renderCandidate(match, c.cycling && i == c.selected)

		w := lipgloss.Width(rendered)
		if i > 0 {
			w += sepWidth
		}

		if i > 0 && i < len(c.matches)-1 && used+w+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += w
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted. Builtins are displayed with a "()" suffix.
func renderCandidate(match fuzzy.Match, selected bool) string {
	base, highlight := suggestionStyle, matchStyle
	if selected {
		base, highlight = selectedStyle, selectedMatchStyle
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, i := range match.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	if strings.HasPrefix(match.Str, "%") {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
