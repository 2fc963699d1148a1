package conf

import (
	"context"
	"log/slog"
	"strings"
)

// Expansion is the result of [Engine.Expand].
type Expansion struct {
	Text string
	// Truncated is set when the text, or the expanded arguments of a builtin
	// call or backquoted command within it, reached the size limit.
	Truncated bool
}

// limitBuffer accumulates text up to max bytes and records overflow. full
// is set when the buffer itself overflowed; truncated is set when nested
// text copied into it had been cut short.
type limitBuffer struct {
	strings.Builder
	max       int
	full      bool
	truncated bool
}

// lost reports whether any text was dropped on the way into b.
func (b *limitBuffer) lost() bool { return b.full || b.truncated }

// absorb records that inner, whose text is about to be used by b, lost text.
func (b *limitBuffer) absorb(inner *limitBuffer) {
	b.truncated = b.truncated || inner.lost()
}

func (b *limitBuffer) add(s string) {
	if room := b.max - b.Len(); len(s) > room {
		b.Builder.WriteString(s[:max(room, 0)])
		b.full = true

		return
	}

	b.Builder.WriteString(s)
}

func (b *limitBuffer) addByte(c byte) {
	if b.Len() >= b.max {
		b.full = true

		return
	}

	_ = b.Builder.WriteByte(c)
}

// Expand rewrites s in a single left-to-right pass:
//
//   - ~ outside quotes is replaced by $HOME.
//   - \c is replaced by the control character for n, r, t, b, f, a, v, or e
//     (matched without regard to case), or by c itself. Inside single quotes
//     only \' is recognized.
//   - %name(args) calls the builtin name with args expanded first;
//     %name ) calls it with no arguments. Its result replaces the call.
//     A % that does not begin a builtin call is copied.
//   - `cmd` is replaced by the output of cmd when enabled with
//     [WithBackquote].
//   - $NAME, ${NAME}, and $(NAME) outside single quotes are replaced by the
//     value of the environment variable NAME.
//   - ' and " toggle quoting and are copied. " is ignored inside single
//     quotes.
//
// The result is limited to the buffer size less one byte. An error is
// returned for unbalanced parentheses in a builtin call or when nesting
// exceeds the configured depth; the text expanded so far is still returned.
func (e *Engine) Expand(ctx context.Context, s string) (Expansion, error) {
	out, err := e.expand(ctx, s, 0)

	return Expansion{Text: out.String(), Truncated: out.lost()}, err
}

func (e *Engine) expand(ctx context.Context, s string, depth int) (*limitBuffer, error) {
	out := &limitBuffer{max: e.opts.bufferSize - 1}

	if e.opts.maxDepth > 0 && depth > e.opts.maxDepth {
		return out, ErrMaxDepth.With(slog.Int("limit", e.opts.maxDepth))
	}

	var squote, dquote bool

	for i := 0; i < len(s) && !out.full; i++ {
		switch c := s[i]; {
		case c == '~' && !squote && !dquote:
			out.add(e.getenv("HOME"))

		case c == '\\' && i+1 < len(s) && (!squote || s[i+1] == '\''):
			i++
			out.addByte(unescape(s[i]))

		case c == '%':
			n, err := e.call(ctx, out, s[i:], depth)
			if err != nil {
				return out, err
			}

			if n == 0 {
				out.addByte(c)
			} else {
				i += n - 1
			}

		case c == '`':
			if !e.opts.backquote {
				e.Report(ctx, SeverityWarning, ErrBackquote)
				out.addByte(c)

				continue
			}

			if squote {
				out.addByte(c)

				continue
			}

			n, err := e.backquote(ctx, out, s[i:], depth)
			if err != nil {
				return out, err
			}

			i += n - 1

		case c == '$' && !squote:
			if n := e.variable(out, s[i:]); n == 0 {
				out.addByte(c)
			} else {
				i += n - 1
			}

		case c == '"':
			if !squote {
				dquote = !dquote
			}

			out.addByte(c)

		case c == '\'':
			squote = !squote
			out.addByte(c)

		default:
			out.addByte(c)
		}
	}

	return out, nil
}

func unescape(c byte) byte {
	switch c | 0x20 {
	case 'n':
		return '\n'
	case 'r':
		return '\r'
	case 't':
		return '\t'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'a':
		return '\a'
	case 'v':
		return '\v'
	case 'e':
		return 0x1b
	}

	return c
}

// call expands a builtin call at the start of s, which begins with '%',
// into out. It returns the length of the call, or 0 if s does not begin
// with a call to a registered builtin.
func (e *Engine) call(ctx context.Context, out *limitBuffer, s string, depth int) (int, error) {
	rest := s[1:]

	for _, b := range e.builtins {
		if len(rest) <= len(b.name) || !strings.EqualFold(rest[:len(b.name)], b.name) {
			continue
		}

		open := 1 + len(b.name)

		if strings.HasPrefix(s[open:], " )") {
			e.invoke(ctx, out, b, "")

			return open + 2, nil
		}

		if s[open] != '(' {
			continue
		}

		end := matchParen(s, open)
		if end < 0 {
			return 0, ErrUnbalanced.With(slog.String("builtin", b.name))
		}

		args, err := e.expand(ctx, s[open+1:end], depth+1)
		if err != nil {
			return 0, err
		}

		out.absorb(args)
		e.invoke(ctx, out, b, args.String())

		return end + 1, nil
	}

	return 0, nil
}

// matchParen returns the index of the parenthesis closing the one at
// s[open], or -1.
func matchParen(s string, open int) int {
	level := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			level++
		case ')':
			if level--; level == 0 {
				return i
			}
		}
	}

	return -1
}

func (e *Engine) invoke(ctx context.Context, out *limitBuffer, b builtin, args string) {
	e.opts.logger.TraceContext(ctx, "builtin",
		slog.String("builtin", b.name),
		slog.String("args", args))

	if text, ok := b.fn(ctx, e, args); ok {
		out.add(text)
	}
}

// backquote expands and runs the command between the backquote at the start
// of s and the next one, or the end of s, writing its output to out.
func (e *Engine) backquote(ctx context.Context, out *limitBuffer, s string, depth int) (int, error) {
	body, n := s[1:], len(s)
	if end := strings.IndexByte(body, '`'); end >= 0 {
		body, n = body[:end], end+2
	}

	cmd, err := e.expand(ctx, body, depth+1)
	if err != nil {
		return 0, err
	}

	out.absorb(cmd)

	if text, ok := e.exec(ctx, cmd.String()); ok {
		out.add(text)
	}

	return n, nil
}

// variable expands an environment variable reference at the start of s,
// which begins with '$', into out. It returns the length of the reference,
// or 0 if s does not begin with one.
func (e *Engine) variable(out *limitBuffer, s string) int {
	if len(s) < 2 {
		return 0
	}

	if c := s[1]; c == '{' || c == '(' {
		closer := byte('}')
		if c == '(' {
			closer = ')'
		}

		end := strings.IndexByte(s[2:], closer)
		if end < 0 {
			return 0
		}

		out.add(e.getenv(s[2 : 2+end]))

		return end + 3
	}

	n := 1
	for n < len(s) && isNameByte(s[n]) {
		n++
	}

	if n == 1 {
		return 0
	}

	out.add(e.getenv(s[1:n]))

	return n
}

func isNameByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
