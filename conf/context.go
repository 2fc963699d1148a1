package conf

//go:generate go tool stringer --linecomment --type Event --output event_string.go

import (
	"context"
	"log/slog"
	"strings"
)

// Event tells a [Handler] why it is being called.
type Event int

const (
	EventLine  Event = iota // line
	EventBegin              // begin
	EventEnd                // end
)

// NullContext is the name of the context that is active outside any block.
const NullContext = "null"

// Handler interprets the lines of one kind of block.
//
// Handle is called with [EventBegin] and a nil state when the block opens,
// with [EventLine] and the expanded text of each body line, and with
// [EventEnd] when the block closes. The returned value becomes the state
// passed to the next call for the same block; the value returned for
// [EventEnd] is discarded.
type Handler interface {
	Handle(ctx context.Context, ev Event, line string, state any) any
}

// HandlerFunc adapts a function to the [Handler] interface.
type HandlerFunc func(ctx context.Context, ev Event, line string, state any) any

// Handle calls f(ctx, ev, line, state).
func (f HandlerFunc) Handle(ctx context.Context, ev Event, line string, state any) any {
	return f(ctx, ev, line, state)
}

type contextDesc struct {
	handler Handler
	name    string
}

type contextFrame struct {
	state any
	id    int
}

// RegisterContext associates name with h and returns the context id.
//
// Registering [NullContext] replaces the handler of id 0. Registering a name
// that already exists replaces its handler and keeps its id. Names are
// matched without regard to case.
func (e *Engine) RegisterContext(name string, h Handler) int {
	if id, ok := e.ContextID(name); ok {
		e.contexts[id].handler = h

		return id
	}

	e.contexts = append(e.contexts, contextDesc{name: name, handler: h})

	return len(e.contexts) - 1
}

// ContextID returns the id registered for name.
func (e *Engine) ContextID(name string) (int, bool) {
	for id, c := range e.contexts {
		if strings.EqualFold(c.name, name) {
			return id, true
		}
	}

	return 0, false
}

// ContextName returns the name registered for id, or "" if there is none.
func (e *Engine) ContextName(id int) string {
	if id < 0 || id >= len(e.contexts) {
		return ""
	}

	return e.contexts[id].name
}

// PeekID returns the id of the innermost open block, or 0 outside any block.
func (e *Engine) PeekID() int { return e.stack[len(e.stack)-1].id }

// Depth returns the number of open blocks.
func (e *Engine) Depth() int { return len(e.stack) - 1 }

// begin opens a block of the named context. An unknown name is reported and
// puts f into skip mode until the matching end.
func (e *Engine) begin(ctx context.Context, f *fileFrame, name string) bool {
	id, ok := e.ContextID(name)
	if !ok {
		e.Report(ctx, SeverityError,
			ErrUnknownContext.With(slog.String("context", name)))

		if f != nil {
			f.skip = 1
		}

		return false
	}

	e.opts.logger.TraceContext(ctx, "begin",
		slog.String("context", e.contexts[id].name),
		slog.Int("depth", e.Depth()+1))

	e.stack = append(e.stack, contextFrame{id: id})
	top := len(e.stack) - 1
	e.stack[top].state = e.contexts[id].handler.Handle(ctx, EventBegin, "", nil)

	return true
}

// end closes the innermost open block.
func (e *Engine) end(ctx context.Context) {
	top := len(e.stack) - 1
	if top == 0 {
		e.Report(ctx, SeverityError, ErrUnmatchedEnd)

		return
	}

	fr := e.stack[top]

	e.opts.logger.TraceContext(ctx, "end",
		slog.String("context", e.contexts[fr.id].name),
		slog.Int("depth", top))

	e.contexts[fr.id].handler.Handle(ctx, EventEnd, "", fr.state)
	e.stack = e.stack[:top]
}

// endTo closes blocks until depth open blocks remain.
func (e *Engine) endTo(ctx context.Context, depth int) {
	for e.Depth() > depth {
		e.end(ctx)
	}
}

// dispatch passes an expanded line to the innermost open block.
func (e *Engine) dispatch(ctx context.Context, line string) {
	top := len(e.stack) - 1
	fr := e.stack[top]

	e.stack[top].state = e.contexts[fr.id].handler.Handle(ctx, EventLine, line, fr.state)
}

// handleNull rejects every body line outside a block.
func (e *Engine) handleNull(ctx context.Context, ev Event, line string, state any) any {
	if ev == EventLine {
		e.Report(ctx, SeverityError, ErrNotAllowed.With(slog.String("line", line)))
	}

	return state
}
