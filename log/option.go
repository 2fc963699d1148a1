package log

import "io"

// Option modifies the configuration of a [Logger] under construction.
type Option func(*config)

// WithOutput sets the writer that receives log messages. A nil writer
// discards them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of messages that are written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the output format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. It accepts a layout name such as
// "RFC3339", "kitchen", or "ms", or a literal layout for [time.Time.Format].
// A blank layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	f := layoutFunc(layout)

	return func(c *config) { c.formatTime = f }
}

// WithCaller controls whether the source position of the logging call is
// included.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty controls ANSI colorized output. Pretty text drops quoting and
// pretty JSON is indented across lines.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}
