package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
	"github.com/ardnew/blockconf/pkg"
)

// Parse interprets a configuration file and prints the blocks it contains.
type Parse struct {
	Format  string   `default:"text" enum:"text,json,yaml"                 help:"Output format."                            short:"f"`
	Indent  int      `default:"2"                                          help:"Indent width for formatted output"         short:"i"`
	Context []string `help:"Record the lines of blocks named NAME (repeatable)" placeholder:"NAME"                          required:"" short:"c"`
	Dir     string   `help:"Locate FILE relative to DIR before the search path" short:"d"                                    type:"path"`

	File string `arg:"" help:"Configuration file to parse" name:"file"`
}

// Entry is either a "key value" body line or a nested block.
type Entry struct {
	Key   string `json:"key,omitempty"   yaml:"key,omitempty"`
	Value string `json:"value,omitempty" yaml:"value,omitempty"`
	Block *Block `json:"block,omitempty" yaml:"block,omitempty"`
}

// Block is one begin/end block and everything recorded within it.
type Block struct {
	Context string  `json:"context"           yaml:"context"`
	File    string  `json:"file"              yaml:"file"`
	Line    int     `json:"line"              yaml:"line"`
	Entries []Entry `json:"entries,omitempty" yaml:"entries,omitempty"`
}

// treeRecorder is a [conf.Handler] that builds a tree of every block it
// handles.
type treeRecorder struct {
	engine *conf.Engine
	root   Block
	open   []*Block
}

func (r *treeRecorder) current() *Block {
	if n := len(r.open); n > 0 {
		return r.open[n-1]
	}

	return &r.root
}

func (r *treeRecorder) Handle(_ context.Context, ev conf.Event, line string, state any) any {
	switch ev {
	case conf.EventBegin:
		b := &Block{
			Context: r.engine.ContextName(r.engine.PeekID()),
			File:    r.engine.File(),
			Line:    r.engine.Line(),
		}

		parent := r.current()
		parent.Entries = append(parent.Entries, Entry{Block: b})
		r.open = append(r.open, b)

		return b

	case conf.EventEnd:
		if n := len(r.open); n > 0 {
			r.open = r.open[:n-1]
		}

		return nil
	}

	b, ok := state.(*Block)
	if !ok {
		b = r.current()
	}

	key := conf.Word(1, line)
	if key == "" {
		return b
	}

	b.Entries = append(b.Entries, Entry{
		Key:   key,
		Value: strings.TrimSpace(conf.PWord(2, line)),
	})

	return b
}

// Run executes the parse command.
func (p *Parse) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	return p.run(ctx, os.Stdout)
}

func (p *Parse) run(ctx context.Context, w io.Writer) error {
	var diag conf.Collector

	engine, err := newEngine(ctx, logged(&diag))
	if err != nil {
		return err
	}
	defer engine.Close()

	rec := &treeRecorder{engine: engine}
	for _, name := range p.Context {
		engine.RegisterContext(name, rec)
	}

	dir, err := engine.Parse(ctx, p.File, p.Dir, settingsFrom(ctx).Path)
	if err != nil {
		return ErrParse.With(slog.String("file", p.File)).Wrap(err)
	}

	log.DebugContext(ctx, "parsed configuration",
		slog.String("file", p.File),
		slog.String("dir", dir),
		slog.Int("blocks", len(rec.root.Entries)),
		slog.Int("warnings", diag.Count(conf.SeverityWarning)),
		slog.Int("errors", diag.Count(conf.SeverityError)),
	)

	err = p.write(ctx, w, rec.root.Entries)
	if err != nil {
		return err
	}

	if err := diag.Err(); err != nil {
		return pkg.ErrConfig.Wrap(err)
	}

	return nil
}

func (p *Parse) write(ctx context.Context, w io.Writer, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}

	switch p.Format {
	case "json":
		var (
			data []byte
			err  error
		)

		if p.Indent > 0 {
			data, err = json.MarshalIndent(entries, "", strings.Repeat(" ", p.Indent))
		} else {
			data, err = json.Marshal(entries)
		}

		if err != nil {
			return pkg.ErrJSONMarshal.Wrap(err)
		}

		_, err = fmt.Fprintln(w, string(data))

		return err

	case "yaml":
		var opts []yaml.EncodeOption
		if p.Indent > 0 {
			opts = append(opts, yaml.Indent(p.Indent))
		}

		data, err := yaml.MarshalContext(ctx, entries, opts...)
		if err != nil {
			return pkg.ErrYAMLMarshal.Wrap(err)
		}

		_, err = w.Write(data)

		return err

	case "text", "":
		return writeText(w, entries, 0, p.Indent)
	}

	return pkg.ErrInvalidFormat.Wrapf("%q (want text, json, or yaml)", p.Format)
}

// writeText writes entries in the configuration language, one line per
// entry, with nested blocks indented by indent spaces per level.
func writeText(w io.Writer, entries []Entry, depth, indent int) error {
	pad := strings.Repeat(" ", depth*max(indent, 0))

	for _, ent := range entries {
		var err error

		switch {
		case ent.Block != nil:
			if _, err = fmt.Fprintf(w, "%sbegin %s\n", pad, ent.Block.Context); err != nil {
				return err
			}

			if err = writeText(w, ent.Block.Entries, depth+1, indent); err != nil {
				return err
			}

			_, err = fmt.Fprintf(w, "%send\n", pad)

		case ent.Value == "":
			_, err = fmt.Fprintf(w, "%s%s\n", pad, ent.Key)

		default:
			_, err = fmt.Fprintf(w, "%s%s %s\n", pad, ent.Key, ent.Value)
		}

		if err != nil {
			return err
		}
	}

	return nil
}
