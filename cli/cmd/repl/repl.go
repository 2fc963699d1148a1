package repl

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/blockconf/conf"
	"github.com/ardnew/blockconf/log"
)

const (
	prompt        = "➜ "
	commandPrefix = ":"
	defaultWidth  = 80
)

const helpText = `
Commands:

  :help        Print this cruft
  :vars        List variables
  :builtins    List builtin functions
  :load FILE   Interpret a configuration file
  :clear       Clear screen
  :quit        Exit REPL

Usage:
  Type text to expand it as a configuration line would be
  Use %put(name value) and %get(name) to set and read variables
  Completions appear automatically after %, $, or :
  Press Tab / Shift-Tab to cycle through candidates
  Press Space or Enter to accept the current candidate, Esc to undo it
  Use Up/Down arrows for history navigation
  Press Ctrl+C on empty line or Ctrl+D to exit
`

var (
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
)

// Run starts the REPL on s, persisting history in cacheDir.
func Run(
	ctx context.Context,
	s Session,
	cacheDir string,
	logger log.Logger,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if s.Engine == nil || s.Diagnostics == nil {
		return ErrNoEngine
	}

	history := NewHistory(filepath.Join(cacheDir, baseHistory))
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "could not load history", slog.Any("error", err))
	}

	logger.TraceContext(ctx, "repl start",
		slog.String("history", history.path),
		slog.Int("entries", history.Len()),
	)

	_, err = tea.NewProgram(newModel(ctx, s, history, logger),
		tea.WithContext(ctx)).Run()

	return err
}

// model is the Bubble Tea model for the REPL.
type model struct {
	ctx     func() context.Context
	input   textinput.Model
	session Session
	logger  log.Logger
	history *History
	recall  int // history index shown in the input, History.Len() for none
	comp    completion
	width   int
	done    bool
}

func newModel(
	ctx context.Context,
	s Session,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(prompt)
	ti.CharLimit = conf.DefaultBufferSize
	ti.Width = defaultWidth
	ti.Focus()

	return model{
		ctx:     func() context.Context { return ctx },
		input:   ti,
		session: s,
		logger:  logger,
		history: history,
		recall:  history.Len(),
		comp:    completion{selected: -1},
		width:   defaultWidth,
	}
}

func (m model) Init() tea.Cmd { return textinput.Blink }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.key(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(prompt) - 2

		return m, nil
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.done {
		return ""
	}

	var hint string

	switch {
	case m.recall < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.recall+1)),
			m.history.Len()))

	case strings.TrimSpace(m.input.Value()) == "":
		hint = hintStyle.Render("Type text to expand or :help for commands")

	default:
		hint = m.comp.bar(m.width)
	}

	return m.input.View() + "\n" + hint + "\n"
}

// refresh recomputes completion candidates for the current input.
func (m *model) refresh(settle bool) {
	m.comp.update(m.session.Engine, m.input.Value(), m.input.Position(), settle)
}

// edit passes msg to the text input and leaves history recall.
func (m model) edit(msg tea.KeyMsg, settle bool) (model, tea.Cmd) {
	var cmd tea.Cmd

	m.recall = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	m.refresh(settle)

	return m, cmd
}

func (m model) key(msg tea.KeyMsg) (model, tea.Cmd) {
	m.logger.TraceContext(m.ctx(), "repl key", slog.String("key", msg.String()))

	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.done = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.recall = m.history.Len()
		m.comp.clear()

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() != "" {
			return m, nil
		}

		m.done = true

		return m, tea.Quit

	case tea.KeyEnter:
		if m.comp.cycling && len(m.comp.matches) > 0 {
			m.comp.cycling = false
			m.refresh(true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recallEntry(m.recall - 1), nil

	case tea.KeyDown:
		return m.recallEntry(m.recall + 1), nil

	case tea.KeyEsc:
		if m.comp.cycling {
			m.comp.cycling = false
			m.input.SetValue(m.comp.saved)
			m.input.SetCursor(m.comp.savedPos)
			m.refresh(false)
		}

		return m, nil

	case tea.KeySpace:
		m.comp.cycling = false

		return m.edit(msg, true)

	case tea.KeyRunes:
		return m.edit(msg, true)
	}

	m.comp.cycling = false

	return m.edit(msg, false)
}

// cycle inserts the candidate step places from the selected one. A lone
// candidate is inserted and completion ends.
func (m model) cycle(step int) model {
	if len(m.comp.matches) == 1 {
		m.insert(m.comp.matches[0].Str)
		m.comp.clear()

		return m
	}

	if s := m.comp.next(m.input.Value(), m.input.Position(), step); s != "" {
		m.insert(s)
	}

	return m
}

func (m *model) insert(s string) {
	value, pos := m.comp.splice(m.input.Value(), s)
	m.input.SetValue(value)
	m.input.SetCursor(pos)
}

// recallEntry shows history entry idx. Moving past the newest entry clears
// the input.
func (m model) recallEntry(idx int) model {
	if idx < 0 {
		return m
	}

	m.comp.cycling = false

	line, err := m.history.Entry(idx)
	if err != nil {
		line, idx = "", m.history.Len()
	}

	m.recall = idx
	m.input.SetValue(line)
	m.input.SetCursor(len(line))
	m.refresh(false)

	return m
}

func (m model) submit() (model, tea.Cmd) {
	input := strings.TrimSpace(m.input.Value())
	if input == "" {
		return m, nil
	}

	m.input.SetValue("")
	m.comp.clear()

	if _, err := m.history.Add(input); err != nil {
		m.logger.DebugContext(m.ctx(), "could not save history", slog.Any("error", err))
	}

	m.recall = m.history.Len()

	echo := tea.Println(promptStyle.Render(prompt) + inputStyle.Render(input))

	if cmd, ok := strings.CutPrefix(input, commandPrefix); ok {
		return m.command(echo, strings.TrimSpace(cmd))
	}

	return m, tea.Sequence(echo, tea.Println(m.session.expand(m.ctx(), input)))
}

func (m model) command(echo tea.Cmd, input string) (model, tea.Cmd) {
	name, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	m.logger.TraceContext(m.ctx(), "repl command",
		slog.String("command", name),
		slog.String("args", args),
	)

	var out string

	switch name {
	case "q", "quit", "exit":
		m.done = true

		return m, tea.Sequence(echo, tea.Quit)

	case "c", "clear":
		return m, tea.ClearScreen

	case "h", "help":
		out = helpText

	case "v", "vars":
		out = m.session.vars()

	case "b", "builtins":
		out = m.session.builtins()

	case "l", "load":
		out = m.session.load(m.ctx(), args)

	default:
		out = errorStyle.Render("Unknown command: " + name + " (try :help)")
	}

	return m, tea.Sequence(echo, tea.Println(out))
}
