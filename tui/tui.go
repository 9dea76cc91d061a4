package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/mazecaves/config"
	"github.com/nathoo/mazecaves/engine"
	"github.com/nathoo/mazecaves/engine/events"
	"github.com/nathoo/mazecaves/engine/parser"
	"github.com/nathoo/mazecaves/engine/save"
	"github.com/nathoo/mazecaves/types"
)

// maxLog caps the message log.
const maxLog = 500

// Opener builds an unstarted engine for a level path, reporting to obs.
type Opener func(levelPath string, obs events.Observer) (*engine.Engine, error)

// Options configure the TUI.
type Options struct {
	Open    Opener
	Keys    config.Keys
	SaveDir string
	Debug   bool
}

// Model is the Bubble Tea model for the Maze Caves TUI.
type Model struct {
	engine  *engine.Engine
	open    Opener
	sink    *sink
	keys    keyMap
	restore *save.Data

	viewport viewport.Model
	input    textinput.Model
	history  *history
	log      []logLine

	width      int
	height     int
	ready      bool
	commanding bool
	debug      bool
	quitting   bool
	saveDir    string
	err        error // fatal engine error, returned by Run
}

// New opens the level, starts the game and returns the model. A level that
// needs a version confirmation starts once the player answers.
func New(levelPath string, restore *save.Data, opts Options) (Model, error) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.PromptStyle = styleInputPrompt

	m := Model{
		open:    opts.Open,
		sink:    &sink{},
		keys:    newKeyMap(opts.Keys),
		restore: restore,
		input:   ti,
		history: newHistory(100),
		debug:   opts.Debug,
		saveDir: opts.SaveDir,
	}
	eng, err := m.open(levelPath, m.sink)
	if err != nil {
		return m, err
	}
	m.engine = eng
	if err := m.begin(); err != nil {
		return m, err
	}
	return m, nil
}

// Run starts the Bubble Tea program.
func Run(levelPath string, restore *save.Data, opts Options) error {
	m, err := New(levelPath, restore, opts)
	if err != nil {
		return err
	}
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}
	if fm, ok := final.(Model); ok && fm.err != nil {
		return fm.err
	}
	return nil
}

// begin starts the engine. A refused version prompt is not an error: the
// model asks the player and calls begin again.
func (m *Model) begin() error {
	err := m.engine.Start(m.restore)
	m.collect()
	if errors.Is(err, types.ErrDeclined) && m.sink.pending != "" {
		return nil
	}
	return err
}

// Init needs no startup command: New already started the game.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages (key presses, window resize).
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(m.width, m.logHeight())
			m.viewport.KeyMap = viewportKeyMap()
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = m.logHeight()
		}
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		switch {
		case m.sink.pending != "":
			return m.handleConfirm(msg)
		case m.commanding:
			return m.handleCommandKey(msg)
		case m.err != nil:
			m.quitting = true
			return m, tea.Quit
		}

		switch msg.String() {
		case "pgup", "pgdown", "ctrl+u", "ctrl+d":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		if key.Matches(msg, m.keys.Command) {
			m.commanding = true
			m.input.SetValue("/")
			m.input.CursorEnd()
			cmd := m.input.Focus()
			return m, cmd
		}

		if !m.engine.Running() {
			if s := msg.String(); s == "q" || s == "esc" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		if in, ok := m.keys.input(msg); ok {
			m.step(in)
		}
	}
	return m, nil
}

func (m Model) handleConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch strings.ToLower(msg.String()) {
	case "y":
		m.sink.accept = true
		m.sink.pending = ""
		if err := m.begin(); err != nil {
			m.fail(err)
		}
	case "n", "esc":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleCommandKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		line := strings.TrimSpace(m.input.Value())
		m.closeCommand()
		if line == "" || line == "/" {
			return m, nil
		}
		m.history.add(line)
		return m.runMeta(line)

	case tea.KeyEsc:
		m.closeCommand()
		return m, nil

	case tea.KeyUp:
		if prev, ok := m.history.older(); ok {
			m.input.SetValue(prev)
			m.input.CursorEnd()
		}
		return m, nil

	case tea.KeyDown:
		next, ok := m.history.newer()
		if !ok {
			next = "/"
		}
		m.input.SetValue(next)
		m.input.CursorEnd()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) closeCommand() {
	m.commanding = false
	m.input.SetValue("")
	m.input.Blur()
	m.history.reset()
}

// step feeds one input to the engine and collects what it reported.
func (m *Model) step(in types.Input) {
	err := m.engine.Step(in)
	m.collect()
	if err != nil && !errors.Is(err, types.ErrGameOver) {
		m.fail(err)
	}
}

func (m *Model) fail(err error) {
	m.err = err
	m.say(kindError, fmt.Sprintf("Error: %v", err), "Press any key to exit.")
}

// collect moves queued observer output into the log.
func (m *Model) collect() {
	m.log = append(m.log, m.sink.drain()...)
	m.refreshViewport()
}

func (m *Model) say(kind lineKind, lines ...string) {
	for _, l := range lines {
		m.log = append(m.log, logLine{text: l, kind: kind})
	}
	m.refreshViewport()
}

// refreshViewport re-renders the log at the current width.
func (m *Model) refreshViewport() {
	if len(m.log) > maxLog {
		m.log = m.log[len(m.log)-maxLog:]
	}
	if !m.ready {
		return
	}
	wrap := lipgloss.NewStyle().Width(max(m.width, 10))
	styled := make([]string, len(m.log))
	for i, l := range m.log {
		styled[i] = wrap.Render(renderLine(l))
	}
	m.viewport.SetContent(strings.Join(styled, "\n"))
	m.viewport.GotoBottom()
}

// logHeight leaves room for the room frame, the status bar and the footer.
func (m Model) logHeight() int {
	return max(m.height-lipgloss.Height(m.roomView())-2, 1)
}

func (m Model) roomView() string {
	title := ""
	if m.engine != nil {
		title = m.engine.Level.Title
	}
	return renderRoom(title, m.sink.grid)
}

// View renders the full TUI layout: room, log, status bar and footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		m.roomView(),
		m.viewport.View(),
		m.renderStatusBar(),
		m.footer(),
	)
}

func (m Model) footer() string {
	switch {
	case m.sink.pending != "":
		return styleNotice.Render(strings.ReplaceAll(m.sink.pending, "\n", " ") + " [y/n]")
	case m.commanding:
		return m.input.View()
	case m.err != nil:
		return styleError.Render("Press any key to exit.")
	case !m.engine.Running():
		return styleHint.Render("q quit  / commands")
	}
	return styleHint.Render(fmt.Sprintf("%s %s %s %s move  %s use  / commands  ctrl+c quit",
		m.keys.Left.Help().Key, m.keys.Up.Help().Key, m.keys.Right.Help().Key, m.keys.Down.Help().Key,
		m.keys.Action.Help().Key))
}

// runMeta dispatches a meta command line.
func (m Model) runMeta(line string) (tea.Model, tea.Cmd) {
	m.say(kindInput, line)
	cmd, arg, ok := parser.Meta(line)
	if !ok {
		m.say(kindSystem, "Commands start with /. Type /help for available commands.")
		return m, nil
	}

	switch cmd {
	case "/quit", "/exit":
		m.quitting = true
		return m, tea.Quit
	case "/save":
		m.cmdSave(arg)
	case "/load":
		m.cmdLoad(arg)
	case "/info":
		title, desc := m.engine.Info()
		m.say(kindMessage, title)
		if desc != "" {
			m.say(kindMessage, desc)
		}
	case "/map":
		m.say(kindMessage, m.engine.Snapshot().Map...)
	case "/debug":
		m.debug = !m.debug
		if m.debug {
			snap := m.engine.Snapshot()
			m.say(kindSystem, "Debug view enabled.", engine.DebugLine(snap))
			if snap.Object != "" {
				m.say(kindSystem, snap.Object)
			}
		} else {
			m.say(kindSystem, "Debug view disabled.")
		}
	case "/help":
		m.say(kindMessage, helpLines()...)
	default:
		m.say(kindSystem, fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return m, nil
}

func (m *Model) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	if !strings.HasSuffix(name, save.Ext) {
		name += save.Ext
	}
	return filepath.Join(m.saveDir, name)
}

func (m *Model) cmdSave(name string) {
	path, err := m.engine.Save(m.savePath(name))
	if err != nil {
		m.say(kindSystem, fmt.Sprintf("Save failed: %v", err))
		return
	}
	m.say(kindSystem, fmt.Sprintf("Game saved to %s.", path))
}

// cmdLoad restores a save into a fresh engine for the save's level. The
// current game continues if that fails.
func (m *Model) cmdLoad(name string) {
	path := m.savePath(name)
	d, err := save.Read(path)
	if err != nil {
		m.say(kindSystem, fmt.Sprintf("Load failed: %v", err))
		return
	}
	eng, err := m.open(d.LevelPath, m.sink)
	if err != nil {
		m.say(kindSystem, fmt.Sprintf("Load failed: %v", err))
		return
	}

	prev, prevRestore, prevGrid := m.engine, m.restore, m.sink.grid
	m.engine, m.restore = eng, d
	if err := m.begin(); err != nil {
		m.engine, m.restore, m.sink.grid = prev, prevRestore, prevGrid
		m.say(kindSystem, fmt.Sprintf("Load failed: %v", err))
		return
	}
	m.say(kindSystem, fmt.Sprintf("Game loaded from %s.", path))
}

func helpLines() []string {
	return []string{
		"System:",
		"  /save [name]  - Save game (default: quicksave)",
		"  /load [name]  - Load game (default: quicksave)",
		"  /info         - Show the level title and description",
		"  /map          - Show the floor map",
		"  /debug        - Toggle the position readout",
		"  /quit         - Exit game",
		"  /help         - Show this help",
		"",
		"Play: move with the bound keys, press the action key on a button.",
		"Navigation: PgUp/PgDn to scroll, Up/Down for command history",
	}
}
