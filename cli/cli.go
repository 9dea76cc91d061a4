// Package cli provides the line-oriented front end: it prints room grids
// and messages, reads typed commands, and dispatches meta commands.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gookit/color"
	"github.com/nathoo/mazecaves/engine"
	"github.com/nathoo/mazecaves/engine/events"
	"github.com/nathoo/mazecaves/engine/parser"
	"github.com/nathoo/mazecaves/engine/save"
	"github.com/nathoo/mazecaves/types"
)

var (
	styleMessage = color.Style{color.FgCyan}
	styleNotice  = color.Style{color.FgYellow, color.OpBold}
	styleEnding  = color.Style{color.FgGreen, color.OpBold}
	styleSystem  = color.Style{color.FgGray}
)

// Opener builds an unstarted engine for a level path, reporting to obs.
type Opener func(levelPath string, obs events.Observer) (*engine.Engine, error)

// CLI handles terminal interaction with the player. It is the engine's
// observer.
type CLI struct {
	Engine    *engine.Engine
	Open      Opener
	Bindings  parser.Bindings
	In        io.Reader
	Out       io.Writer
	SaveDir   string
	Color     bool
	ShowDebug bool
	EchoInput bool // echo each input line after the prompt (for script playback)

	lastCmd string // for "again"/"g" repeat
	grid    []string
	snap    events.Snapshot
	scanner *bufio.Scanner
}

var _ events.Observer = (*CLI)(nil)

// New creates a CLI on stdin and stdout. Set Engine before Run.
func New(bindings parser.Bindings, saveDir string) *CLI {
	return &CLI{
		Bindings: bindings,
		In:       os.Stdin,
		Out:      os.Stdout,
		SaveDir:  saveDir,
	}
}

// Run starts the game, restoring from restore when non-nil, then loops:
// prompt, input, dispatch, output. It returns when the game ends, the
// player quits, or input runs out.
func (c *CLI) Run(restore *save.Data) error {
	if err := c.Engine.Start(restore); err != nil {
		if errors.Is(err, types.ErrDeclined) {
			c.printSystem("Goodbye.")
		}
		return err
	}
	c.showGrid()

	for c.Engine.Running() {
		c.print("> ")
		line, ok := c.readLine()
		if !ok {
			return nil
		}
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if c.EchoInput {
			c.printLine(line)
		}

		if cmd, arg, ok := parser.Meta(line); ok {
			quit, err := c.handleMeta(cmd, arg)
			if quit || err != nil {
				return err
			}
			continue
		}

		lower := strings.ToLower(line)
		if lower == "again" || lower == "g" {
			if c.lastCmd == "" {
				c.printSystem("Nothing to repeat.")
				continue
			}
			line = c.lastCmd
		} else {
			c.lastCmd = line
		}

		if err := c.play(line); err != nil {
			return err
		}
	}
	return nil
}

// play feeds one command line to the engine and shows the result.
func (c *CLI) play(line string) error {
	inputs, err := c.Bindings.Parse(line)
	if err != nil {
		c.printSystem(fmt.Sprintf("I don't understand: %v. Type /help for commands.", err))
		return nil
	}
	for _, in := range inputs {
		if err := c.Engine.Step(in); err != nil {
			if errors.Is(err, types.ErrGameOver) {
				return nil
			}
			c.printSystem(fmt.Sprintf("Error: %v", err))
			return err
		}
		if !c.Engine.Running() {
			return nil
		}
	}
	c.showGrid()
	return nil
}

func (c *CLI) readLine() (string, bool) {
	if c.scanner == nil {
		c.scanner = bufio.NewScanner(c.In)
	}
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

// handleMeta dispatches meta commands. Returns true if the game should exit.
func (c *CLI) handleMeta(cmd, arg string) (bool, error) {
	switch cmd {
	case "/quit", "/exit":
		c.printSystem("Goodbye.")
		return true, nil

	case "/save":
		c.cmdSave(arg)

	case "/load":
		return false, c.cmdLoad(arg)

	case "/info":
		c.cmdInfo()

	case "/map":
		for _, line := range c.Engine.Snapshot().Map {
			c.printLine(line)
		}

	case "/debug":
		c.ShowDebug = !c.ShowDebug
		if c.ShowDebug {
			c.printSystem("Debug view enabled.")
			c.printDebug(c.Engine.Snapshot())
		} else {
			c.printSystem("Debug view disabled.")
		}

	case "/help":
		c.cmdHelp()

	default:
		c.printSystem(fmt.Sprintf("Unknown command: %s. Type /help for available commands.", cmd))
	}
	return false, nil
}

func (c *CLI) savePath(name string) string {
	if name == "" {
		name = "quicksave"
	}
	if !strings.HasSuffix(name, save.Ext) {
		name += save.Ext
	}
	return filepath.Join(c.SaveDir, name)
}

func (c *CLI) cmdSave(name string) {
	path, err := c.Engine.Save(c.savePath(name))
	if err != nil {
		c.printSystem(fmt.Sprintf("Save failed: %v", err))
		return
	}
	c.printSystem(fmt.Sprintf("Game saved to %s.", path))
}

// cmdLoad restores a save. A save of another level opens that level. Only
// a failure to start the restored game is returned.
func (c *CLI) cmdLoad(name string) error {
	path := c.savePath(name)
	d, err := save.Read(path)
	if err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		return nil
	}

	eng := c.Engine
	if c.Open != nil {
		if eng, err = c.Open(d.LevelPath, c); err != nil {
			c.printSystem(fmt.Sprintf("Load failed: %v", err))
			return nil
		}
	}
	if err := eng.Start(d); err != nil {
		c.printSystem(fmt.Sprintf("Load failed: %v", err))
		if eng == c.Engine {
			return err
		}
		return nil
	}
	c.Engine = eng
	c.printSystem(fmt.Sprintf("Game loaded from %s.", path))
	c.showGrid()
	return nil
}

func (c *CLI) cmdInfo() {
	title, desc := c.Engine.Info()
	c.printLine(title)
	if desc != "" {
		c.printLine(desc)
	}
}

func (c *CLI) cmdHelp() {
	help := []string{
		"System:",
		"  /save [name]  - Save game (default: quicksave)",
		"  /load [name]  - Load game (default: quicksave)",
		"  /info         - Show the level title and description",
		"  /map          - Show the floor map",
		"  /debug        - Toggle the position readout",
		"  /quit         - Exit game",
		"  /help         - Show this help",
		"",
		"Game commands:",
		"  left/right/up/down  - Move one tile (or a, d, w, s)",
		"  use (e)             - Press the button under you",
		"  right 5             - Repeat a command",
		"  wwd                 - Run several letter commands",
		"  again (g)           - Repeat your last command",
	}
	for _, line := range help {
		c.printLine(line)
	}
}

// DisplayChanged records the grid; it is printed once per command.
func (c *CLI) DisplayChanged(grid []string) {
	c.grid = grid
}

// Message prints a level message.
func (c *CLI) Message(text string) {
	c.printLine(c.paint(styleMessage, text))
}

// Notice prints a transient notice.
func (c *CLI) Notice(text string) {
	c.printLine(c.paint(styleNotice, "* "+text))
}

// Confirm asks a yes/no question on the input stream.
func (c *CLI) Confirm(prompt string) bool {
	c.print(prompt + " [y/n] ")
	line, ok := c.readLine()
	if !ok {
		return false
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true
	}
	return false
}

// GameEnded prints the level's closing message.
func (c *CLI) GameEnded(text string) {
	c.showGrid()
	if text != "" {
		c.printLine(c.paint(styleEnding, text))
	}
	c.printSystem("The End.")
}

// Debug records the latest snapshot for the debug view.
func (c *CLI) Debug(snap events.Snapshot) {
	c.snap = snap
}

func (c *CLI) showGrid() {
	for _, line := range c.grid {
		c.printLine(line)
	}
	if c.ShowDebug {
		c.printDebug(c.snap)
	}
}

func (c *CLI) printDebug(snap events.Snapshot) {
	c.printSystem(engine.DebugLine(snap))
	if snap.Object != "" {
		c.printSystem(snap.Object)
	}
}

func (c *CLI) paint(style color.Style, text string) string {
	if !c.Color {
		return text
	}
	return style.Sprint(text)
}

func (c *CLI) printLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *CLI) print(text string) {
	fmt.Fprint(c.Out, text)
}

func (c *CLI) printSystem(text string) {
	fmt.Fprintln(c.Out, c.paint(styleSystem, "["+text+"]"))
}
