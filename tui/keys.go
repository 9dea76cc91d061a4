package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/mazecaves/config"
	"github.com/nathoo/mazecaves/types"
)

// keyMap binds key presses to engine inputs.
type keyMap struct {
	Left, Up, Right, Down, Action key.Binding
	Command                       key.Binding
	Quit                          key.Binding
}

// newKeyMap builds bindings from configured key names. Names longer than
// one character that are not terminal key names never match and are
// harmless; "space" is spelled out in settings files.
func newKeyMap(k config.Keys) keyMap {
	bind := func(names []string, help string) key.Binding {
		keys := make([]string, 0, len(names))
		for _, n := range names {
			n = strings.ToLower(n)
			if n == "space" {
				n = " "
			}
			keys = append(keys, n)
		}
		return key.NewBinding(key.WithKeys(keys...), key.WithHelp(strings.Join(names, "/"), help))
	}
	return keyMap{
		Left:    bind(k.Left, "left"),
		Up:      bind(k.Up, "up"),
		Right:   bind(k.Right, "right"),
		Down:    bind(k.Down, "down"),
		Action:  bind(k.Action, "use"),
		Command: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "command")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// input maps a key press to an engine input.
func (k keyMap) input(msg tea.KeyMsg) (types.Input, bool) {
	switch {
	case key.Matches(msg, k.Left):
		return types.InputLeft, true
	case key.Matches(msg, k.Up):
		return types.InputUp, true
	case key.Matches(msg, k.Right):
		return types.InputRight, true
	case key.Matches(msg, k.Down):
		return types.InputDown, true
	case key.Matches(msg, k.Action):
		return types.InputAction, true
	}
	return types.InputNone, false
}

// viewportKeyMap scrolls the message log with page keys only; the arrows
// move the player.
func viewportKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		Up:           key.NewBinding(key.WithDisabled()),
		Down:         key.NewBinding(key.WithDisabled()),
	}
}
