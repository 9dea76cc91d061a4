package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nathoo/mazecaves/engine"
)

// keysLabel lists held keys, or a count when they do not fit in room.
func keysLabel(keys []string, room int) string {
	if len(keys) == 0 {
		return "Keys: none"
	}
	full := "Keys: " + strings.Join(keys, ", ")
	if lipgloss.Width(full) <= room {
		return full
	}
	return fmt.Sprintf("Keys: %d", len(keys))
}

// renderStatusBar produces a full-width inverted status line showing the
// floor, the room, the held keys and either the tile or the debug line.
func (m Model) renderStatusBar() string {
	snap := m.engine.Snapshot()

	left := fmt.Sprintf(" Floor %d | Room %d,%d", snap.Floor, snap.RX, snap.RY)
	right := fmt.Sprintf("%d,%d ", snap.X, snap.Y)
	if m.debug {
		right = engine.DebugLine(snap) + " "
	}

	room := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 3
	left += " | " + keysLabel(snap.Keys, room)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
