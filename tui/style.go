package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Styles used throughout the TUI.
var (
	styleStatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("252")).
			Bold(true)

	styleRoomFrame = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	styleRoomTitle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleInputPrompt = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleMessage = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	styleNotice = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	styleEnding = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	styleSystem = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	styleError = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	stylePlayerInput = lipgloss.NewStyle().
				Foreground(lipgloss.Color("34"))

	styleHint = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// lineKind identifies the type of a log line for styling.
type lineKind int

const (
	kindMessage lineKind = iota
	kindNotice
	kindEnding
	kindSystem
	kindError
	kindInput
)

func renderLine(l logLine) string {
	switch l.kind {
	case kindNotice:
		return styleNotice.Render("* " + l.text)
	case kindEnding:
		return styleEnding.Render(l.text)
	case kindSystem:
		return styleSystem.Render("[" + l.text + "]")
	case kindError:
		return styleError.Render(l.text)
	case kindInput:
		return stylePlayerInput.Render("> " + l.text)
	default:
		return styleMessage.Render(l.text)
	}
}

// gridWidth returns the display width of the widest grid row. Glyphs may
// be wide characters, so byte and rune counts are not enough.
func gridWidth(grid []string) int {
	w := 0
	for _, row := range grid {
		w = max(w, runewidth.StringWidth(row))
	}
	return w
}

// renderRoom draws the room grid in a frame, padding rows to equal width.
func renderRoom(title string, grid []string) string {
	w := gridWidth(grid)
	rows := make([]string, len(grid))
	for i, row := range grid {
		rows[i] = runewidth.FillRight(row, w)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if title != "" {
		body = lipgloss.JoinVertical(lipgloss.Left, styleRoomTitle.Render(runewidth.Truncate(title, w, "…")), body)
	}
	return styleRoomFrame.Render(body)
}
