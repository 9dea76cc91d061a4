// Package tui provides a Bubble Tea terminal UI for Maze Caves.
package tui

// history remembers typed meta commands for recall with the arrow keys
// while the command line is open.
type history struct {
	entries []string
	limit   int
	pos     int // len(entries) when not recalling
}

func newHistory(limit int) *history {
	return &history{limit: limit}
}

// add appends cmd unless it repeats the newest entry, and stops recalling.
func (h *history) add(cmd string) {
	if n := len(h.entries); n == 0 || h.entries[n-1] != cmd {
		h.entries = append(h.entries, cmd)
		if len(h.entries) > h.limit {
			h.entries = h.entries[len(h.entries)-h.limit:]
		}
	}
	h.pos = len(h.entries)
}

// older steps back one entry. It stays on the oldest entry.
func (h *history) older() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	if h.pos > 0 {
		h.pos--
	}
	return h.entries[h.pos], true
}

// newer steps forward one entry. Stepping past the newest returns false.
func (h *history) newer() (string, bool) {
	if h.pos >= len(h.entries)-1 {
		h.pos = len(h.entries)
		return "", false
	}
	h.pos++
	return h.entries[h.pos], true
}

// reset stops recalling.
func (h *history) reset() {
	h.pos = len(h.entries)
}
