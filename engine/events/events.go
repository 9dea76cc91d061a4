// Package events is the one-way notification surface between the engine
// and whatever presents the game. The engine calls an Observer
// synchronously; nothing an observer returns feeds back into movement,
// except the answer to a version confirmation.
package events

import (
	"log/slog"
	"strings"
)

// Snapshot is the debug view of a session.
type Snapshot struct {
	Floor     int
	RX, RY    int
	X, Y      int
	Direction string
	Object    string // description of the object under the player
	Map       []string
	Keys      []string
}

// Observer receives engine notifications.
type Observer interface {
	// DisplayChanged delivers the visible room grid, one string per row.
	DisplayChanged(grid []string)
	// Message shows level text, such as a button message.
	Message(text string)
	// Notice reports a recoverable failure, such as a rejected transport.
	Notice(text string)
	// Confirm asks the player a yes/no question.
	Confirm(prompt string) bool
	// GameEnded reports the end of the game with the level's message.
	GameEnded(text string)
	// Debug delivers the debug view after each placement.
	Debug(snap Snapshot)
}

// Nop ignores every notification and confirms every prompt.
type Nop struct{}

func (Nop) DisplayChanged([]string) {}
func (Nop) Message(string)          {}
func (Nop) Notice(string)           {}
func (Nop) Confirm(string) bool     { return true }
func (Nop) GameEnded(string)        {}
func (Nop) Debug(Snapshot)          {}

// Multi fans notifications out to several observers. Confirm is true only
// when every observer confirms.
type Multi []Observer

func (m Multi) DisplayChanged(grid []string) {
	for _, o := range m {
		o.DisplayChanged(grid)
	}
}

func (m Multi) Message(text string) {
	for _, o := range m {
		o.Message(text)
	}
}

func (m Multi) Notice(text string) {
	for _, o := range m {
		o.Notice(text)
	}
}

func (m Multi) Confirm(prompt string) bool {
	ok := true
	for _, o := range m {
		if !o.Confirm(prompt) {
			ok = false
		}
	}
	return ok
}

func (m Multi) GameEnded(text string) {
	for _, o := range m {
		o.GameEnded(text)
	}
}

func (m Multi) Debug(snap Snapshot) {
	for _, o := range m {
		o.Debug(snap)
	}
}

// Logging writes notifications to a structured logger. It confirms every
// prompt, so it is meant to be combined with an interactive observer.
type Logging struct {
	Logger *slog.Logger
}

func (l Logging) DisplayChanged(grid []string) {
	l.Logger.Debug("display", "grid", strings.Join(grid, "\n"))
}

func (l Logging) Message(text string) { l.Logger.Info("message", "text", text) }
func (l Logging) Notice(text string)  { l.Logger.Warn("notice", "text", text) }

func (l Logging) Confirm(prompt string) bool {
	l.Logger.Info("confirm", "prompt", prompt)
	return true
}

func (l Logging) GameEnded(text string) { l.Logger.Info("game ended", "text", text) }

func (l Logging) Debug(snap Snapshot) {
	l.Logger.Debug("position",
		"floor", snap.Floor, "rx", snap.RX, "ry", snap.RY,
		"x", snap.X, "y", snap.Y, "direction", snap.Direction)
}

// Recorder keeps every notification. Tests use it to assert on what the
// engine reported.
type Recorder struct {
	Answer   bool // returned from Confirm
	Grids    [][]string
	Messages []string
	Notices  []string
	Prompts  []string
	Endings  []string
	Snaps    []Snapshot
}

func (r *Recorder) DisplayChanged(grid []string) { r.Grids = append(r.Grids, grid) }
func (r *Recorder) Message(text string)          { r.Messages = append(r.Messages, text) }
func (r *Recorder) Notice(text string)           { r.Notices = append(r.Notices, text) }
func (r *Recorder) GameEnded(text string)        { r.Endings = append(r.Endings, text) }
func (r *Recorder) Debug(snap Snapshot)          { r.Snaps = append(r.Snaps, snap) }

func (r *Recorder) Confirm(prompt string) bool {
	r.Prompts = append(r.Prompts, prompt)
	return r.Answer
}

// LastGrid returns the most recent display grid, or nil.
func (r *Recorder) LastGrid() []string {
	if len(r.Grids) == 0 {
		return nil
	}
	return r.Grids[len(r.Grids)-1]
}
