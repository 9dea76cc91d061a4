package tui

import "github.com/nathoo/mazecaves/engine/events"

// logLine is one entry of the message log, styled by kind at render time.
type logLine struct {
	text string
	kind lineKind
}

// sink is the engine's observer. The engine calls it synchronously from
// Step, so the model drains it right after each call.
type sink struct {
	grid    []string
	lines   []logLine
	snap    events.Snapshot
	ended   bool
	accept  bool   // answer for the next Confirm
	pending string // last prompt that was refused
}

var _ events.Observer = (*sink)(nil)

func (s *sink) DisplayChanged(grid []string) { s.grid = grid }
func (s *sink) Message(text string)          { s.add(text, kindMessage) }
func (s *sink) Notice(text string)           { s.add(text, kindNotice) }
func (s *sink) Debug(snap events.Snapshot)   { s.snap = snap }

// Confirm answers with the player's recorded choice. A refused prompt is
// kept so the model can ask and start again.
func (s *sink) Confirm(prompt string) bool {
	if !s.accept {
		s.pending = prompt
	}
	return s.accept
}

func (s *sink) GameEnded(text string) {
	s.ended = true
	if text != "" {
		s.add(text, kindEnding)
	}
	s.add("The End. Press q to quit or / for commands.", kindSystem)
}

func (s *sink) add(text string, kind lineKind) {
	s.lines = append(s.lines, logLine{text: text, kind: kind})
}

// drain returns and clears the queued log lines.
func (s *sink) drain() []logLine {
	lines := s.lines
	s.lines = nil
	return lines
}
