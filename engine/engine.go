// Package engine provides the Step() orchestrator that turns one input into
// one complete move: bounds checks, room crossing, transporter and
// transmitter resolution, tile placement and any button actions it sets off.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nathoo/mazecaves/engine/effects"
	"github.com/nathoo/mazecaves/engine/events"
	"github.com/nathoo/mazecaves/engine/floor"
	"github.com/nathoo/mazecaves/engine/room"
	"github.com/nathoo/mazecaves/engine/save"
	"github.com/nathoo/mazecaves/engine/state"
	"github.com/nathoo/mazecaves/engine/transport"
	"github.com/nathoo/mazecaves/types"
)

// DefaultMaxHops caps transmitter chains and nested button cascades.
const DefaultMaxHops = 64

// Phase is where the engine is inside a move.
type Phase int

const (
	Idle Phase = iota
	MovingWithinRoom
	CrossingRoom
	ResolvingTransmitterChain
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case MovingWithinRoom:
		return "moving"
	case CrossingRoom:
		return "crossing"
	case ResolvingTransmitterChain:
		return "transmitting"
	default:
		return "unknown"
	}
}

// Options configure one game session.
type Options struct {
	Glyphs   room.Glyphs // zero value means room.DefaultGlyphs
	MaxHops  int         // zero means DefaultMaxHops
	Seed     int64       // seeds save cipher keys
	Observer events.Observer
	Logger   *slog.Logger
}

// Engine holds the level, the loaded floor and the session state.
type Engine struct {
	Level *types.LevelDef
	State *state.Session
	Floor *floor.Floor
	Room  *room.Room
	RNG   *RNG

	obs     events.Observer
	log     *slog.Logger
	glyphs  room.Glyphs
	maxHops int

	running bool
	pressed bool // action key pending for this step
	phase   Phase
	depth   int // nested button cascades
}

// New creates an engine for a level. Call Start before Step.
func New(level *types.LevelDef, opts Options) *Engine {
	e := &Engine{
		Level:   level,
		State:   state.NewSession(),
		RNG:     NewRNG(opts.Seed),
		obs:     opts.Observer,
		log:     opts.Logger,
		glyphs:  opts.Glyphs,
		maxHops: opts.MaxHops,
	}
	if e.obs == nil {
		e.obs = events.Nop{}
	}
	if e.log == nil {
		e.log = slog.New(slog.DiscardHandler)
	}
	if e.glyphs == (room.Glyphs{}) {
		e.glyphs = room.DefaultGlyphs
	}
	if e.maxHops <= 0 {
		e.maxHops = DefaultMaxHops
	}
	return e
}

// Start checks the level version, then loads the current floor and places
// the player. A fresh game starts on floor 0 at the floor's player start
// and shows the level description; restore resumes a save instead.
func (e *Engine) Start(restore *save.Data) error {
	if prompt := versionPrompt(e.Level.Version); prompt != "" {
		if !e.obs.Confirm(prompt) {
			return types.ErrDeclined
		}
	}

	var at *transport.Position
	if restore != nil {
		e.State.Floor = restore.Floor
		e.State.ResetKeys(restore.Keys)
		at = &transport.Position{RX: restore.RX, RY: restore.RY, X: restore.X, Y: restore.Y}
	} else if e.Level.Description != "" {
		e.obs.Message(effects.Decode(e.Level.Description))
	}

	e.running = true
	e.log.Info("game started", "level", e.Level.Title, "floor", e.State.Floor, "restored", restore != nil, "seed", e.RNG.Seed())
	if err := e.loadFloor(at); err != nil {
		e.running = false
		return err
	}
	return nil
}

func versionPrompt(version int) string {
	switch {
	case version < types.LevelVersion:
		return "This level is from an older version.\nAre you sure you want to load it? (Loading older levels could cause problems)"
	case version > types.LevelVersion:
		return "This level is from a newer version.\nAre you sure you want to load it? (Loading newer levels could cause problems)"
	default:
		return ""
	}
}

// Running reports whether the game accepts input.
func (e *Engine) Running() bool {
	return e.running
}

// Phase reports where the engine is inside the current move.
func (e *Engine) Phase() Phase {
	return e.phase
}

// Step processes one input to completion. Recoverable failures, such as a
// rejected transport, are reported to the observer and return nil. An
// error ends the game.
func (e *Engine) Step(in types.Input) error {
	if !e.running {
		return types.ErrGameOver
	}
	s := e.State
	switch in {
	case types.InputLeft:
		s.Direction = types.Left
		s.NewX--
	case types.InputUp:
		s.Direction = types.Up
		s.NewY--
	case types.InputRight:
		s.Direction = types.Right
		s.NewX++
	case types.InputDown:
		s.Direction = types.Down
		s.NewY++
	case types.InputAction:
		e.pressed = true
	default:
		return nil
	}
	defer func() {
		e.pressed = false
		e.phase = Idle
	}()

	if err := e.move(); err != nil {
		e.running = false
		e.log.Error("game aborted", "err", err)
		return err
	}
	return nil
}

func (e *Engine) move() error {
	s := e.State
	crossed := false
	switch {
	case s.NewX < 0:
		s.NewX = types.RoomWidth - 1
		crossed = true
	case s.NewX >= types.RoomWidth:
		s.NewX = 0
		crossed = true
	}
	switch {
	case s.NewY < 0:
		s.NewY = types.RoomHeight - 1
		crossed = true
	case s.NewY >= types.RoomHeight:
		s.NewY = 0
		crossed = true
	}

	if !crossed {
		e.phase = MovingWithinRoom
		return e.place(false, true)
	}

	e.phase = CrossingRoom
	rx, ry, dir := s.RX, s.RY, s.Direction
	if !e.cross() {
		s.RX, s.RY, s.Direction = rx, ry, dir
		s.Revert()
		e.Room = e.Floor.RoomAt(rx, ry)
		return e.place(false, true)
	}
	return e.enter()
}

// cross moves the room coordinates one step in the current direction and
// follows transporters and transmitters until a room is reached. On false
// the move is rejected and the caller restores the session.
func (e *Engine) cross() bool {
	s := e.State
	leaving := e.Room
	dx, dy := delta(s.Direction)
	s.RX += dx
	s.RY += dy

	if t, ok := leaving.Transporters[s.Direction]; ok {
		dst, err := transport.Resolve(t, e.queued())
		if err != nil {
			e.transportFailed("The transporter failed.", err)
			return false
		}
		s.Direction = t.To
		s.RX, s.RY = dst.RX, dst.RY
		s.Queue(dst.X, dst.Y)
	}
	s.RX, s.RY = e.Floor.Wrap(s.RX, s.RY)

	for hops := 0; !e.Floor.IsRoom(s.RX, s.RY); hops++ {
		e.phase = ResolvingTransmitterChain
		t, ok := leaving.Transmitters[s.Direction]
		if !ok {
			e.log.Debug("move blocked by void", "rx", s.RX, "ry", s.RY, "direction", s.Direction)
			return false
		}
		if hops >= e.maxHops {
			e.transportFailed("The transmitter failed.",
				fmt.Errorf("%w: more than %d transmitter hops", types.ErrTransportFailure, e.maxHops))
			return false
		}
		dst, err := transport.Resolve(t, e.queued())
		if err != nil {
			e.transportFailed("The transmitter failed.", err)
			return false
		}
		s.Direction = t.To
		s.RX, s.RY = e.Floor.Wrap(dst.RX, dst.RY)
		s.Queue(dst.X, dst.Y)
	}

	e.Room = e.Floor.RoomAt(s.RX, s.RY)
	return true
}

func delta(d types.Direction) (int, int) {
	switch d {
	case types.Left:
		return -1, 0
	case types.Up:
		return 0, -1
	case types.Right:
		return 1, 0
	case types.Down:
		return 0, 1
	default:
		return 0, 0
	}
}

// queued is the room coordinates with the queued tile.
func (e *Engine) queued() transport.Position {
	s := e.State
	return transport.Position{RX: s.RX, RY: s.RY, X: s.NewX, Y: s.NewY}
}

func (e *Engine) transportFailed(notice string, err error) {
	e.log.Warn("transport rejected", "err", err)
	e.obs.Notice(notice)
}

// place runs tile placement in the current room and fires the button the
// player lands on.
func (e *Engine) place(force, displayLast bool) error {
	obj := e.Room.Place(e.State, force, displayLast)
	e.publish(obj)
	return e.trigger(obj)
}

// enter places the player in a newly entered room at the queued tile and
// redraws the whole room.
func (e *Engine) enter() error {
	s := e.State
	obj := e.Room.Place(s, true, false)
	e.Room.Reload(s)
	e.log.Debug("room entered", "room", string(e.Room.Ref), "rx", s.RX, "ry", s.RY, "x", s.X, "y", s.Y)
	e.publish(obj)
	return e.trigger(obj)
}

func (e *Engine) trigger(obj room.Object) error {
	b, ok := room.Activated(obj, e.pressed)
	if !ok {
		return nil
	}
	e.pressed = false
	if e.depth >= e.maxHops {
		e.log.Warn("button cascade cut short", "depth", e.depth)
		e.obs.Notice("Too many buttons fired in a row.")
		return nil
	}
	e.depth++
	defer func() { e.depth-- }()
	return effects.Apply(b.Actions, e, e.log)
}

func (e *Engine) publish(under room.Object) {
	e.obs.DisplayChanged(e.Room.Lines())
	e.obs.Debug(e.snapshot(under))
}

// loadFloor rebuilds the current floor and puts the player at its start,
// or at the given position.
func (e *Engine) loadFloor(at *transport.Position) error {
	s := e.State
	def, ok := e.Level.Floors[s.Floor]
	if !ok {
		return &types.SchemaError{Where: fmt.Sprintf("floor %d", s.Floor), Msg: "floor does not exist"}
	}
	f, err := floor.Build(def, e.glyphs)
	if err != nil {
		return err
	}

	var start transport.Position
	switch {
	case at != nil:
		start = *at
	case def.Player != nil:
		start = transport.Position{RX: def.Player.RX, RY: def.Player.RY, X: def.Player.X, Y: def.Player.Y}
	default:
		return &types.SchemaError{Where: fmt.Sprintf("floor %d", s.Floor), Msg: "no player start"}
	}
	if err := f.CheckStart(start); err != nil {
		return err
	}

	e.Floor = f
	s.Direction = types.Center
	s.RX, s.RY = start.RX, start.RY
	s.Place(start.X, start.Y)
	e.Room = f.RoomAt(s.RX, s.RY)
	e.log.Info("floor loaded", "floor", s.Floor, "rows", len(f.Lines()))
	return e.enter()
}

// HasKey implements effects.Host.
func (e *Engine) HasKey(key string) bool {
	return e.State.HasKey(key)
}

// SetKey implements effects.Host.
func (e *Engine) SetKey(key string, held bool) bool {
	changed := e.State.SetKey(key, held)
	if changed {
		e.log.Debug("key changed", "key", key, "held", held)
	}
	return changed
}

// Message implements effects.Host.
func (e *Engine) Message(text string) {
	e.obs.Message(text)
}

// Notice implements effects.Host.
func (e *Engine) Notice(text string) {
	e.obs.Notice(text)
}

// Ladder implements effects.Host. Moving to the current floor does nothing.
func (e *Engine) Ladder(c types.Coord) error {
	s := e.State
	target := transport.Apply(c, s.Floor)
	if target == s.Floor {
		return nil
	}
	from := s.Floor
	s.Floor = target
	if err := e.loadFloor(nil); err != nil {
		e.running = false
		return fmt.Errorf("ladder from floor %d: %w", from, err)
	}
	return nil
}

// Teleport implements effects.Host. Coordinates resolve against the
// player's current room and tile.
func (e *Engine) Teleport(rx, ry, x, y types.Coord) error {
	s := e.State
	dst, err := transport.Jump(rx, ry, x, y, transport.Position{RX: s.RX, RY: s.RY, X: s.X, Y: s.Y})
	if err != nil {
		return err
	}
	wrx, wry := e.Floor.Wrap(dst.RX, dst.RY)
	if !e.Floor.IsRoom(wrx, wry) {
		return fmt.Errorf("%w: room %d,%d is void", types.ErrTransportFailure, wrx, wry)
	}

	s.Direction = types.Center
	roomChanged := wrx != s.RX || wry != s.RY
	tileChanged := dst.X != s.X || dst.Y != s.Y
	s.RX, s.RY = wrx, wry
	s.Queue(dst.X, dst.Y)
	switch {
	case roomChanged:
		e.Room = e.Floor.RoomAt(wrx, wry)
		return e.enter()
	case tileChanged:
		return e.place(true, true)
	default:
		return nil
	}
}

// End implements effects.Host.
func (e *Engine) End() {
	e.running = false
	e.log.Info("game ended", "floor", e.State.Floor)
	e.obs.GameEnded(effects.Decode(e.Level.Message))
}

// Reload implements effects.Host.
func (e *Engine) Reload() {
	e.Room.Reload(e.State)
	e.publish(e.Room.ObjectAt(e.State.X, e.State.Y))
}

// Snapshot returns the debug view of the session.
func (e *Engine) Snapshot() events.Snapshot {
	if e.Room == nil {
		return events.Snapshot{Floor: e.State.Floor, Keys: e.State.KeyList()}
	}
	return e.snapshot(e.Room.ObjectAt(e.State.X, e.State.Y))
}

func (e *Engine) snapshot(under room.Object) events.Snapshot {
	s := e.State
	return events.Snapshot{
		Floor:     s.Floor,
		RX:        s.RX,
		RY:        s.RY,
		X:         s.X,
		Y:         s.Y,
		Direction: s.Direction.String(),
		Object:    room.Describe(under, s.Keys),
		Map:       e.Floor.Lines(),
		Keys:      s.KeyList(),
	}
}

// DebugLine renders a snapshot as a one-line position summary.
func DebugLine(snap events.Snapshot) string {
	return fmt.Sprintf("F%d|%d, %d|%d, %d|%s", snap.Floor, snap.RX, snap.RY, snap.X, snap.Y, snap.Direction)
}

// SaveData returns the session as save data.
func (e *Engine) SaveData() save.Data {
	s := e.State
	return save.Data{
		LevelPath: e.Level.Path,
		Floor:     s.Floor,
		RX:        s.RX,
		RY:        s.RY,
		X:         s.X,
		Y:         s.Y,
		Keys:      s.KeyList(),
	}
}

// Save writes the session to path with a fresh cipher key.
func (e *Engine) Save(path string) (string, error) {
	if e.Room == nil {
		return "", errors.New("game not started")
	}
	written, err := save.Write(path, e.SaveData(), e.RNG.SaveKey())
	if err != nil {
		return "", err
	}
	e.log.Info("game saved", "path", written, "draws", e.RNG.Position())
	return written, nil
}

// Info returns the level title and its decoded description.
func (e *Engine) Info() (title, description string) {
	return e.Level.Title, effects.Decode(e.Level.Description)
}
