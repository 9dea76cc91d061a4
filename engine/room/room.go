// Package room holds one room of a floor: its tile grid, the objects placed
// on it and its transporters. It decides whether the player may enter the
// queued tile and keeps the displayed grid in sync with the session.
package room

import (
	"fmt"
	"strings"

	"github.com/nathoo/mazecaves/engine/state"
	"github.com/nathoo/mazecaves/types"
)

// Glyphs are the characters drawn for the player.
type Glyphs struct {
	Player rune
	Notify rune // drawn instead of Player on a notifying object
}

// DefaultGlyphs are used when a caller does not configure any.
var DefaultGlyphs = Glyphs{Player: '@', Notify: '!'}

// Point is a tile position inside a room.
type Point struct {
	X, Y int
}

// Room is a fixed-size grid of tiles. The backup grid keeps the background
// from the level; the display grid is what observers see.
type Room struct {
	Ref          rune
	Transporters map[types.Direction]types.TransportDef
	Transmitters map[types.Direction]types.TransportDef

	grid    [types.RoomHeight][types.RoomWidth]rune
	backup  [types.RoomHeight][types.RoomWidth]rune
	objects map[Point]Object
	glyphs  Glyphs
}

// New builds a room from its definition.
func New(def types.RoomDef, glyphs Glyphs) (*Room, error) {
	where := fmt.Sprintf("room %q", def.Ref)
	r := &Room{
		Ref:          def.Ref,
		Transporters: make(map[types.Direction]types.TransportDef),
		Transmitters: make(map[types.Direction]types.TransportDef),
		objects:      make(map[Point]Object),
		glyphs:       glyphs,
	}
	if err := r.parseMap(def.Map, where); err != nil {
		return nil, err
	}

	for _, t := range def.Transporters {
		if _, dup := r.Transporters[t.From]; dup {
			return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("duplicate transporter from %s", t.From)}
		}
		r.Transporters[t.From] = t
	}
	for _, t := range def.Transmitters {
		if _, dup := r.Transmitters[t.From]; dup {
			return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("duplicate transmitter from %s", t.From)}
		}
		r.Transmitters[t.From] = t
	}

	for _, od := range def.Objects {
		p := Point{od.X, od.Y}
		if p.X < 0 || p.X >= types.RoomWidth || p.Y < 0 || p.Y >= types.RoomHeight {
			return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("object at %d,%d is outside the room", p.X, p.Y)}
		}
		if _, dup := r.objects[p]; dup {
			return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("two objects at %d,%d", p.X, p.Y)}
		}
		obj, err := NewObject(od)
		if err != nil {
			return nil, &types.SchemaError{Where: where, Msg: err.Error()}
		}
		r.objects[p] = obj
		r.grid[p.Y][p.X] = od.Piece
	}
	return r, nil
}

// parseMap reads the room background. Every row is trimmed and its leading
// border column dropped; the next RoomWidth characters are the tiles.
func (r *Room) parseMap(text, where string) error {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < types.RoomHeight {
		return &types.SchemaError{Where: where, Msg: fmt.Sprintf("map has %d rows, want %d", len(lines), types.RoomHeight)}
	}
	for y := 0; y < types.RoomHeight; y++ {
		row := []rune(strings.TrimSpace(lines[y]))
		if len(row) < types.RoomWidth+1 {
			return &types.SchemaError{Where: where, Msg: fmt.Sprintf("map row %d is too short", y)}
		}
		for x := 0; x < types.RoomWidth; x++ {
			r.backup[y][x] = row[x+1]
			r.grid[y][x] = row[x+1]
		}
	}
	return nil
}

// ObjectAt returns the object on a tile, or nil.
func (r *Room) ObjectAt(x, y int) Object {
	return r.objects[Point{x, y}]
}

// Place tries to move the player onto the queued tile of s. A forced move
// ignores background and collisions. A rejected move keeps the player in
// place. With displayLast the tile the player leaves is redrawn first.
// Place returns the object under the player afterwards.
func (r *Room) Place(s *state.Session, force, displayLast bool) Object {
	if displayLast {
		r.grid[s.Y][s.X] = r.resting(s.X, s.Y, s.Keys)
	}

	target := r.objects[Point{s.NewX, s.NewY}]
	var enter bool
	switch {
	case force:
		enter = true
	case target == nil:
		enter = r.backup[s.NewY][s.NewX] == ' '
	default:
		enter = !Blocking(target, s.Keys)
	}
	if enter {
		s.Commit()
	} else {
		s.Revert()
	}

	under := r.objects[Point{s.X, s.Y}]
	r.stamp(s.X, s.Y, under)
	return under
}

// Reload redraws every tile from the backup grid and the current object
// state, then draws the player.
func (r *Room) Reload(s *state.Session) {
	for y := 0; y < types.RoomHeight; y++ {
		for x := 0; x < types.RoomWidth; x++ {
			r.grid[y][x] = r.resting(x, y, s.Keys)
		}
	}
	r.stamp(s.X, s.Y, r.objects[Point{s.X, s.Y}])
}

func (r *Room) resting(x, y int, keys Keys) rune {
	obj := r.objects[Point{x, y}]
	if visible(obj, keys) {
		return AttrsOf(obj).Piece
	}
	return r.backup[y][x]
}

func (r *Room) stamp(x, y int, under Object) {
	glyph := r.glyphs.Player
	if under != nil && AttrsOf(under).Notify {
		glyph = r.glyphs.Notify
	}
	r.grid[y][x] = glyph
}

// Lines returns the displayed grid, one string per row.
func (r *Room) Lines() []string {
	lines := make([]string, types.RoomHeight)
	for y := range r.grid {
		lines[y] = string(r.grid[y][:])
	}
	return lines
}
