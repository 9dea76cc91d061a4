// Package floor lays rooms out on a floor map. Letter cells name rooms; any
// other character is void. Room coordinates wrap around the map edges.
package floor

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/nathoo/mazecaves/engine/room"
	"github.com/nathoo/mazecaves/engine/transport"
	"github.com/nathoo/mazecaves/types"
)

// Floor is one level of the cave system.
type Floor struct {
	ID    int
	Start *types.PlayerStart

	cells [][]rune
	rooms map[rune]*room.Room
}

// Build parses a floor map and builds every room it references.
func Build(def types.FloorDef, glyphs room.Glyphs) (*Floor, error) {
	where := fmt.Sprintf("floor %d", def.ID)
	f := &Floor{
		ID:    def.ID,
		Start: def.Player,
		rooms: make(map[rune]*room.Room),
	}

	text := strings.TrimSpace(def.Map)
	if text == "" {
		return nil, &types.SchemaError{Where: where, Msg: "empty map"}
	}
	for i, line := range strings.Split(text, "\n") {
		row := []rune(strings.TrimSpace(line))
		if len(row) == 0 {
			return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("map row %d is empty", i)}
		}
		f.cells = append(f.cells, row)
	}

	for _, row := range f.cells {
		for _, c := range row {
			if !unicode.IsLetter(c) {
				continue
			}
			if _, ok := f.rooms[c]; ok {
				continue
			}
			rd, ok := def.Rooms[c]
			if !ok {
				return nil, &types.SchemaError{Where: where, Msg: fmt.Sprintf("map references room %q which is not defined", c)}
			}
			rd.Ref = c
			r, err := room.New(rd, glyphs)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", where, err)
			}
			f.rooms[c] = r
		}
	}
	return f, nil
}

// Wrap brings room coordinates back onto the map. Rows wrap by the map
// height; columns wrap by the width of the resulting row.
func (f *Floor) Wrap(rx, ry int) (int, int) {
	ry = mod(ry, len(f.cells))
	rx = mod(rx, len(f.cells[ry]))
	return rx, ry
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}

// IsRoom reports whether wrapped room coordinates name a room cell.
func (f *Floor) IsRoom(rx, ry int) bool {
	rx, ry = f.Wrap(rx, ry)
	return unicode.IsLetter(f.cells[ry][rx])
}

// RoomAt returns the room at room coordinates, or nil for a void cell.
func (f *Floor) RoomAt(rx, ry int) *room.Room {
	rx, ry = f.Wrap(rx, ry)
	return f.rooms[f.cells[ry][rx]]
}

// CheckStart validates a start or restore position.
func (f *Floor) CheckStart(p transport.Position) error {
	if p.RY < 0 || p.RY >= len(f.cells) || p.RX < 0 || p.RX >= len(f.cells[p.RY]) {
		return fmt.Errorf("%w: room %d,%d is off floor %d", types.ErrOutOfBoundsStart, p.RX, p.RY, f.ID)
	}
	if !unicode.IsLetter(f.cells[p.RY][p.RX]) {
		return fmt.Errorf("%w: room %d,%d on floor %d is void", types.ErrOutOfBoundsStart, p.RX, p.RY, f.ID)
	}
	if !transport.InRoom(p.X, p.Y) {
		return fmt.Errorf("%w: tile %d,%d is outside the room", types.ErrOutOfBoundsStart, p.X, p.Y)
	}
	return nil
}

// Lines returns the floor map, one string per row.
func (f *Floor) Lines() []string {
	lines := make([]string, len(f.cells))
	for i, row := range f.cells {
		lines[i] = string(row)
	}
	return lines
}
