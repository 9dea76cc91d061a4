// Package transport computes absolute destinations for transporters,
// transmitters and teleporters from their relative-or-absolute coordinates.
package transport

import (
	"fmt"

	"github.com/nathoo/mazecaves/types"
)

// Position is a room in the floor map plus a tile in that room.
type Position struct {
	RX, RY int
	X, Y   int
}

// Apply resolves one coordinate against its current value.
func Apply(c types.Coord, current int) int {
	if c.Relative {
		return current + c.Value
	}
	return c.Value
}

// InRoom reports whether a tile lies inside the room grid.
func InRoom(x, y int) bool {
	return x >= 0 && x < types.RoomWidth && y >= 0 && y < types.RoomHeight
}

// Jump resolves four coordinates against cur. The destination tile must lie
// inside the room; room coordinates are left for the floor to wrap.
func Jump(rx, ry, x, y types.Coord, cur Position) (Position, error) {
	dst := Position{
		RX: Apply(rx, cur.RX),
		RY: Apply(ry, cur.RY),
		X:  Apply(x, cur.X),
		Y:  Apply(y, cur.Y),
	}
	if !InRoom(dst.X, dst.Y) {
		return cur, fmt.Errorf("%w: tile %d,%d is outside the room", types.ErrTransportFailure, dst.X, dst.Y)
	}
	return dst, nil
}

// Resolve computes where a transporter or transmitter sends the player.
func Resolve(def types.TransportDef, cur Position) (Position, error) {
	return Jump(def.RoomX, def.RoomY, def.TileX, def.TileY, cur)
}
