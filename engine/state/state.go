// Package state manages the mutable session state of one game: where the
// player stands, where they are about to move, and which keys they hold.
package state

import (
	"sort"

	"github.com/zyedidia/generic/mapset"

	"github.com/nathoo/mazecaves/types"
)

// Session is the single mutable nucleus of a game. It is owned by the
// engine; other packages read and write it only during a move or action.
type Session struct {
	Floor int
	RX    int // room column in the floor map
	RY    int // room row in the floor map
	X     int // tile column in the room
	Y     int // tile row in the room
	NewX  int // queued tile column
	NewY  int // queued tile row

	Direction types.Direction
	Keys      mapset.Set[string]
}

// NewSession creates an empty session holding no keys.
func NewSession() *Session {
	return &Session{
		Direction: types.Center,
		Keys:      mapset.New[string](),
	}
}

// HasKey returns true if the player holds the key.
func (s *Session) HasKey(key string) bool {
	return s.Keys.Has(key)
}

// SetKey adds or removes a key. Returns true if the key set changed.
func (s *Session) SetKey(key string, held bool) bool {
	switch {
	case held && !s.Keys.Has(key):
		s.Keys.Put(key)
		return true
	case !held && s.Keys.Has(key):
		s.Keys.Remove(key)
		return true
	default:
		return false
	}
}

// ResetKeys replaces the key set with keys.
func (s *Session) ResetKeys(keys []string) {
	s.Keys = mapset.New[string]()
	for _, k := range keys {
		s.Keys.Put(k)
	}
}

// KeyList returns the held keys in sorted order.
func (s *Session) KeyList() []string {
	keys := make([]string, 0, s.Keys.Size())
	s.Keys.Each(func(k string) {
		keys = append(keys, k)
	})
	sort.Strings(keys)
	return keys
}

// Queue sets the queued tile position.
func (s *Session) Queue(x, y int) {
	s.NewX, s.NewY = x, y
}

// Commit moves the player onto the queued tile.
func (s *Session) Commit() {
	s.X, s.Y = s.NewX, s.NewY
}

// Revert drops the queued tile and keeps the player where they are.
func (s *Session) Revert() {
	s.NewX, s.NewY = s.X, s.Y
}

// Place puts the player directly on a tile, queued and committed.
func (s *Session) Place(x, y int) {
	s.X, s.Y = x, y
	s.NewX, s.NewY = x, y
}
