// Package types defines the shared data structures for the Maze Caves engine.
// This package contains type definitions and the error taxonomy only; all
// behavior lives in the engine packages.
package types

// Room and level format constants.
const (
	RoomWidth    = 16
	RoomHeight   = 8
	LevelVersion = 2
)

// Direction is the direction the player last moved in.
type Direction int

const (
	None Direction = iota
	// Center is used when the player pops into a room: a fresh floor or a teleporter.
	Center
	Left
	Up
	Right
	Down
)

var directionNames = [...]string{"NONE", "CENTER", "LEFT", "UP", "RIGHT", "DOWN"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return "UNKNOWN"
	}
	return directionNames[d]
}

// Input is one discrete input event.
type Input int

const (
	InputNone Input = iota
	InputLeft
	InputUp
	InputRight
	InputDown
	InputAction
)

// Coord is one target coordinate of a transport or action: either absolute,
// or an offset from the current value (written "~n" in level data).
type Coord struct {
	Relative bool
	Value    int
}

// Stay is the coordinate that keeps the current value ("~0").
var Stay = Coord{Relative: true}

// TransportDef declares a transporter or transmitter of a room.
type TransportDef struct {
	From  Direction // direction that triggers it
	To    Direction // direction the player travels in afterwards
	RoomX Coord
	RoomY Coord
	TileX Coord
	TileY Coord
}

// ObjectKind identifies a room object variant.
type ObjectKind int

const (
	KindBlock ObjectKind = iota
	KindDoor
	KindButton
)

// ActionType names a button action.
type ActionType string

const (
	ActionMessage    ActionType = "message"
	ActionLadder     ActionType = "ladder"
	ActionTeleporter ActionType = "teleporter"
	ActionEnding     ActionType = "ending"
	ActionSetter     ActionType = "setter"
)

// ActionDef is one scripted button action.
type ActionDef struct {
	Type      ActionType
	Condition string // boolean expression; empty is always true

	Message string // message
	Floor   Coord  // ladder
	RoomX   Coord  // teleporter
	RoomY   Coord
	TileX   Coord
	TileY   Coord
	Key     string // setter
	Value   string // setter value expression
}

// ObjectDef is a room object as declared by level data. Nil attribute
// pointers keep the variant default.
type ObjectDef struct {
	Kind       ObjectKind
	Piece      rune
	X, Y       int
	Collidable *bool
	Notify     *bool
	Instant    *bool

	Key      string // door
	Inverted bool   // door

	Actions []ActionDef // button, in declaration order
}

// RoomDef is one room of a floor.
type RoomDef struct {
	Ref          rune
	Map          string // raw map text, one border column on each row
	Transporters []TransportDef
	Transmitters []TransportDef
	Objects      []ObjectDef
}

// PlayerStart is where the player appears when a floor loads.
type PlayerStart struct {
	RX, RY int
	X, Y   int
}

// FloorDef is one floor of a level.
type FloorDef struct {
	ID     int
	Map    string // raw map text; letters reference rooms
	Player *PlayerStart
	Rooms  map[rune]RoomDef
}

// LevelDef holds the immutable level definitions.
type LevelDef struct {
	Path        string
	Title       string
	Description string
	Message     string // shown when the level is beaten
	Version     int    // 0 when the level does not declare one
	Floors      map[int]FloorDef
}
