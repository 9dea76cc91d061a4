// Package loader reads level files into immutable definitions. Levels are
// written either in the classic XML format or as Lua scripts; the Lua VM is
// discarded after loading.
package loader

import (
	"fmt"
	"sort"

	"github.com/nathoo/mazecaves/types"
	lua "github.com/yuin/gopher-lua"
)

// rawFloor holds a floor table before compilation.
type rawFloor struct {
	id    int
	table *lua.LTable
}

// rawRoom holds a room table before compilation.
type rawRoom struct {
	floor int
	ref   string
	table *lua.LTable
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	v := tbl.RawGetString(key)
	if s, ok := v.(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getFlag returns an optional bool field, or nil if missing.
func getFlag(tbl *lua.LTable, key string) *bool {
	v := tbl.RawGetString(key)
	if b, ok := v.(lua.LBool); ok {
		flag := bool(b)
		return &flag
	}
	return nil
}

// getInt returns an int field from a Lua table.
func getInt(tbl *lua.LTable, key string) (int, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LNumber:
		n := int(v)
		if float64(n) != float64(v) {
			return 0, fmt.Errorf("%s = %v is not an integer", key, v)
		}
		return n, nil
	case *lua.LNilType:
		return 0, fmt.Errorf("%s is required", key)
	default:
		return 0, fmt.Errorf("%s must be a number, got %s", key, v.Type())
	}
}

// getCoord reads a coordinate field: a number is absolute, a string follows
// the "~n" notation, and a missing field keeps the current value.
func getCoord(tbl *lua.LTable, key string) (types.Coord, error) {
	switch v := tbl.RawGetString(key).(type) {
	case lua.LNumber:
		n := int(v)
		if float64(n) != float64(v) {
			return types.Coord{}, fmt.Errorf("%s = %v is not an integer", key, v)
		}
		return types.Coord{Value: n}, nil
	case lua.LString:
		c, err := parseCoord(string(v))
		if err != nil {
			return types.Coord{}, fmt.Errorf("%s: %w", key, err)
		}
		return c, nil
	case *lua.LNilType:
		return types.Stay, nil
	default:
		return types.Coord{}, fmt.Errorf("%s must be a number or string, got %s", key, v.Type())
	}
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	v := tbl.RawGetString(key)
	if t, ok := v.(*lua.LTable); ok {
		return t
	}
	return nil
}

// eachTable calls fn for every table in the array part of a list field.
func eachTable(tbl *lua.LTable, key string, fn func(*lua.LTable) error) error {
	list := getTable(tbl, key)
	if list == nil {
		return nil
	}
	for i := 1; i <= list.MaxN(); i++ {
		item, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return fmt.Errorf("%s[%d] is not a table", key, i)
		}
		if err := fn(item); err != nil {
			return fmt.Errorf("%s[%d]: %w", key, i, err)
		}
	}
	return nil
}

// compile converts all collected Lua data into a LevelDef.
func compile(coll *collector) (*types.LevelDef, error) {
	if coll.level == nil {
		return nil, fmt.Errorf("no Level{} definition found")
	}
	level := &types.LevelDef{
		Title:       getString(coll.level, "title"),
		Description: getString(coll.level, "description"),
		Message:     getString(coll.level, "message"),
		Floors:      map[int]types.FloorDef{},
	}
	if v, ok := coll.level.RawGetString("version").(lua.LNumber); ok {
		level.Version = int(v)
	}

	for _, raw := range coll.floors {
		if _, dup := level.Floors[raw.id]; dup {
			return nil, fmt.Errorf("floor %d defined twice", raw.id)
		}
		f, err := compileFloor(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling floor %d: %w", raw.id, err)
		}
		level.Floors[raw.id] = f
	}

	for _, raw := range coll.rooms {
		f, ok := level.Floors[raw.floor]
		if !ok {
			return nil, fmt.Errorf("room %q belongs to undefined floor %d", raw.ref, raw.floor)
		}
		rd, err := compileRoom(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling floor %d room %q: %w", raw.floor, raw.ref, err)
		}
		if _, dup := f.Rooms[rd.Ref]; dup {
			return nil, fmt.Errorf("floor %d room %q defined twice", raw.floor, raw.ref)
		}
		f.Rooms[rd.Ref] = rd
	}

	return level, nil
}

func compileFloor(raw rawFloor) (types.FloorDef, error) {
	f := types.FloorDef{
		ID:    raw.id,
		Map:   getString(raw.table, "map"),
		Rooms: map[rune]types.RoomDef{},
	}
	if p := getTable(raw.table, "player"); p != nil {
		start, err := compileStart(p)
		if err != nil {
			return f, fmt.Errorf("player: %w", err)
		}
		f.Player = start
	}
	return f, nil
}

func compileStart(tbl *lua.LTable) (*types.PlayerStart, error) {
	var (
		start types.PlayerStart
		err   error
	)
	if start.RX, err = getInt(tbl, "rx"); err != nil {
		return nil, err
	}
	if start.RY, err = getInt(tbl, "ry"); err != nil {
		return nil, err
	}
	if start.X, err = getInt(tbl, "x"); err != nil {
		return nil, err
	}
	if start.Y, err = getInt(tbl, "y"); err != nil {
		return nil, err
	}
	return &start, nil
}

// compileRoom compiles a raw room. Objects keep their declaration order;
// transporters and transmitters share the transport list and are told
// apart by their kind.
func compileRoom(raw rawRoom) (types.RoomDef, error) {
	ref, err := parseRoomRef(raw.ref)
	if err != nil {
		return types.RoomDef{}, err
	}
	rd := types.RoomDef{Ref: ref, Map: getString(raw.table, "map")}

	err = eachTable(raw.table, "transport", func(tbl *lua.LTable) error {
		def, err := compileTransport(tbl)
		if err != nil {
			return err
		}
		switch kind := getString(tbl, "kind"); kind {
		case "Transporter":
			rd.Transporters = append(rd.Transporters, def)
		case "Transmitter":
			rd.Transmitters = append(rd.Transmitters, def)
		default:
			return fmt.Errorf("expected Transporter or Transmitter, got %q", kind)
		}
		return nil
	})
	if err != nil {
		return rd, err
	}

	err = eachTable(raw.table, "objects", func(tbl *lua.LTable) error {
		obj, err := compileObject(tbl)
		if err != nil {
			return err
		}
		rd.Objects = append(rd.Objects, obj)
		return nil
	})
	return rd, err
}

func compileTransport(tbl *lua.LTable) (types.TransportDef, error) {
	var def types.TransportDef
	from, err := parseDirection(getString(tbl, "from"))
	if err != nil {
		return def, fmt.Errorf("from: %w", err)
	}
	def.From, def.To = from, from
	if to := getString(tbl, "to"); to != "" {
		if def.To, err = parseDirection(to); err != nil {
			return def, fmt.Errorf("to: %w", err)
		}
	}
	coords := []struct {
		key string
		dst *types.Coord
	}{
		{"trx", &def.RoomX}, {"try", &def.RoomY}, {"tx", &def.TileX}, {"ty", &def.TileY},
	}
	for _, c := range coords {
		if *c.dst, err = getCoord(tbl, c.key); err != nil {
			return def, err
		}
	}
	return def, nil
}

func compileObject(tbl *lua.LTable) (types.ObjectDef, error) {
	var obj types.ObjectDef
	switch kind := getString(tbl, "kind"); kind {
	case "Block":
		obj.Kind = types.KindBlock
	case "Door":
		obj.Kind = types.KindDoor
	case "Button":
		obj.Kind = types.KindButton
	default:
		return obj, fmt.Errorf("expected Block, Door or Button, got %q", kind)
	}

	var err error
	if obj.Piece, err = parsePiece(getString(tbl, "piece")); err != nil {
		return obj, err
	}
	if obj.X, err = getInt(tbl, "x"); err != nil {
		return obj, err
	}
	if obj.Y, err = getInt(tbl, "y"); err != nil {
		return obj, err
	}
	obj.Collidable = getFlag(tbl, "collidable")
	obj.Notify = getFlag(tbl, "notify")
	obj.Instant = getFlag(tbl, "instant")

	switch obj.Kind {
	case types.KindDoor:
		obj.Key = doorKey(getString(tbl, "key"))
		if inv := getFlag(tbl, "inverted"); inv != nil {
			obj.Inverted = *inv
		}
	case types.KindButton:
		err = eachTable(tbl, "actions", func(a *lua.LTable) error {
			act, err := compileAction(a)
			if err != nil {
				return err
			}
			obj.Actions = append(obj.Actions, act)
			return nil
		})
	}
	return obj, err
}

func compileAction(tbl *lua.LTable) (types.ActionDef, error) {
	act := types.ActionDef{
		Type:      types.ActionType(getString(tbl, "type")),
		Condition: getString(tbl, "condition"),
		Message:   getString(tbl, "message"),
		Key:       getString(tbl, "key"),
		Value:     getString(tbl, "value"),
	}
	coords := []struct {
		key string
		dst *types.Coord
	}{
		{"floor", &act.Floor}, {"trx", &act.RoomX}, {"try", &act.RoomY}, {"tx", &act.TileX}, {"ty", &act.TileY},
	}
	for _, c := range coords {
		var err error
		if *c.dst, err = getCoord(tbl, c.key); err != nil {
			return act, err
		}
	}
	return act, nil
}

// sortedLuaFiles returns .lua files with level.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var levelFile string
	var others []string
	for _, f := range files {
		if f == "level.lua" {
			levelFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if levelFile != "" {
		return append([]string{levelFile}, others...)
	}
	return others
}
