package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerContentHelpers(L)
	registerActionHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Level { title = "...", ... }
	L.SetGlobal("Level", L.NewFunction(func(L *lua.LState) int {
		coll.level = L.CheckTable(1)
		return 0
	}))

	// Floor(0) { map = [[...]], player = {...} }
	L.SetGlobal("Floor", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckInt(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.floors = append(coll.floors, rawFloor{id: id, table: tbl})
			return 0
		}))
		return 1
	}))

	// Room(0, "A") { map = [[...]], objects = {...}, transport = {...} }
	L.SetGlobal("Room", L.NewFunction(func(L *lua.LState) int {
		floor := L.CheckInt(1)
		ref := L.CheckString(2)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			coll.rooms = append(coll.rooms, rawRoom{floor: floor, ref: ref, table: tbl})
			return 0
		}))
		return 1
	}))
}

// registerContentHelpers registers the room content constructors. Each
// tags its table with a kind and returns it.
func registerContentHelpers(L *lua.LState) {
	for _, kind := range []string{"Block", "Door", "Button", "Transporter", "Transmitter"} {
		L.SetGlobal(kind, L.NewFunction(tagged(kind)))
	}
}

func tagged(kind string) lua.LGFunction {
	return func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("kind", lua.LString(kind))
		L.Push(tbl)
		return 1
	}
}

func registerActionHelpers(L *lua.LState) {
	// Message("text")
	L.SetGlobal("Message", L.NewFunction(func(L *lua.LState) int {
		L.Push(action(L, "message", "message", lua.LString(L.CheckString(1))))
		return 1
	}))

	// Ladder(2) or Ladder("~1")
	L.SetGlobal("Ladder", L.NewFunction(func(L *lua.LState) int {
		L.Push(action(L, "ladder", "floor", L.CheckAny(1)))
		return 1
	}))

	// Teleporter { trx = ..., try = ..., tx = ..., ty = ... }
	L.SetGlobal("Teleporter", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("type", lua.LString("teleporter"))
		L.Push(tbl)
		return 1
	}))

	// Ending()
	L.SetGlobal("Ending", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("ending"))
		L.Push(tbl)
		return 1
	}))

	// Setter("key", "[a] AND !([b])")
	L.SetGlobal("Setter", L.NewFunction(func(L *lua.LState) int {
		tbl := action(L, "setter", "key", lua.LString(L.CheckString(1)))
		tbl.RawSetString("value", lua.LString(L.CheckString(2)))
		L.Push(tbl)
		return 1
	}))

	// If("[red] AND [blue]", Message("..."))
	L.SetGlobal("If", L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckString(1)
		tbl := L.CheckTable(2)
		tbl.RawSetString("condition", lua.LString(cond))
		L.Push(tbl)
		return 1
	}))
}

func action(L *lua.LState, typ, field string, value lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	tbl.RawSetString(field, value)
	return tbl
}
