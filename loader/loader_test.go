package loader

import (
	"bytes"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"

	"github.com/nathoo/mazecaves/engine/floor"
	"github.com/nathoo/mazecaves/engine/room"
	"github.com/nathoo/mazecaves/types"
)

func TestLoad_XML(t *testing.T) {
	level, err := Load("testdata/caves.xml", nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if level.Title != "Test Caves" {
		t.Errorf("Title = %q", level.Title)
	}
	if level.Description != `A small cave.\nFind the way out.` {
		t.Errorf("Description = %q", level.Description)
	}
	if level.Version != 2 {
		t.Errorf("Version = %d, want 2", level.Version)
	}
	if level.Path != "testdata/caves.xml" {
		t.Errorf("Path = %q", level.Path)
	}
	if len(level.Floors) != 2 {
		t.Fatalf("expected 2 floors, got %d", len(level.Floors))
	}

	f0 := level.Floors[0]
	if *f0.Player != (types.PlayerStart{RX: 0, RY: 0, X: 2, Y: 3}) {
		t.Errorf("floor 0 player = %+v", *f0.Player)
	}
	a := f0.Rooms['A']
	if len(a.Objects) != 4 {
		t.Fatalf("room A: expected 4 objects, got %d", len(a.Objects))
	}

	hello := a.Objects[0]
	if hello.Kind != types.KindButton || hello.Piece != '?' || hello.X != 4 || hello.Y != 2 {
		t.Errorf("first object = %+v", hello)
	}
	if len(hello.Actions) != 1 || hello.Actions[0].Type != types.ActionMessage {
		t.Fatalf("inline action = %+v", hello.Actions)
	}
	if hello.Actions[0].Message != `Hello \'there\'.` {
		t.Errorf("message = %q", hello.Actions[0].Message)
	}

	setter := a.Objects[1]
	if len(setter.Actions) != 2 {
		t.Fatalf("expected 2 child actions, got %d", len(setter.Actions))
	}
	if setter.Actions[0].Key != "red" || setter.Actions[0].Value != "true" {
		t.Errorf("setter action = %+v", setter.Actions[0])
	}
	if setter.Actions[1].Condition != "[red]" {
		t.Errorf("condition = %q", setter.Actions[1].Condition)
	}

	door := a.Objects[2]
	if door.Kind != types.KindDoor || door.Key != "red" || door.Inverted {
		t.Errorf("door = %+v", door)
	}
	block := a.Objects[3]
	if block.Collidable == nil || *block.Collidable {
		t.Errorf("block collidable = %v, want false", block.Collidable)
	}
	if block.Notify != nil {
		t.Errorf("block notify should keep the default")
	}

	b := f0.Rooms['B']
	if len(b.Transmitters) != 1 || b.Transmitters[0].From != types.Down || b.Transmitters[0].To != types.Up {
		t.Errorf("room B transmitters = %+v", b.Transmitters)
	}
	ladder := b.Objects[1].Actions[0]
	if ladder.Floor != (types.Coord{Relative: true, Value: 1}) {
		t.Errorf("ladder floor = %+v", ladder.Floor)
	}

	up := level.Floors[1].Rooms['A']
	tr := up.Transporters[0]
	if tr.TileX != (types.Coord{Relative: true, Value: 2}) || tr.TileY != (types.Coord{Value: 4}) || tr.RoomX != types.Stay {
		t.Errorf("transporter = %+v", tr)
	}
	back := up.Objects[0]
	if back.Instant == nil || !*back.Instant || back.Notify == nil || *back.Notify {
		t.Errorf("instant button flags = %v, %v", back.Instant, back.Notify)
	}
	if back.Actions[0].Floor != (types.Coord{Value: 0}) {
		t.Errorf("absolute ladder floor = %+v", back.Actions[0].Floor)
	}
}

func TestLoad_FormatsAgree(t *testing.T) {
	fromXML, err := Load("testdata/caves.xml", nil)
	if err != nil {
		t.Fatalf("Load xml: %v", err)
	}
	fromLua, err := Load("testdata/lua", nil)
	if err != nil {
		t.Fatalf("Load lua: %v", err)
	}

	// Maps differ in indentation only; compare what the engine builds.
	for id := range fromXML.Floors {
		x, err := floor.Build(fromXML.Floors[id], room.DefaultGlyphs)
		if err != nil {
			t.Fatal(err)
		}
		l, err := floor.Build(fromLua.Floors[id], room.DefaultGlyphs)
		if err != nil {
			t.Fatal(err)
		}
		if !slices.Equal(x.Lines(), l.Lines()) {
			t.Errorf("floor %d maps differ: %q vs %q", id, x.Lines(), l.Lines())
		}
		for rx := range []rune(x.Lines()[0]) {
			if !slices.Equal(x.RoomAt(rx, 0).Lines(), l.RoomAt(rx, 0).Lines()) {
				t.Errorf("floor %d room %d renders differently", id, rx)
			}
		}
	}

	if !reflect.DeepEqual(stripMaps(fromXML), stripMaps(fromLua)) {
		t.Errorf("definitions differ:\nxml: %+v\nlua: %+v", stripMaps(fromXML), stripMaps(fromLua))
	}
}

// stripMaps clears map text and the load path so definitions from the two
// formats compare equal.
func stripMaps(level *types.LevelDef) types.LevelDef {
	out := *level
	out.Path = ""
	out.Floors = map[int]types.FloorDef{}
	for id, f := range level.Floors {
		f.Map = ""
		rooms := map[rune]types.RoomDef{}
		for ref, r := range f.Rooms {
			r.Map = ""
			rooms[ref] = r
		}
		f.Rooms = rooms
		out.Floors[id] = f
	}
	return out
}

func TestLoad_SingleLuaFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.lua")
	src := `
Level { title = "Tiny" }
Floor(0) { map = "A", player = { rx = 0, ry = 0, x = 1, y = 1 } }
Room(0, "A") { map = [[
` + strings.Repeat("|                |\n", types.RoomHeight) + `]] }
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	level, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if level.Title != "Tiny" || len(level.Floors[0].Rooms) != 1 {
		t.Errorf("level = %+v", level)
	}
	if level.Version != 0 {
		t.Errorf("undeclared version = %d, want 0", level.Version)
	}
}

func TestLoad_InvalidLevel_Fails(t *testing.T) {
	_, err := Load("testdata/bad/undefined_room.xml", nil)
	if err == nil {
		t.Fatal("expected error for undefined room")
	}
	if !IsValidation(err) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if !errors.Is(err, types.ErrLevelSchema) {
		t.Errorf("expected a schema error, got %v", err)
	}
	ve := err.(*ValidationError)
	assertContains(t, ve.Warnings, "no title")
	assertContains(t, ve.Warnings, "newer than")
}

func TestLoad_LogsWarnings(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	dir := t.TempDir()
	data, err := os.ReadFile("testdata/caves.xml")
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "untitled.xml")
	untitled := strings.Replace(string(data), `title="Test Caves"`, `title=""`, 1)
	if err := os.WriteFile(path, []byte(untitled), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path, logger); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !strings.Contains(buf.String(), "level has no title") {
		t.Errorf("warning not logged:\n%s", buf.String())
	}
}

func TestLoad_MissingPath_Fails(t *testing.T) {
	if _, err := Load("testdata/nope.xml", nil); err == nil {
		t.Fatal("expected error for missing level")
	}
}

func TestLoad_EmptyDir_Fails(t *testing.T) {
	_, err := Load(t.TempDir(), nil)
	if err == nil || !strings.Contains(err.Error(), "no .lua files") {
		t.Fatalf("err = %v, want no .lua files", err)
	}
}

func TestLoad_BadLuaSyntax_Fails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "level.lua"), []byte("Level {"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir, nil); err == nil {
		t.Fatal("expected error for bad Lua syntax")
	}
}

func TestLoad_SandboxEnforced(t *testing.T) {
	L, _ := newTestVM()
	defer L.Close()

	for _, src := range []string{`os.execute("echo pwned")`, `dofile("x.lua")`, `math.randomseed(1)`} {
		if err := L.DoString(src); err == nil {
			t.Errorf("expected sandbox to block %s", src)
		}
	}
}

func TestLoad_FileOrdering(t *testing.T) {
	files := sortedLuaFiles([]string{"rooms.lua", "level.lua", "floor1.lua", "floor0.lua"})
	want := []string{"level.lua", "floor0.lua", "floor1.lua", "rooms.lua"}
	if !slices.Equal(files, want) {
		t.Errorf("order = %v, want %v", files, want)
	}
}

// assertContains checks that at least one string in the slice contains substr.
func assertContains(t *testing.T, strs []string, substr string) {
	t.Helper()
	for _, s := range strs {
		if strings.Contains(s, substr) {
			return
		}
	}
	t.Errorf("expected one of %v to contain %q", strs, substr)
}
