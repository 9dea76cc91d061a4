package loader

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathoo/mazecaves/types"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	level  *lua.LTable
	floors []rawFloor
	rooms  []rawRoom
}

// Load reads a level and returns its validated definitions. path may be an
// .xml level file, a single .lua file, or a directory of .lua files.
// Validation warnings are logged; errors are returned as *ValidationError.
func Load(path string, logger *slog.Logger) (*types.LevelDef, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", path, err)
	}

	var level *types.LevelDef
	switch {
	case info.IsDir():
		level, err = loadLuaDir(path)
	case strings.EqualFold(filepath.Ext(path), ".lua"):
		level, err = loadLua([]string{path})
	default:
		level, err = loadXMLFile(path)
	}
	if err != nil {
		return nil, err
	}
	level.Path = path

	ve := validate(level)
	for _, w := range ve.Warnings {
		logger.Warn("level warning", "path", path, "warning", w)
	}
	if len(ve.Errors) > 0 {
		return nil, ve
	}
	logger.Info("level loaded", "path", path, "title", level.Title, "floors", len(level.Floors))
	return level, nil
}

func loadXMLFile(path string) (*types.LevelDef, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading level %s: %w", path, err)
	}
	defer f.Close()

	level, err := ParseXML(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return level, nil
}

func loadLuaDir(dir string) (*types.LevelDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading level directory %s: %w", dir, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found in %s", dir)
	}

	paths := make([]string, 0, len(luaFiles))
	for _, f := range sortedLuaFiles(luaFiles) {
		paths = append(paths, filepath.Join(dir, f))
	}
	return loadLua(paths)
}

// loadLua runs the files in a sandboxed VM, in order, and compiles what
// they declared. The VM is discarded afterwards.
func loadLua(paths []string) (*types.LevelDef, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	openSafeLibs(L)
	sandbox(L)

	coll := &collector{}
	registerAPI(L, coll)

	for _, path := range paths {
		if err := L.DoFile(path); err != nil {
			return nil, fmt.Errorf("executing %s: %w", filepath.Base(path), err)
		}
	}

	level, err := compile(coll)
	if err != nil {
		return nil, fmt.Errorf("compiling level data: %w", err)
	}
	return level, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the level files.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	if mathTbl := L.GetGlobal("math"); mathTbl != lua.LNil {
		if tbl, ok := mathTbl.(*lua.LTable); ok {
			tbl.RawSetString("randomseed", lua.LNil)
		}
	}
}
