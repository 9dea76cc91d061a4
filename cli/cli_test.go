package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nathoo/mazecaves/engine"
	"github.com/nathoo/mazecaves/engine/events"
	"github.com/nathoo/mazecaves/engine/parser"
	"github.com/nathoo/mazecaves/loader"
	"github.com/nathoo/mazecaves/types"
)

const cavesPath = "../loader/testdata/caves.xml"

// newTestCLI wires a CLI to the test caves level with scripted input.
func newTestCLI(t *testing.T, levelPath, input string) (*CLI, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	c := &CLI{
		Bindings: parser.DefaultBindings(),
		In:       strings.NewReader(input),
		Out:      &out,
		SaveDir:  t.TempDir(),
	}
	c.Open = func(path string, obs events.Observer) (*engine.Engine, error) {
		level, err := loader.Load(path, nil)
		if err != nil {
			return nil, err
		}
		return engine.New(level, engine.Options{Observer: obs, Seed: 1}), nil
	}
	eng, err := c.Open(levelPath, c)
	if err != nil {
		t.Fatalf("open level: %v", err)
	}
	c.Engine = eng
	return c, &out
}

func run(t *testing.T, c *CLI) {
	t.Helper()
	if err := c.Run(nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRun_ShowsDescriptionAndGrid(t *testing.T) {
	c, out := newTestCLI(t, cavesPath, "/quit\n")
	run(t, c)

	got := out.String()
	if !strings.Contains(got, "A small cave.\nFind the way out.") {
		t.Errorf("missing decoded description:\n%s", got)
	}
	if !strings.Contains(got, "# @ ") {
		t.Errorf("missing player on the grid:\n%s", got)
	}
	if !strings.Contains(got, "[Goodbye.]") {
		t.Errorf("missing goodbye:\n%s", got)
	}
}

func TestRun_Playthrough(t *testing.T) {
	script := strings.Join([]string{
		"down 2",   // onto the setter button
		"use",      // take the red key
		"up 2",     // back to the corridor
		"right 13", // through the open door to the east edge
		"right",    // into room B
		"right 10", // onto the exit button
		"use",
		"left", // never read: the game has ended
	}, "\n") + "\n"
	c, out := newTestCLI(t, cavesPath, script)
	run(t, c)

	got := out.String()
	for _, want := range []string{"Click.", "You escaped!", "[The End.]"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if c.Engine.Running() {
		t.Error("engine should have stopped")
	}
	if !c.Engine.HasKey("red") {
		t.Error("red key should be held")
	}
}

func TestRun_DoorBlocksWithoutKey(t *testing.T) {
	c, _ := newTestCLI(t, cavesPath, "right 10\n/quit\n")
	run(t, c)

	if c.Engine.State.X != 7 {
		t.Errorf("X = %d, want 7 (stopped at the locked door)", c.Engine.State.X)
	}
}

func TestRun_SaveAndLoad(t *testing.T) {
	c, out := newTestCLI(t, cavesPath, "right\n/save slot\nright 3\n/load slot\n/debug\n/quit\n")
	run(t, c)

	if _, err := os.Stat(filepath.Join(c.SaveDir, "slot.save")); err != nil {
		t.Fatalf("save file: %v", err)
	}
	if c.Engine.State.X != 3 || c.Engine.State.Y != 3 {
		t.Errorf("restored at %d,%d, want 3,3", c.Engine.State.X, c.Engine.State.Y)
	}
	got := out.String()
	if !strings.Contains(got, "Game loaded from") {
		t.Errorf("missing load confirmation:\n%s", got)
	}
	if !strings.Contains(got, "[F0|0, 0|3, 3|CENTER]") {
		t.Errorf("missing debug line:\n%s", got)
	}
}

func TestRun_LoadMissingSave(t *testing.T) {
	c, out := newTestCLI(t, cavesPath, "/load nothing\n/quit\n")
	run(t, c)

	if !strings.Contains(out.String(), "Load failed") {
		t.Errorf("expected load failure:\n%s", out.String())
	}
}

func TestRun_MetaCommands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"info", "/info\n", "Test Caves"},
		{"help", "/help\n", "/save [name]"},
		{"map", "/map\n", "AB"},
		{"unknown", "/dance\n", "Unknown command: /dance"},
		{"bad input", "dance\n", "I don't understand"},
		{"nothing to repeat", "g\n", "Nothing to repeat."},
		{"debug toggle", "/debug\n/debug\n", "Debug view disabled."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, out := newTestCLI(t, cavesPath, tt.input+"/quit\n")
			run(t, c)
			if !strings.Contains(out.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out.String())
			}
		})
	}
}

func TestRun_Again(t *testing.T) {
	c, _ := newTestCLI(t, cavesPath, "right 2\nagain\n/quit\n")
	run(t, c)

	if c.Engine.State.X != 6 {
		t.Errorf("X = %d, want 6", c.Engine.State.X)
	}
}

func TestRun_CommentsAndEcho(t *testing.T) {
	c, out := newTestCLI(t, cavesPath, "# a comment\nright\n/quit\n")
	c.EchoInput = true
	run(t, c)

	if strings.Contains(out.String(), "a comment") {
		t.Error("comment lines should be skipped")
	}
	if !strings.Contains(out.String(), "> right\n") {
		t.Errorf("input not echoed:\n%s", out.String())
	}
}

func TestRun_VersionDeclined(t *testing.T) {
	data, err := os.ReadFile(cavesPath)
	if err != nil {
		t.Fatal(err)
	}
	old := filepath.Join(t.TempDir(), "old.xml")
	if err := os.WriteFile(old, []byte(strings.Replace(string(data), `version="2"`, `version="1"`, 1)), 0o644); err != nil {
		t.Fatal(err)
	}

	c, out := newTestCLI(t, old, "n\n")
	err = c.Run(nil)
	if !errors.Is(err, types.ErrDeclined) {
		t.Fatalf("Run = %v, want ErrDeclined", err)
	}
	if !strings.Contains(out.String(), "older version") {
		t.Errorf("missing version prompt:\n%s", out.String())
	}
}

func TestNotice_Plain(t *testing.T) {
	var out bytes.Buffer
	c := &CLI{Out: &out}
	c.Notice("The transporter failed.")
	if out.String() != "* The transporter failed.\n" {
		t.Errorf("Notice wrote %q", out.String())
	}
}
