package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/nathoo/mazecaves/types"
)

// fakeHost records every call the interpreter makes.
type fakeHost struct {
	keys     map[string]bool
	calls    []string
	teleErr  error
	ladder   error
	reloads  int
	messages []string
	notices  []string
}

func newHost(keys ...string) *fakeHost {
	h := &fakeHost{keys: map[string]bool{}}
	for _, k := range keys {
		h.keys[k] = true
	}
	return h
}

func (h *fakeHost) HasKey(key string) bool { return h.keys[key] }

func (h *fakeHost) SetKey(key string, held bool) bool {
	changed := h.keys[key] != held
	if held {
		h.keys[key] = true
	} else {
		delete(h.keys, key)
	}
	h.calls = append(h.calls, fmt.Sprintf("set %s=%t", key, held))
	return changed
}

func (h *fakeHost) Message(text string) {
	h.messages = append(h.messages, text)
	h.calls = append(h.calls, "message")
}

func (h *fakeHost) Notice(text string) {
	h.notices = append(h.notices, text)
	h.calls = append(h.calls, "notice")
}

func (h *fakeHost) Ladder(floor types.Coord) error {
	h.calls = append(h.calls, fmt.Sprintf("ladder %+v", floor))
	return h.ladder
}

func (h *fakeHost) Teleport(rx, ry, x, y types.Coord) error {
	h.calls = append(h.calls, "teleport")
	return h.teleErr
}

func (h *fakeHost) End() { h.calls = append(h.calls, "end") }

func (h *fakeHost) Reload() { h.reloads++ }

var discard = slog.New(slog.DiscardHandler)

func TestApply_RunsInOrder(t *testing.T) {
	h := newHost()
	actions := []types.ActionDef{
		{Type: types.ActionMessage, Message: "hello"},
		{Type: types.ActionEnding},
		{Type: types.ActionMessage, Message: "after"},
	}
	if err := Apply(actions, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"message", "end", "message"}
	if !slices.Equal(h.calls, want) {
		t.Errorf("calls = %v, want %v", h.calls, want)
	}
}

func TestApply_Conditions(t *testing.T) {
	h := newHost("red")
	actions := []types.ActionDef{
		{Type: types.ActionMessage, Message: "has red", Condition: "[red]"},
		{Type: types.ActionMessage, Message: "no blue", Condition: "![blue]"},
		{Type: types.ActionMessage, Message: "both", Condition: "[red] AND [blue]"},
	}
	if err := Apply(actions, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"has red", "no blue"}
	if !slices.Equal(h.messages, want) {
		t.Errorf("messages = %v, want %v", h.messages, want)
	}
}

func TestApply_BadConditionSkipsOnlyThatAction(t *testing.T) {
	h := newHost()
	actions := []types.ActionDef{
		{Type: types.ActionEnding, Condition: "(true"},
		{Type: types.ActionMessage, Message: "still runs"},
	}
	if err := Apply(actions, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := []string{"notice", "message"}
	if !slices.Equal(h.calls, want) {
		t.Errorf("calls = %v, want %v", h.calls, want)
	}
}

func TestApply_Setter(t *testing.T) {
	tests := []struct {
		name    string
		held    []string
		value   string
		wantKey bool
	}{
		{"adds key", nil, "true", true},
		{"removes key", []string{"k"}, "false", false},
		{"idempotent add", []string{"k"}, "true", true},
		{"idempotent remove", nil, "false", false},
		{"substitutes keys", []string{"a"}, "[a] AND ![b]", true},
		{"empty value clears", []string{"k"}, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHost(tt.held...)
			actions := []types.ActionDef{{Type: types.ActionSetter, Key: "k", Value: tt.value}}
			if err := Apply(actions, h, discard); err != nil {
				t.Fatalf("Apply: %v", err)
			}
			if h.keys["k"] != tt.wantKey {
				t.Errorf("key held = %v, want %v", h.keys["k"], tt.wantKey)
			}
			if h.reloads != 1 {
				t.Errorf("reloads = %d, want 1", h.reloads)
			}
		})
	}
}

func TestApply_SetterFailure(t *testing.T) {
	h := newHost()
	actions := []types.ActionDef{{Type: types.ActionSetter, Key: "k", Value: "(true"}}
	if err := Apply(actions, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(h.notices) != 1 || h.reloads != 0 || h.keys["k"] {
		t.Errorf("notices = %v, reloads = %d, keys = %v", h.notices, h.reloads, h.keys)
	}
}

func TestApply_TeleportFailureIsNotice(t *testing.T) {
	h := newHost()
	h.teleErr = fmt.Errorf("%w: off the grid", types.ErrTransportFailure)
	actions := []types.ActionDef{
		{Type: types.ActionTeleporter},
		{Type: types.ActionMessage, Message: "next"},
	}
	if err := Apply(actions, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(h.notices) != 1 || h.notices[0] != "The teleporter failed." {
		t.Errorf("notices = %v", h.notices)
	}
	if len(h.messages) != 1 {
		t.Errorf("following action did not run")
	}
}

func TestApply_LadderErrorStops(t *testing.T) {
	h := newHost()
	h.ladder = fmt.Errorf("floor 9: %w", types.ErrLevelSchema)
	actions := []types.ActionDef{
		{Type: types.ActionLadder, Floor: types.Coord{Relative: true, Value: 1}},
		{Type: types.ActionMessage, Message: "unreached"},
	}
	err := Apply(actions, h, discard)
	if !errors.Is(err, types.ErrLevelSchema) {
		t.Fatalf("error = %v, want ErrLevelSchema", err)
	}
	if len(h.messages) != 0 {
		t.Error("actions after a fatal ladder ran")
	}
}

func TestApply_UnknownTypeIgnored(t *testing.T) {
	h := newHost()
	if err := Apply([]types.ActionDef{{Type: "dance"}}, h, discard); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(h.calls) != 0 {
		t.Errorf("calls = %v", h.calls)
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`He said \'hi\'`, `He said "hi"`},
		{`one\ntwo`, "one\ntwo"},
		{"\n\t\tindented\n\t", "indented"},
		{`a \[color=red] b`, "a ERROR b"},
		{`\[x]\[y]!`, "ERRORERROR!"},
		{`open \[never closed`, "open ERROR"},
		{`[plain] brackets`, "[plain] brackets"},
	}
	for _, tt := range tests {
		if got := Decode(tt.in); got != tt.want {
			t.Errorf("Decode(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
