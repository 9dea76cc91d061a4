package loader

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/nathoo/mazecaves/engine/condition"
	"github.com/nathoo/mazecaves/engine/floor"
	"github.com/nathoo/mazecaves/engine/room"
	"github.com/nathoo/mazecaves/engine/transport"
	"github.com/nathoo/mazecaves/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []error
	Warnings []string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(msgs, "\n  "))
}

func (e *ValidationError) Unwrap() []error { return e.Errors }

// Known action types.
var validActionTypes = map[types.ActionType]bool{
	types.ActionMessage:    true,
	types.ActionLadder:     true,
	types.ActionTeleporter: true,
	types.ActionEnding:     true,
	types.ActionSetter:     true,
}

// validate builds every floor the way the engine will and checks the
// actions. The result is never nil; callers check Errors.
func validate(level *types.LevelDef) *ValidationError {
	ve := &ValidationError{}

	if level.Title == "" {
		ve.warn("level has no title")
	}
	if level.Version > types.LevelVersion {
		ve.warn("level version %d is newer than %d", level.Version, types.LevelVersion)
	}
	if _, ok := level.Floors[0]; !ok {
		ve.Errors = append(ve.Errors, &types.SchemaError{Where: "level", Msg: "floor 0 is required"})
	}

	ids := make([]int, 0, len(level.Floors))
	for id := range level.Floors {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	for _, id := range ids {
		def := level.Floors[id]
		where := fmt.Sprintf("floor %d", id)

		f, err := floor.Build(def, room.DefaultGlyphs)
		if err != nil {
			ve.Errors = append(ve.Errors, err)
			continue
		}
		if def.Player == nil {
			ve.Errors = append(ve.Errors, &types.SchemaError{Where: where, Msg: "no player start"})
		} else {
			p := def.Player
			if err := f.CheckStart(transport.Position{RX: p.RX, RY: p.RY, X: p.X, Y: p.Y}); err != nil {
				ve.Errors = append(ve.Errors, fmt.Errorf("%s: %w", where, err))
			}
		}

		used := map[rune]bool{}
		for _, line := range f.Lines() {
			for _, c := range line {
				used[c] = true
			}
		}
		refs := make([]rune, 0, len(def.Rooms))
		for ref := range def.Rooms {
			refs = append(refs, ref)
		}
		slices.Sort(refs)
		for _, ref := range refs {
			if !used[ref] {
				ve.warn("%s room %q is not on the floor map", where, ref)
			}
			for _, obj := range def.Rooms[ref].Objects {
				at := fmt.Sprintf("%s room %q button at %d,%d", where, ref, obj.X, obj.Y)
				for i, act := range obj.Actions {
					validateAction(act, fmt.Sprintf("%s action %d", at, i+1), id, level, ve)
				}
			}
		}
	}

	return ve
}

func validateAction(act types.ActionDef, where string, floorID int, level *types.LevelDef, ve *ValidationError) {
	never := func(string) bool { return false }

	if !validActionTypes[act.Type] {
		ve.warn("%s: unknown action type %q is ignored", where, act.Type)
		return
	}
	if act.Condition != "" {
		if _, err := condition.Check(act.Condition, never); err != nil {
			ve.warn("%s: condition: %v", where, err)
		}
	}

	switch act.Type {
	case types.ActionMessage:
		if act.Message == "" {
			ve.warn("%s: empty message", where)
		}
	case types.ActionLadder:
		target := transport.Apply(act.Floor, floorID)
		if _, ok := level.Floors[target]; !ok {
			ve.warn("%s: ladder leads to undefined floor %d", where, target)
		}
	case types.ActionSetter:
		if act.Key == "" {
			ve.Errors = append(ve.Errors, &types.SchemaError{Where: where, Msg: "setter has no key"})
		}
		if _, err := condition.Check(act.Value, never); err != nil {
			ve.warn("%s: setter value: %v", where, err)
		}
	}
}

func (ve *ValidationError) warn(format string, args ...any) {
	ve.Warnings = append(ve.Warnings, fmt.Sprintf(format, args...))
}

// IsValidation reports whether err carries level validation failures.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
