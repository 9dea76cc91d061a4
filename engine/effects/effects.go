// Package effects executes a button's action list. Each action is gated by
// its own condition and applied through the Host; actions never call each
// other.
package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nathoo/mazecaves/engine/condition"
	"github.com/nathoo/mazecaves/types"
)

// Host is the part of the engine that actions drive.
type Host interface {
	HasKey(key string) bool
	SetKey(key string, held bool) bool
	Message(text string)
	Notice(text string)
	// Ladder moves to another floor. An error is fatal to the session.
	Ladder(floor types.Coord) error
	// Teleport jumps within the floor. A rejected jump returns an error
	// wrapping types.ErrTransportFailure.
	Teleport(rx, ry, x, y types.Coord) error
	End()
	Reload()
}

// Apply runs actions in order. Every action is evaluated on its own; a
// failed condition or a rejected teleport only skips that action. Apply
// returns early only on errors that end the session.
func Apply(actions []types.ActionDef, h Host, logger *slog.Logger) error {
	for _, act := range actions {
		ok, err := condition.Check(act.Condition, h.HasKey)
		if err != nil {
			logger.Warn("condition failed", "type", act.Type, "condition", act.Condition, "err", err)
			h.Notice(fmt.Sprintf("Could not evaluate the condition %q.", act.Condition))
			continue
		}
		if !ok {
			continue
		}
		logger.Debug("action", "type", act.Type)

		switch act.Type {
		case types.ActionMessage:
			h.Message(Decode(act.Message))

		case types.ActionLadder:
			if err := h.Ladder(act.Floor); err != nil {
				return err
			}

		case types.ActionTeleporter:
			err := h.Teleport(act.RoomX, act.RoomY, act.TileX, act.TileY)
			switch {
			case errors.Is(err, types.ErrTransportFailure):
				logger.Warn("teleport rejected", "err", err)
				h.Notice("The teleporter failed.")
			case err != nil:
				return err
			}

		case types.ActionEnding:
			h.End()

		case types.ActionSetter:
			held, err := setterValue(act.Value, h.HasKey)
			if err != nil {
				logger.Warn("setter failed", "key", act.Key, "value", act.Value, "err", err)
				h.Notice(fmt.Sprintf("Could not set the key %q to %q.", act.Key, act.Value))
				continue
			}
			h.SetKey(act.Key, held)
			h.Reload()

		default:
			logger.Debug("unknown action ignored", "type", act.Type)
		}
	}
	return nil
}

func setterValue(expr string, has func(string) bool) (bool, error) {
	sub, err := condition.Substitute(expr, has)
	if err != nil {
		return false, err
	}
	return condition.Evaluate(sub)
}

// Decode turns level text into display text: \' becomes a double quote,
// a \n escape becomes a line break, and raw tabs and line breaks left over
// from markup indentation are dropped. Any other \[...] escape is
// unsupported and shows as ERROR; an unclosed one runs to the end.
func Decode(text string) string {
	text = strings.NewReplacer("\t", "", "\r", "", "\n", "").Replace(text)
	text = strings.NewReplacer(`\'`, `"`, `\n`, "\n").Replace(text)
	for {
		start := strings.Index(text, `\[`)
		if start < 0 {
			return text
		}
		end := strings.Index(text[start:], "]")
		if end < 0 {
			return text[:start] + "ERROR"
		}
		text = text[:start] + "ERROR" + text[start+end+1:]
	}
}
