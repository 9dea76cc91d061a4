package room

import (
	"fmt"
	"strings"

	"github.com/nathoo/mazecaves/types"
)

// Keys reports which keys the player holds.
type Keys interface {
	Has(key string) bool
}

// Attributes are shared by every object variant.
type Attributes struct {
	Piece      rune
	Collidable bool
	Notify     bool // show the notify glyph while the player stands here
	Instant    bool // buttons only: fire on entry
}

// Object is one of *Block, *Door or *Button.
type Object interface {
	attrs() *Attributes
}

// Block is a plain object. It blocks movement unless made non-collidable.
type Block struct {
	Attributes
}

// Door blocks movement depending on the player's keys. A normal door needs
// its key to open; an inverted door is shut while the key is held.
type Door struct {
	Attributes
	Key      string
	Inverted bool
}

// Button runs its actions when the player interacts with it, or on entry
// when it is instant.
type Button struct {
	Attributes
	Actions []types.ActionDef
}

func (b *Block) attrs() *Attributes  { return &b.Attributes }
func (d *Door) attrs() *Attributes   { return &d.Attributes }
func (b *Button) attrs() *Attributes { return &b.Attributes }

// NewObject builds an object from its definition. Attributes the level does
// not set keep the variant defaults.
func NewObject(def types.ObjectDef) (Object, error) {
	var obj Object
	switch def.Kind {
	case types.KindBlock:
		obj = &Block{Attributes{Piece: def.Piece, Collidable: true}}
	case types.KindDoor:
		obj = &Door{Attributes: Attributes{Piece: def.Piece}, Key: def.Key, Inverted: def.Inverted}
	case types.KindButton:
		obj = &Button{Attributes: Attributes{Piece: def.Piece, Notify: true}, Actions: def.Actions}
	default:
		return nil, fmt.Errorf("unknown object kind %d", def.Kind)
	}
	a := obj.attrs()
	if def.Collidable != nil {
		a.Collidable = *def.Collidable
	}
	if def.Notify != nil {
		a.Notify = *def.Notify
	}
	if def.Instant != nil {
		a.Instant = *def.Instant
	}
	return obj, nil
}

// AttrsOf returns the shared attributes of an object.
func AttrsOf(obj Object) Attributes {
	return *obj.attrs()
}

// Blocking reports whether obj stops the player from entering its tile.
func Blocking(obj Object, keys Keys) bool {
	switch o := obj.(type) {
	case *Block:
		return o.Collidable
	case *Door:
		if o.Collidable {
			return true
		}
		return !keys.Has(o.Key) != o.Inverted
	case *Button:
		return o.Collidable
	default:
		return false
	}
}

// Activated returns the button to fire when the player occupies obj: a
// button fires when the action key was pressed or when it is instant.
func Activated(obj Object, pressed bool) (*Button, bool) {
	switch o := obj.(type) {
	case *Button:
		if pressed || o.Instant {
			return o, true
		}
	case *Block, *Door, nil:
	}
	return nil, false
}

// visible reports whether obj's piece is drawn over the room background.
// Open doors show the background.
func visible(obj Object, keys Keys) bool {
	switch o := obj.(type) {
	case nil:
		return false
	case *Door:
		return Blocking(o, keys)
	default:
		return true
	}
}

// Describe renders an object for the debug view.
func Describe(obj Object, keys Keys) string {
	if obj == nil {
		return ""
	}
	a := obj.attrs()
	flags := fmt.Sprintf("c=%t,n=%t,i=%t", a.Collidable, a.Notify, a.Instant)
	switch o := obj.(type) {
	case *Block:
		return fmt.Sprintf("Block[%c,%s]", o.Piece, flags)
	case *Door:
		return fmt.Sprintf("Door[%c,key=%q,open=%t,%s]", o.Piece, o.Key, !Blocking(o, keys), flags)
	case *Button:
		var b strings.Builder
		fmt.Fprintf(&b, "Button[%c,%s]", o.Piece, flags)
		for _, act := range o.Actions {
			b.WriteString("\n  ")
			b.WriteString(DescribeAction(act))
		}
		return b.String()
	default:
		return ""
	}
}

// DescribeAction renders an action for the debug view.
func DescribeAction(a types.ActionDef) string {
	var attrs string
	switch a.Type {
	case types.ActionMessage:
		attrs = fmt.Sprintf("type=message,message=%q", a.Message)
	case types.ActionLadder:
		attrs = "type=ladder,floor=" + coordText(a.Floor)
	case types.ActionTeleporter:
		attrs = fmt.Sprintf("type=teleporter,trx=%s,try=%s,tx=%s,ty=%s",
			coordText(a.RoomX), coordText(a.RoomY), coordText(a.TileX), coordText(a.TileY))
	case types.ActionEnding:
		attrs = "type=ending"
	case types.ActionSetter:
		attrs = fmt.Sprintf("type=setter,key=%q,value=%q", a.Key, a.Value)
	default:
		attrs = "type=unknown"
	}
	if a.Condition != "" {
		attrs += fmt.Sprintf(",condition=%q", a.Condition)
	}
	return "Action[" + attrs + "]"
}

func coordText(c types.Coord) string {
	if c.Relative {
		return fmt.Sprintf("~%d", c.Value)
	}
	return fmt.Sprintf("%d", c.Value)
}
