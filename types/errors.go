package types

import (
	"errors"
	"fmt"
)

// Error taxonomy. Concrete errors wrap one of these so callers can use errors.Is.
var (
	ErrMalformedExpression = errors.New("malformed expression")
	ErrLevelSchema         = errors.New("level schema error")
	ErrOutOfBoundsStart    = errors.New("player start out of bounds")
	ErrTransportFailure    = errors.New("transport failure")
	ErrCorruptedSave       = errors.New("corrupted save")
	ErrGameOver            = errors.New("game over")
	ErrDeclined            = errors.New("level version declined")
)

// SchemaError reports invalid level data at a location such as "floor 0 room 'A'".
type SchemaError struct {
	Where string
	Msg   string
}

func (e *SchemaError) Error() string {
	if e.Where == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Where, e.Msg)
}

func (e *SchemaError) Unwrap() error { return ErrLevelSchema }
