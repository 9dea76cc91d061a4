package loader

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nathoo/mazecaves/types"
)

// parseCoord reads a coordinate attribute. An empty value keeps the current
// coordinate, "~n" is an offset from it, and a plain integer is absolute.
func parseCoord(s string) (types.Coord, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return types.Stay, nil
	}
	rest, relative := strings.CutPrefix(s, "~")
	n, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return types.Coord{}, fmt.Errorf("bad coordinate %q", s)
	}
	return types.Coord{Relative: relative, Value: n}, nil
}

// parseDirection reads a transport direction. Any case is accepted.
func parseDirection(s string) (types.Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LEFT":
		return types.Left, nil
	case "UP":
		return types.Up, nil
	case "RIGHT":
		return types.Right, nil
	case "DOWN":
		return types.Down, nil
	}
	return types.None, fmt.Errorf("bad direction %q", s)
}

// parsePiece returns the first character of a piece attribute.
func parsePiece(s string) (rune, error) {
	for _, r := range s {
		return r, nil
	}
	return 0, fmt.Errorf("missing piece")
}

// parseFlag reads an optional boolean attribute. Empty keeps the default;
// anything other than "true" in any case is false.
func parseFlag(s string) *bool {
	if s == "" {
		return nil
	}
	b := strings.EqualFold(strings.TrimSpace(s), "true")
	return &b
}

// parseRoomRef checks that a room reference is a single letter.
func parseRoomRef(s string) (rune, error) {
	r := []rune(s)
	if len(r) != 1 || !unicode.IsLetter(r[0]) {
		return 0, fmt.Errorf("room reference %q is not a single letter", s)
	}
	return r[0], nil
}

// doorKey flattens line breaks in a door key to spaces.
func doorKey(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
