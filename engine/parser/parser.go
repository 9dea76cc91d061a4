// Package parser converts typed commands into engine inputs.
// Intentionally dumb: words are looked up in a binding table.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/nathoo/mazecaves/types"
)

// MaxRepeat caps the count in commands like "left 5".
const MaxRepeat = 99

// Bindings maps command words to inputs.
type Bindings map[string]types.Input

// DefaultBindings returns the built-in word table.
func DefaultBindings() Bindings {
	return NewBindings(
		[]string{"left", "west", "a", "h"},
		[]string{"up", "north", "w", "k"},
		[]string{"right", "east", "d", "l"},
		[]string{"down", "south", "s", "j"},
		[]string{"action", "use", "press", "e", "x"},
	)
}

// NewBindings builds a table from per-input word lists.
func NewBindings(left, up, right, down, action []string) Bindings {
	b := Bindings{}
	add := func(words []string, in types.Input) {
		for _, w := range words {
			b[strings.ToLower(w)] = in
		}
	}
	add(left, types.InputLeft)
	add(up, types.InputUp)
	add(right, types.InputRight)
	add(down, types.InputDown)
	add(action, types.InputAction)
	return b
}

// Parse converts a command line into a sequence of inputs. Each word is a
// bound command, a count repeating the previous command, or a run of
// single-letter commands such as "wwd".
func (b Bindings) Parse(line string) ([]types.Input, error) {
	var inputs []types.Input
	for _, w := range strings.Fields(strings.ToLower(line)) {
		if in, ok := b[w]; ok {
			inputs = append(inputs, in)
			continue
		}
		if n, err := strconv.Atoi(w); err == nil {
			if len(inputs) == 0 {
				return nil, fmt.Errorf("count %d has nothing to repeat", n)
			}
			if n < 1 || n > MaxRepeat {
				return nil, fmt.Errorf("count %d out of range 1..%d", n, MaxRepeat)
			}
			last := inputs[len(inputs)-1]
			for range n - 1 {
				inputs = append(inputs, last)
			}
			continue
		}
		run, ok := b.letters(w)
		if !ok {
			return nil, fmt.Errorf("unknown command %q", w)
		}
		inputs = append(inputs, run...)
	}
	return inputs, nil
}

func (b Bindings) letters(word string) ([]types.Input, bool) {
	if utf8.RuneCountInString(word) < 2 {
		return nil, false
	}
	var run []types.Input
	for _, r := range word {
		in, ok := b[string(r)]
		if !ok {
			return nil, false
		}
		run = append(run, in)
	}
	return run, true
}

// Meta reports whether line is a front-end command such as "/save" and
// splits it into the command name and its argument.
func Meta(line string) (cmd, arg string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", "", false
	}
	cmd, arg, _ = strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(arg), true
}
