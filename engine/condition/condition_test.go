package condition

import (
	"errors"
	"testing"

	"github.com/nathoo/mazecaves/types"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"true", true},
		{"TRUE", true},
		{"  True  ", true},
		{"false", false},
		{"yes", false},
		{"", false},
		{"!true", false},
		{"!false", true},
		{"! true", true}, // the token after "!" is not trimmed, so " true" reads as false
		{"true AND true", true},
		{"true AND false", false},
		{"false OR true", true},
		{"false AND true OR true", true},
		{"!false AND false", false},
		{"true OR false AND false", true},
		{"false OR false", false},
		{"true AND", true},    // trailing empty operand dropped
		{"AND", true},         // no operands at all
		{"OR", false},         // no groups at all
		{"trueORfalse", true}, // OR is split as a substring
		{"GRAND AND true", false},
		{"(true AND (false OR true))", true},
		{"((true))", true},
		{"(false) OR (true)", true},
		{"!(false)", true},
		{"(true AND false) OR (false AND true)", false},
		{"((false OR true) AND (true OR false)) AND !(false)", true},
	}
	for _, tt := range tests {
		got, err := Evaluate(tt.expr)
		if err != nil {
			t.Errorf("Evaluate(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvaluate_UnevenParentheses(t *testing.T) {
	for _, expr := range []string{"(true", "true)", ")(", "((true)", "(true))", "true) AND (false"} {
		_, err := Evaluate(expr)
		if !errors.Is(err, types.ErrMalformedExpression) {
			t.Errorf("Evaluate(%q) error = %v, want ErrMalformedExpression", expr, err)
		}
	}
}

func TestSubstitute(t *testing.T) {
	held := map[string]bool{"red": true, "blue key": true}
	has := func(k string) bool { return held[k] }

	tests := []struct {
		expr string
		want string
	}{
		{"", ""},
		{"true", "true"},
		{"[red]", "true"},
		{"[green]", "false"},
		{"[red] AND ![green]", "true AND !false"},
		{"[blue key] OR [red]", "true OR true"},
		{"([red])", "(true)"},
	}
	for _, tt := range tests {
		got, err := Substitute(tt.expr, has)
		if err != nil {
			t.Errorf("Substitute(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Substitute(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestSubstitute_Unterminated(t *testing.T) {
	has := func(string) bool { return true }
	for _, expr := range []string{"[red", "]red[", "true AND [x"} {
		if _, err := Substitute(expr, has); !errors.Is(err, types.ErrMalformedExpression) {
			t.Errorf("Substitute(%q) error = %v, want ErrMalformedExpression", expr, err)
		}
	}
}

func TestCheck(t *testing.T) {
	held := map[string]bool{"lever": true}
	has := func(k string) bool { return held[k] }

	tests := []struct {
		expr string
		want bool
	}{
		{"", true},
		{"[lever]", true},
		{"![lever]", false},
		{"[lever] AND [door]", false},
		{"([lever] AND ![door]) OR false", true},
	}
	for _, tt := range tests {
		got, err := Check(tt.expr, has)
		if err != nil {
			t.Errorf("Check(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Check(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}

	if _, err := Check("([lever]", has); !errors.Is(err, types.ErrMalformedExpression) {
		t.Errorf("Check with uneven parentheses: error = %v", err)
	}
}
