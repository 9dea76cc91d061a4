// Package condition evaluates the boolean expressions that gate button
// actions and compute setter values.
//
// An expression is an OR-list of AND-lists of literals. A literal is an
// optional "!" followed by a token; a token is true only when it reads
// "true" (any case), anything else is false. "AND" and "OR" are split as
// plain substrings, so a token containing them is cut apart. Evaluation
// never short-circuits.
package condition

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nathoo/mazecaves/types"
)

// Evaluate returns the value of expr. Parentheses are resolved innermost
// first: the rightmost "(" and the first ")" after it are evaluated and the
// whole group, parentheses included, is replaced by its value.
func Evaluate(expr string) (bool, error) {
	s := expr
	for {
		open := strings.LastIndex(s, "(")
		if open == -1 {
			if strings.Contains(s, ")") {
				return false, fmt.Errorf("%w: uneven parentheses in %q", types.ErrMalformedExpression, expr)
			}
			break
		}
		rel := strings.Index(s[open:], ")")
		if rel == -1 {
			return false, fmt.Errorf("%w: uneven parentheses in %q", types.ErrMalformedExpression, expr)
		}
		end := open + rel
		value := evalFlat(s[open+1 : end])
		s = s[:open] + strconv.FormatBool(value) + s[end+1:]
	}
	return evalFlat(s), nil
}

// Substitute replaces every "[name]" token with "true" or "false" depending
// on whether has reports the key as held.
func Substitute(expr string, has func(key string) bool) (string, error) {
	s := expr
	for {
		start := strings.Index(s, "[")
		if start == -1 {
			return s, nil
		}
		end := strings.Index(s, "]")
		if end < start {
			return "", fmt.Errorf("%w: unterminated key reference in %q", types.ErrMalformedExpression, expr)
		}
		name := s[start+1 : end]
		s = s[:start] + strconv.FormatBool(has(name)) + s[end+1:]
	}
}

// Check substitutes key references in expr and evaluates it. An empty
// expression is true.
func Check(expr string, has func(key string) bool) (bool, error) {
	resolved, err := Substitute(expr, has)
	if err != nil {
		return false, err
	}
	if resolved == "" {
		return true, nil
	}
	return Evaluate(resolved)
}

// evalFlat evaluates an expression without parentheses.
func evalFlat(expr string) bool {
	result := false
	for _, group := range split(expr, "OR") {
		all := true
		for _, lit := range split(group, "AND") {
			lit = strings.TrimSpace(lit)
			if strings.HasPrefix(lit, "!") {
				if isTrue(lit[1:]) {
					all = false
				}
			} else if !isTrue(lit) {
				all = false
			}
		}
		if all {
			result = true
		}
	}
	return result
}

func isTrue(token string) bool {
	return strings.EqualFold(token, "true")
}

// split cuts s around every sep. Trailing empty pieces are dropped, so an
// expression made only of separators yields no pieces at all.
func split(s, sep string) []string {
	if !strings.Contains(s, sep) {
		return []string{s}
	}
	parts := strings.Split(s, sep)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
