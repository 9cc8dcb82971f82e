package lambda

import (
	"errors"
	"fmt"
)

// ErrNilTerm is returned by [Validate] when a term or one of its subterms is nil.
var ErrNilTerm = errors.New("nil term")

// Occurrence locates a variable leaf: Position is its ordinal in a pre-order,
// left-to-right walk, Depth the number of abstractions above it.
type Occurrence struct {
	Position int
	Depth    int
	Index    int
}

// ScopeError reports a variable that no enclosing abstraction binds.
type ScopeError struct {
	Occurrence
}

func (e *ScopeError) Error() string {
	if e.Index < 1 {
		return fmt.Sprintf("invalid de Bruijn index %d at variable %d", e.Index, e.Position)
	}
	return fmt.Sprintf("free variable: index %d at variable %d exceeds %d enclosing binders",
		e.Index, e.Position, e.Depth)
}

// FreeVariables returns the occurrences in t whose index does not resolve
// to an enclosing abstraction, in pre-order.
func FreeVariables(t Term) []Occurrence {
	var free []Occurrence
	pos := 0
	walk(t, 0, func(v *Var, depth int) {
		if v.Index < 1 || v.Index > depth {
			free = append(free, Occurrence{Position: pos, Depth: depth, Index: v.Index})
		}
		pos++
	})
	return free
}

// Closed reports whether every variable in t is bound.
func Closed(t Term) bool {
	return len(FreeVariables(t)) == 0
}

// Validate returns nil when t is a finite, nil-free, closed term. Otherwise
// it returns [ErrNilTerm] or a [*ScopeError] for the first offending
// variable.
func Validate(t Term) error {
	if hasNil(t) {
		return ErrNilTerm
	}
	if free := FreeVariables(t); len(free) > 0 {
		return &ScopeError{Occurrence: free[0]}
	}
	return nil
}

func hasNil(t Term) bool {
	switch t := t.(type) {
	case *Var:
		return t == nil
	case *Abs:
		return t == nil || hasNil(t.Body)
	case *App:
		return t == nil || hasNil(t.Left) || hasNil(t.Right)
	default:
		return true
	}
}

// walk visits every variable in pre-order with its abstraction depth.
func walk(t Term, depth int, visit func(*Var, int)) {
	switch t := t.(type) {
	case *Var:
		if t != nil {
			visit(t, depth)
		}
	case *Abs:
		if t != nil {
			walk(t.Body, depth+1, visit)
		}
	case *App:
		if t != nil {
			walk(t.Left, depth, visit)
			walk(t.Right, depth, visit)
		}
	}
}
