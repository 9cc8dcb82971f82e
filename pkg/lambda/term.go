package lambda

import (
	"fmt"
	"strings"
)

// Term is a lambda-calculus term in de Bruijn form. The only implementations
// are [*Var], [*Abs] and [*App]; terms are finite trees and are never mutated
// once built.
type Term interface {
	fmt.Stringer
	isTerm()
}

// Var is a bound-variable reference. Index is 1-based: 1 refers to the
// nearest enclosing abstraction, 2 to the one outside it, and so on.
type Var struct {
	Index int
}

// Abs introduces one binder over Body.
type Abs struct {
	Body Term
}

// App applies Left to Right.
type App struct {
	Left  Term
	Right Term
}

func (*Var) isTerm() {}
func (*Abs) isTerm() {}
func (*App) isTerm() {}

func (v *Var) String() string { return Format(v, DeBruijn) }
func (a *Abs) String() string { return Format(a, DeBruijn) }
func (a *App) String() string { return Format(a, DeBruijn) }

// V returns a variable with the given de Bruijn index.
func V(index int) *Var { return &Var{Index: index} }

// L wraps body in one abstraction.
func L(body Term) *Abs { return &Abs{Body: body} }

// A applies left to right.
func A(left, right Term) *App { return &App{Left: left, Right: right} }

// Apps folds terms into a left-associated application chain:
// Apps(f, x, y) is ((f x) y). It panics when called without terms.
func Apps(terms ...Term) Term {
	if len(terms) == 0 {
		panic("lambda: Apps requires at least one term")
	}
	t := terms[0]
	for _, next := range terms[1:] {
		t = A(t, next)
	}
	return t
}

// Lams wraps body in n abstractions.
func Lams(n int, body Term) Term {
	for i := 0; i < n; i++ {
		body = L(body)
	}
	return body
}

// Size returns the number of nodes in t.
func Size(t Term) int {
	switch t := t.(type) {
	case *Var:
		return 1
	case *Abs:
		return 1 + Size(t.Body)
	case *App:
		return 1 + Size(t.Left) + Size(t.Right)
	default:
		return 0
	}
}

// Leaves returns the number of variable occurrences in t.
func Leaves(t Term) int {
	switch t := t.(type) {
	case *Var:
		return 1
	case *Abs:
		return Leaves(t.Body)
	case *App:
		return Leaves(t.Left) + Leaves(t.Right)
	default:
		return 0
	}
}

// Equal reports whether a and b are structurally identical.
func Equal(a, b Term) bool {
	switch a := a.(type) {
	case *Var:
		b, ok := b.(*Var)
		return ok && a.Index == b.Index
	case *Abs:
		b, ok := b.(*Abs)
		return ok && Equal(a.Body, b.Body)
	case *App:
		b, ok := b.(*App)
		return ok && Equal(a.Left, b.Left) && Equal(a.Right, b.Right)
	default:
		return a == nil && b == nil
	}
}

// FormatClassic prints t with generated binder names. Binders are named by
// their nesting depth: a, b, ..., z, a1, b1, ... Free variables print as
// free1, free2, ... counted past the outermost binder.
func FormatClassic(t Term) string {
	var b strings.Builder
	writeClassic(&b, t, 0)
	return b.String()
}

// BinderName returns the generated name of the abstraction at the given
// depth, counting the outermost as 1.
func BinderName(depth int) string {
	const letters = "abcdefghijklmnopqrstuvwxyz"
	i := depth - 1
	if i < len(letters) {
		return string(letters[i])
	}
	return fmt.Sprintf("%c%d", letters[i%len(letters)], i/len(letters))
}

func writeClassic(b *strings.Builder, t Term, depth int) {
	switch t := t.(type) {
	case *Var:
		if t.Index < 1 || t.Index > depth {
			fmt.Fprintf(b, "free%d", t.Index-depth)
			return
		}
		b.WriteString(BinderName(depth - t.Index + 1))
	case *Abs:
		b.WriteString("λ")
		b.WriteString(BinderName(depth + 1))
		b.WriteString(".")
		writeClassic(b, t.Body, depth+1)
	case *App:
		writeClassicOperand(b, t.Left, depth, false)
		b.WriteString(" ")
		writeClassicOperand(b, t.Right, depth, true)
	}
}

func writeClassicOperand(b *strings.Builder, t Term, depth int, right bool) {
	_, isAbs := t.(*Abs)
	_, isApp := t.(*App)
	if isAbs || (right && isApp) {
		b.WriteString("(")
		writeClassic(b, t, depth)
		b.WriteString(")")
		return
	}
	writeClassic(b, t, depth)
}

func writeDeBruijn(b *strings.Builder, t Term) {
	switch t := t.(type) {
	case *Var:
		if t.Index >= 1 && t.Index <= 9 {
			fmt.Fprintf(b, "%d", t.Index)
		} else {
			fmt.Fprintf(b, "{%d}", t.Index)
		}
	case *Abs:
		b.WriteString("λ")
		writeDeBruijn(b, t.Body)
	case *App:
		writeDeBruijnOperand(b, t.Left, false)
		writeDeBruijnOperand(b, t.Right, true)
	}
}

func writeDeBruijnOperand(b *strings.Builder, t Term, right bool) {
	_, isAbs := t.(*Abs)
	_, isApp := t.(*App)
	if isAbs || (right && isApp) {
		b.WriteString("(")
		writeDeBruijn(b, t)
		b.WriteString(")")
		return
	}
	writeDeBruijn(b, t)
}

// Format prints t in the given notation.
func Format(t Term, n Notation) string {
	if n == Classic {
		return FormatClassic(t)
	}
	var b strings.Builder
	writeDeBruijn(&b, t)
	return b.String()
}
