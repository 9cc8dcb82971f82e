package lambda

import "fmt"

// I is the identity combinator λx.x.
func I() Term { return L(V(1)) }

// K is the constant combinator λx.λy.x.
func K() Term { return L(L(V(2))) }

// S is the substitution combinator λx.λy.λz.x z (y z).
func S() Term { return Lams(3, A(A(V(3), V(1)), A(V(2), V(1)))) }

// Y is the fixed-point combinator λf.(λx.f (x x)) (λx.f (x x)).
func Y() Term {
	half := func() Term { return L(A(V(2), A(V(1), V(1)))) }
	return L(A(half(), half()))
}

// Omega is the self-applying divergent term (λx.x x) (λx.x x).
func Omega() Term {
	half := func() Term { return L(A(V(1), V(1))) }
	return A(half(), half())
}

// True is the Church boolean λt.λf.t.
func True() Term { return K() }

// False is the Church boolean λt.λf.f.
func False() Term { return L(L(V(1))) }

// Church returns the Church numeral λf.λx.f (f (... x)) with n applications.
// It panics for negative n.
func Church(n int) Term {
	if n < 0 {
		panic(fmt.Sprintf("lambda: negative Church numeral %d", n))
	}
	var body Term = V(1)
	for i := 0; i < n; i++ {
		body = A(V(2), body)
	}
	return L(L(body))
}

// Succ is λn.λf.λx.f (n f x).
func Succ() Term { return Lams(3, A(V(2), Apps(V(3), V(2), V(1)))) }

// Pred is λn.λf.λx.n (λg.λh.h (g f)) (λu.x) (λu.u).
func Pred() Term {
	step := L(L(A(V(1), A(V(2), V(4)))))
	return Lams(3, Apps(V(3), step, L(V(2)), L(V(1))))
}

// Add is λm.λn.λf.λx.m f (n f x).
func Add() Term { return Lams(4, Apps(V(4), V(2), Apps(V(3), V(2), V(1)))) }

// Mul is λm.λn.λf.m (n f).
func Mul() Term { return Lams(3, A(V(3), A(V(2), V(1)))) }

// Fixture is a named term used by the gallery and tests.
type Fixture struct {
	Name        string
	Description string
	Term        Term
}

// Named returns the fixture gallery in display order. Each call builds
// fresh terms.
func Named() []Fixture {
	return []Fixture{
		{Name: "I", Description: "identity", Term: I()},
		{Name: "K", Description: "constant / true", Term: K()},
		{Name: "false", Description: "Church false", Term: False()},
		{Name: "S", Description: "substitution", Term: S()},
		{Name: "Y", Description: "fixed-point combinator", Term: Y()},
		{Name: "omega", Description: "self-application (λx.x x)(λx.x x)", Term: Omega()},
		{Name: "0", Description: "Church zero", Term: Church(0)},
		{Name: "1", Description: "Church one", Term: Church(1)},
		{Name: "2", Description: "Church two", Term: Church(2)},
		{Name: "3", Description: "Church three", Term: Church(3)},
		{Name: "4", Description: "Church four", Term: Church(4)},
		{Name: "succ", Description: "successor", Term: Succ()},
		{Name: "pred", Description: "predecessor", Term: Pred()},
		{Name: "add", Description: "addition", Term: Add()},
		{Name: "mul", Description: "multiplication", Term: Mul()},
	}
}

// Lookup returns the named fixture, or false when no fixture has that name.
func Lookup(name string) (Fixture, bool) {
	for _, f := range Named() {
		if f.Name == name {
			return f, true
		}
	}
	return Fixture{}, false
}
