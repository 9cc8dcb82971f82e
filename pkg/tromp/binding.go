package tromp

import "github.com/matzehuels/tromp/pkg/lambda"

// Binding records one variable occurrence: Depth is the number of
// abstractions enclosing it, Index its de Bruijn index.
type Binding struct {
	Depth int
	Index int
}

// BinderDepth returns the depth of the abstraction that binds the
// occurrence, counting the outermost abstraction as 1.
func (b Binding) BinderDepth() int { return b.Depth - b.Index + 1 }

// MaxDepth returns the deepest abstraction nesting in t.
func MaxDepth(t lambda.Term) int {
	switch t := t.(type) {
	case *lambda.Abs:
		return 1 + MaxDepth(t.Body)
	case *lambda.App:
		return max(MaxDepth(t.Left), MaxDepth(t.Right))
	default:
		return 0
	}
}

// VariableOccurrences lists every variable in t in pre-order, left to
// right, where depth is the number of abstractions already enclosing t.
// The position of an entry in the result matches the position of its wire
// in the rendered diagram.
func VariableOccurrences(t lambda.Term, depth int) []Binding {
	var out []Binding
	var visit func(lambda.Term, int)
	visit = func(t lambda.Term, depth int) {
		switch t := t.(type) {
		case *lambda.Var:
			out = append(out, Binding{Depth: depth, Index: t.Index})
		case *lambda.Abs:
			visit(t.Body, depth+1)
		case *lambda.App:
			visit(t.Left, depth)
			visit(t.Right, depth)
		}
	}
	visit(t, depth)
	return out
}
