package tromp

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/tromp/pkg/lambda"
)

// Render lays out t as a Tromp diagram. The term must be closed: free
// variables are reported as a [*lambda.ScopeError] and nil subterms as
// [lambda.ErrNilTerm]. No partial diagram is returned on error.
func Render(t lambda.Term, opts ...Option) (*Diagram, error) {
	if err := lambda.Validate(t); err != nil {
		return nil, err
	}
	l := newLayout(opts)
	l.maxDepth = MaxDepth(t)
	l.logger.Debug("layout", "term", t, "max_depth", l.maxDepth,
		"placement", l.placement, "reach", l.reach)

	d, wires := l.render(t, 0)
	d.maxDepth = l.maxDepth
	d.leaves = len(wires)
	return d, nil
}

// RenderFromDeBruijn parses text in de Bruijn notation and renders it.
func RenderFromDeBruijn(text string, opts ...Option) (*Diagram, error) {
	t, err := lambda.ParseDeBruijn(text)
	if err != nil {
		return nil, err
	}
	return Render(t, opts...)
}

// RenderFromClassic parses text in named-variable notation and renders it.
func RenderFromClassic(text string, opts ...Option) (*Diagram, error) {
	t, err := lambda.ParseClassic(text)
	if err != nil {
		return nil, err
	}
	return Render(t, opts...)
}

// render returns the diagram for t at the given abstraction depth together
// with the column of every variable wire, in pre-order.
func (l *layout) render(t lambda.Term, depth int) (*Diagram, []int) {
	switch t := t.(type) {
	case *lambda.Var:
		return l.variable()
	case *lambda.Abs:
		return l.abstraction(t, depth)
	case *lambda.App:
		return l.application(t, depth)
	default:
		panic("tromp: unvalidated term")
	}
}

// A variable is a stub of wire two rows tall in the middle of three columns.
func (l *layout) variable() (*Diagram, []int) {
	d := NewDiagram(3, 2)
	d.set(1, 0)
	d.set(1, 1)
	return d, []int{1}
}

// An abstraction is a bar across the body, followed by a row of ticks
// joining the bar to the wires it reaches.
func (l *layout) abstraction(t *lambda.Abs, depth int) (*Diagram, []int) {
	inner := depth + 1
	vars := VariableOccurrences(t.Body, inner)
	body, wires := l.render(t.Body, inner)

	width := body.Width()
	d := NewDiagram(width, body.Height()+2)
	for x := 0; x < width; x++ {
		d.set(x, 0)
	}
	d.blit(body, 0, 2)

	ticks := 0
	for i, v := range vars {
		if !l.reaches(v, inner) {
			continue
		}
		x := 1 + 4*i
		if l.placement == PlacementTraced {
			x = wires[i]
		}
		d.set(x, 1)
		ticks++
	}
	if l.logger.GetLevel() <= log.DebugLevel {
		l.logger.Debug("abstraction", "depth", inner, "of", l.maxDepth,
			"width", width, "height", d.Height(), "wires", len(vars), "ticks", ticks)
	}
	return d, wires
}

func (l *layout) reaches(v Binding, depth int) bool {
	if l.reach == ReachExact {
		return v.BinderDepth() == depth
	}
	return v.BinderDepth() <= depth
}

// An application places both sides next to each other, extends each side's
// leftmost wire down to a shared junction row and continues the left wire
// one row below it.
func (l *layout) application(t *lambda.App, depth int) (*Diagram, []int) {
	lhs, lw := l.render(t.Left, depth)
	rhs, rw := l.render(t.Right, depth)

	lwidth, lh := lhs.Width(), lhs.Height()
	rh := rhs.Height()
	height := max(lh, rh) + 2
	d := NewDiagram(lwidth+rhs.Width()+1, height)
	d.blit(lhs, 0, 0)
	d.blit(rhs, lwidth+1, 0)

	for y := lh - 1; y < height-1; y++ {
		d.set(1, y)
	}
	for y := rh - 1; y < height-1; y++ {
		d.set(lwidth+2, y)
	}
	for x := 1; x < lwidth+3; x++ {
		d.set(x, height-2)
	}
	d.set(1, height-1)

	wires := make([]int, 0, len(lw)+len(rw))
	wires = append(wires, lw...)
	for _, x := range rw {
		wires = append(wires, x+lwidth+1)
	}
	return d, wires
}
