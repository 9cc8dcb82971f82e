package pipeline

import (
	stderrors "errors"
	"fmt"

	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/render/tree"
	"github.com/matzehuels/tromp/pkg/tromp"
	"github.com/matzehuels/tromp/pkg/tromp/sink"
)

// Layout is the output of the layout stage: a Tromp diagram, or the DOT
// source of the syntax tree.
type Layout struct {
	VizType string
	Diagram *tromp.Diagram
	DOT     string
}

// GenerateLayout computes the layout of t. For Tromp diagrams a term with
// free variables fails with FREE_VARIABLE.
func GenerateLayout(t lambda.Term, opts Options) (Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return Layout{}, err
	}

	if opts.IsTree() {
		dot := tree.ToDOT(t, tree.Options{Classic: opts.NotationValue() == lambda.Classic})
		return Layout{VizType: VizTypeTree, DOT: dot}, nil
	}

	placement, _ := tromp.ParsePlacement(opts.Placement)
	reach, _ := tromp.ParseReach(opts.Reach)
	d, err := tromp.Render(t,
		tromp.WithPlacement(placement),
		tromp.WithReach(reach),
		tromp.WithLogger(opts.Logger),
	)
	if err != nil {
		var se *lambda.ScopeError
		if stderrors.As(err, &se) {
			return Layout{}, errors.Wrap(errors.ErrCodeFreeVariable, err, "term is not closed")
		}
		return Layout{}, errors.Wrap(errors.ErrCodeInvalidExpression, err, "layout")
	}
	return Layout{VizType: VizTypeTromp, Diagram: d}, nil
}

// MarshalLayout serializes a layout for caching.
func MarshalLayout(l Layout) ([]byte, error) {
	switch l.VizType {
	case VizTypeTree:
		return []byte(l.DOT), nil
	case VizTypeTromp:
		if l.Diagram == nil {
			return nil, fmt.Errorf("tromp layout has no diagram")
		}
		return sink.RenderJSON(l.Diagram)
	default:
		return nil, fmt.Errorf("unknown viz_type %q", l.VizType)
	}
}

// UnmarshalLayout restores a layout written by MarshalLayout.
func UnmarshalLayout(vizType string, data []byte) (Layout, error) {
	switch vizType {
	case VizTypeTree:
		if len(data) == 0 {
			return Layout{}, fmt.Errorf("empty DOT layout")
		}
		return Layout{VizType: VizTypeTree, DOT: string(data)}, nil
	case VizTypeTromp:
		d, _, err := sink.ReadJSON(data)
		if err != nil {
			return Layout{}, err
		}
		return Layout{VizType: VizTypeTromp, Diagram: d}, nil
	default:
		return Layout{}, fmt.Errorf("unknown viz_type %q", vizType)
	}
}
