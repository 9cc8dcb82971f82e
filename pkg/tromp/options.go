package tromp

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Placement selects how the tick column for a variable wire is found when
// an abstraction bar is drawn.
type Placement int

const (
	// PlacementStride puts the tick for the i-th occurrence at column 1+4i.
	PlacementStride Placement = iota
	// PlacementTraced puts the tick at the column where the occurrence's
	// wire actually sits in the rendered body.
	PlacementTraced
)

func (p Placement) String() string {
	switch p {
	case PlacementStride:
		return "stride"
	case PlacementTraced:
		return "traced"
	default:
		return fmt.Sprintf("Placement(%d)", int(p))
	}
}

// ParsePlacement maps "stride" (or "") and "traced" to a Placement.
func ParsePlacement(s string) (Placement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "stride", "":
		return PlacementStride, nil
	case "traced":
		return PlacementTraced, nil
	default:
		return 0, fmt.Errorf("unknown placement %q (must be 'stride' or 'traced')", s)
	}
}

// Reach selects which abstraction bars receive a tick for an occurrence.
type Reach int

const (
	// ReachEnclosing ticks every bar whose depth is at least the depth of
	// the occurrence's binder.
	ReachEnclosing Reach = iota
	// ReachExact ticks only the bar of the binding abstraction.
	ReachExact
)

func (r Reach) String() string {
	switch r {
	case ReachEnclosing:
		return "enclosing"
	case ReachExact:
		return "exact"
	default:
		return fmt.Sprintf("Reach(%d)", int(r))
	}
}

// ParseReach maps "enclosing" (or "") and "exact" to a Reach.
func ParseReach(s string) (Reach, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "enclosing", "":
		return ReachEnclosing, nil
	case "exact":
		return ReachExact, nil
	default:
		return 0, fmt.Errorf("unknown reach %q (must be 'enclosing' or 'exact')", s)
	}
}

// Option configures [Render].
type Option func(*layout)

type layout struct {
	placement Placement
	reach     Reach
	logger    *log.Logger
	maxDepth  int
}

func WithPlacement(p Placement) Option { return func(l *layout) { l.placement = p } }
func WithReach(r Reach) Option         { return func(l *layout) { l.reach = r } }

// WithLogger enables a debug trace of each abstraction bar. A nil logger
// keeps tracing off.
func WithLogger(logger *log.Logger) Option {
	return func(l *layout) {
		if logger != nil {
			l.logger = logger
		}
	}
}

func newLayout(opts []Option) *layout {
	l := &layout{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}
