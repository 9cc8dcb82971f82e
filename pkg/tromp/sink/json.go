package sink

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/tromp/pkg/tromp"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	expression string
	notation   string
	placement  string
	reach      string
}

// WithExpression records the source text and its notation name.
func WithExpression(expr, notation string) JSONOption {
	return func(r *jsonRenderer) { r.expression = expr; r.notation = notation }
}

// WithLayout records the placement and reach the diagram was rendered with.
func WithLayout(p tromp.Placement, reach tromp.Reach) JSONOption {
	return func(r *jsonRenderer) { r.placement = p.String(); r.reach = reach.String() }
}

// Document is the JSON form of a diagram.
type Document struct {
	Width      int         `json:"width"`
	Height     int         `json:"height"`
	Rows       []string    `json:"rows"`
	Stats      tromp.Stats `json:"stats"`
	Expression string      `json:"expression,omitempty"`
	Notation   string      `json:"notation,omitempty"`
	Placement  string      `json:"placement,omitempty"`
	Reach      string      `json:"reach,omitempty"`
}

// RenderJSON exports d as a pretty-printed document whose rows use '.' for
// filled cells.
func RenderJSON(d *tromp.Diagram, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	doc := Document{
		Width:      d.Width(),
		Height:     d.Height(),
		Rows:       d.Lines(tromp.DotGlyph),
		Stats:      d.Stats(),
		Expression: r.expression,
		Notation:   r.notation,
		Placement:  r.placement,
		Reach:      r.reach,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ReadJSON restores a diagram written by [RenderJSON].
func ReadJSON(data []byte) (*tromp.Diagram, Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, Document{}, fmt.Errorf("decode diagram: %w", err)
	}
	if len(doc.Rows) != doc.Height {
		return nil, Document{}, fmt.Errorf("decode diagram: %d rows, height %d", len(doc.Rows), doc.Height)
	}
	for i, row := range doc.Rows {
		if n := len([]rune(row)); n != doc.Width {
			return nil, Document{}, fmt.Errorf("decode diagram: row %d has width %d, want %d", i, n, doc.Width)
		}
	}
	d := tromp.Restore(doc.Rows, doc.Stats.MaxDepth, doc.Stats.Leaves)
	return d, doc, nil
}
