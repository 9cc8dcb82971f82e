package sink

import "github.com/matzehuels/tromp/pkg/tromp"

// TextOption configures [RenderText].
type TextOption func(*textRenderer)

type textRenderer struct {
	glyph rune
}

// WithGlyph sets the rune used for filled cells. The default is '.'.
func WithGlyph(r rune) TextOption { return func(t *textRenderer) { t.glyph = r } }

// WithBlocks draws filled cells with the full-block glyph.
func WithBlocks() TextOption { return WithGlyph(tromp.BlockGlyph) }

// RenderText returns the diagram as newline-terminated rows.
func RenderText(d *tromp.Diagram, opts ...TextOption) []byte {
	r := textRenderer{glyph: tromp.DotGlyph}
	for _, opt := range opts {
		opt(&r)
	}
	var out []byte
	for _, line := range d.Lines(r.glyph) {
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}
