package sink

import (
	"context"

	"github.com/matzehuels/tromp/pkg/render"
	"github.com/matzehuels/tromp/pkg/tromp"
)

// RenderPDF converts the SVG rendering of d to PDF. Requires rsvg-convert.
func RenderPDF(ctx context.Context, d *tromp.Diagram, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(d, opts...))
}
