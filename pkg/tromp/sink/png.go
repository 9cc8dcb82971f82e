package sink

import (
	"context"

	"github.com/matzehuels/tromp/pkg/render"
	"github.com/matzehuels/tromp/pkg/tromp"
)

// RenderPNG rasterizes the SVG rendering of d. Requires rsvg-convert.
func RenderPNG(ctx context.Context, d *tromp.Diagram, scale float64, opts ...SVGOption) ([]byte, error) {
	return render.ToPNG(ctx, RenderSVG(d, opts...), scale)
}
