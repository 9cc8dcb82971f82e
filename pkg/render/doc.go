// Package render converts rendered SVG into raster and print formats.
//
// Both the diagram sinks ([github.com/matzehuels/tromp/pkg/tromp/sink]) and
// the syntax-tree view ([tree]) produce SVG; [ToPNG] and [ToPDF] turn that
// into other formats using the external rsvg-convert tool from librsvg.
//
//	svg := sink.RenderSVG(d)
//	png, err := render.ToPNG(ctx, svg, 2.0)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [tree]: github.com/matzehuels/tromp/pkg/render/tree
package render
