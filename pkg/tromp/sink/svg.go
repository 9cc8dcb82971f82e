package sink

import (
	"bytes"
	"fmt"
	"html"

	"github.com/matzehuels/tromp/pkg/tromp"
)

// DefaultCellSize is the edge length of one grid cell in SVG pixels.
const DefaultCellSize = 8

type SVGOption func(*svgRenderer)

type svgRenderer struct {
	cellSize   float64
	color      string
	background string
	title      string
}

func WithCellSize(px float64) SVGOption { return func(r *svgRenderer) { r.cellSize = px } }
func WithColor(c string) SVGOption      { return func(r *svgRenderer) { r.color = c } }
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }
func WithTitle(title string) SVGOption  { return func(r *svgRenderer) { r.title = title } }

// RenderSVG draws each horizontal run of filled cells as a single rect, so
// bars become one element and wires one element per row.
func RenderSVG(d *tromp.Diagram, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	w := float64(d.Width()) * r.cellSize
	h := float64(d.Height()) * r.cellSize

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" shape-rendering="crispEdges">`+"\n",
		w, h, w, h)
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", html.EscapeString(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", html.EscapeString(r.background))
	}

	fmt.Fprintf(&buf, `  <g fill="%s">`+"\n", html.EscapeString(r.color))
	for _, run := range Runs(d) {
		fmt.Fprintf(&buf, `    <rect x="%s" y="%s" width="%s" height="%s"/>`+"\n",
			num(float64(run.X)*r.cellSize), num(float64(run.Y)*r.cellSize),
			num(float64(run.Len)*r.cellSize), num(r.cellSize))
	}
	buf.WriteString("  </g>\n")
	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{cellSize: DefaultCellSize, color: "black"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.cellSize <= 0 {
		r.cellSize = DefaultCellSize
	}
	return r
}

// Run is a maximal horizontal stretch of filled cells.
type Run struct {
	X, Y, Len int
}

// Runs lists the filled runs of d row by row, left to right.
func Runs(d *tromp.Diagram) []Run {
	var runs []Run
	for y := 0; y < d.Height(); y++ {
		row := d.Row(y)
		for x := 0; x < len(row); {
			if !row[x] {
				x++
				continue
			}
			start := x
			for x < len(row) && row[x] {
				x++
			}
			runs = append(runs, Run{X: start, Y: y, Len: x - start})
		}
	}
	return runs
}

// num trims trailing zeros so integral coordinates print without decimals.
func num(v float64) string {
	return fmt.Sprintf("%g", v)
}
