package tree

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/render"
)

// Options configures syntax-tree rendering.
type Options struct {
	// Classic labels abstractions with generated binder names and variables
	// with the name they refer to instead of de Bruijn indices.
	Classic bool
	// HideBindings omits the dashed edges from variables to their binders.
	HideBindings bool
}

// ToDOT converts a term to Graphviz DOT. Nodes are numbered in pre-order,
// so the output is stable for equal terms.
func ToDOT(t lambda.Term, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=20, fontname=\"Helvetica\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	w := &writer{buf: &buf, opts: opts}
	w.node(t, nil)

	if !opts.HideBindings && len(w.bindings) > 0 {
		buf.WriteString("\n")
		for _, b := range w.bindings {
			fmt.Fprintf(&buf, "  n%d -> n%d [style=dashed, color=grey, constraint=false];\n", b[0], b[1])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

type writer struct {
	buf  *bytes.Buffer
	opts Options
	next int

	// bindings holds variable -> binder node pairs.
	bindings [][2]int
}

// node writes t and its subtree; binders holds the ids of enclosing
// abstraction nodes, innermost last.
func (w *writer) node(t lambda.Term, binders []int) int {
	id := w.next
	w.next++

	switch t := t.(type) {
	case *lambda.Var:
		label := strconv.Itoa(t.Index)
		bound := t.Index >= 1 && t.Index <= len(binders)
		if w.opts.Classic && bound {
			label = lambda.BinderName(len(binders) - t.Index + 1)
		}
		attrs := fmt.Sprintf("label=%q, shape=box, style=\"rounded,filled\"", label)
		if !bound {
			attrs += ", fillcolor=mistyrose"
		}
		fmt.Fprintf(w.buf, "  n%d [%s];\n", id, attrs)
		if bound {
			w.bindings = append(w.bindings, [2]int{id, binders[len(binders)-t.Index]})
		}

	case *lambda.Abs:
		label := "λ"
		if w.opts.Classic {
			label = "λ" + lambda.BinderName(len(binders)+1)
		}
		fmt.Fprintf(w.buf, "  n%d [label=%q, fillcolor=lightgrey];\n", id, label)
		child := w.node(t.Body, append(binders, id))
		fmt.Fprintf(w.buf, "  n%d -> n%d;\n", id, child)

	case *lambda.App:
		fmt.Fprintf(w.buf, "  n%d [label=\"@\"];\n", id)
		left := w.node(t.Left, binders)
		right := w.node(t.Right, binders)
		fmt.Fprintf(w.buf, "  n%d -> n%d [taillabel=\"f\"];\n", id, left)
		fmt.Fprintf(w.buf, "  n%d -> n%d [taillabel=\"x\"];\n", id, right)
	}
	return id
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized root element with a plain
// pixel viewBox so the SVG scales like the diagram sink output.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders DOT source as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT source as PNG via SVG conversion.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
