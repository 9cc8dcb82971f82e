// Package tree renders a lambda term as its syntax tree using Graphviz.
//
// It is the companion view to the Tromp diagram: abstractions appear as λ
// nodes, applications as @ nodes and variables as their de Bruijn index.
// Each variable also gets a dashed edge back to the abstraction that binds
// it, which is the relation a Tromp diagram draws as a tick on a bar.
//
//	dot := tree.ToDOT(term, tree.Options{})
//	svg, err := tree.RenderSVG(ctx, dot)
//
// The DOT source is itself an output format, so it can be saved and fed to
// external Graphviz tools. PNG and PDF go through [render.ToPNG] and
// [render.ToPDF] and need librsvg.
//
// [render.ToPNG]: github.com/matzehuels/tromp/pkg/render.ToPNG
// [render.ToPDF]: github.com/matzehuels/tromp/pkg/render.ToPDF
package tree
