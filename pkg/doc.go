// Package pkg provides the core libraries for Tromp lambda-calculus diagrams.
//
// # Overview
//
// A Tromp diagram draws a closed lambda term on a grid of cells: every
// abstraction is a horizontal bar, every variable a vertical line hanging
// from the bar of its binder, and every application a link joining the
// lines of its two sides. The pkg directory is organized into these areas:
//
//  1. [lambda] - Terms, parsing and formatting (classic and de Bruijn)
//  2. [tromp] - Grid layout and the [tromp/sink] output formats
//  3. [render] - SVG conversion and the [render/tree] syntax-tree view
//  4. [pipeline] - Orchestration (parse → layout → render) with caching
//  5. [cache] - File, memory, Redis and MongoDB cache backends
//
// # Architecture
//
// The typical data flow:
//
//	Expression text
//	       ↓
//	  [lambda] package (parse + scope check)
//	       ↓
//	  [tromp] package (cell grid)
//	       ↓
//	  [tromp/sink] package (text, SVG, JSON; PNG/PDF via [render])
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/tromp/pkg/lambda"
//	    "github.com/matzehuels/tromp/pkg/tromp"
//	    "github.com/matzehuels/tromp/pkg/tromp/sink"
//	)
//
//	t, _ := lambda.ParseClassic(`λf.λx.f (f x)`)
//	d, _ := tromp.Render(t)
//	fmt.Print(d.Cells())
//	svg := sink.RenderSVG(d, sink.WithCellSize(8))
//
// Through the pipeline, with caching:
//
//	runner := pipeline.NewRunner(cache.NewMemoryCache(), nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Expression: "λλ2(21)",
//	    Notation:   "debruijn",
//	    Formats:    []string{"txt", "svg"},
//	})
//
// # Supporting Packages
//
// [errors] - Coded errors shared by the CLI and HTTP API, plus input
// validation for expressions and output paths.
//
// [observability] - Hook interfaces for pipeline, cache and HTTP events.
//
// [buildinfo] - Version information injected at link time.
//
// [lambda]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/lambda
// [tromp]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/tromp
// [tromp/sink]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/tromp/sink
// [render]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/render
// [render/tree]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/render/tree
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/cache
// [errors]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tromp/pkg/buildinfo
package pkg
