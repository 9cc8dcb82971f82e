package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/render/tree"
	"github.com/matzehuels/tromp/pkg/tromp/sink"
)

// Render generates output artifacts in the requested formats. t is only
// used to label JSON output and may be nil.
func Render(ctx context.Context, l Layout, t lambda.Term, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	if l.VizType == VizTypeTree {
		return renderTree(ctx, l, opts)
	}
	return renderTromp(ctx, l, t, opts)
}

func renderTromp(ctx context.Context, l Layout, t lambda.Term, opts Options) (map[string][]byte, error) {
	if l.Diagram == nil {
		return nil, fmt.Errorf("tromp layout has no diagram")
	}
	svgOpts := []sink.SVGOption{sink.WithCellSize(opts.CellSize)}
	if opts.Color != "" {
		svgOpts = append(svgOpts, sink.WithColor(opts.Color))
	}
	if t != nil {
		svgOpts = append(svgOpts, sink.WithTitle(lambda.FormatClassic(t)))
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatTXT:
			data = sink.RenderText(l.Diagram)
		case FormatSVG:
			data = sink.RenderSVG(l.Diagram, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, l.Diagram, opts.Scale, svgOpts...)
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, l.Diagram, svgOpts...)
		case FormatJSON:
			var jsonOpts []sink.JSONOption
			if t != nil {
				jsonOpts = append(jsonOpts, sink.WithExpression(lambda.Format(t, lambda.DeBruijn), lambda.DeBruijn.String()))
			}
			jsonOpts = append(jsonOpts, sink.WithLayout(placementOf(opts), reachOf(opts)))
			data, err = sink.RenderJSON(l.Diagram, jsonOpts...)
		default:
			return nil, fmt.Errorf("unsupported tromp format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderTree(ctx context.Context, l Layout, opts Options) (map[string][]byte, error) {
	if l.DOT == "" {
		return nil, fmt.Errorf("tree layout missing DOT source")
	}

	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatDOT:
			data = []byte(l.DOT)
		case FormatSVG:
			data, err = tree.RenderSVG(ctx, l.DOT)
		case FormatPNG:
			data, err = tree.RenderPNG(ctx, l.DOT, opts.Scale)
		case FormatPDF:
			data, err = tree.RenderPDF(ctx, l.DOT)
		default:
			return nil, fmt.Errorf("unsupported tree format: %s", format)
		}

		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}
