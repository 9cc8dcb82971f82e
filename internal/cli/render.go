package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/pipeline"
	"github.com/matzehuels/tromp/pkg/tromp/sink"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	notation  string
	formats   string
	output    string
	vizType   string
	placement string
	reach     string
	cellSize  float64
	scale     float64
	color     string
	file      string
	fixture   string
	blocks    bool
	noCache   bool
	refresh   bool
}

func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [expression]",
		Short: "Render a lambda term as a Tromp diagram",
		Long: `Render a lambda term as a Tromp diagram or a syntax tree.

The expression is read from the argument, from --file (use - for stdin), or
from a built-in fixture with --fixture. Text output goes to stdout unless
--output is given; every other format is written to a file.`,
		Example: `  tromp render 'λf.λx.f (f x)'
  tromp render -n debruijn '(λ11)(λ11)' -f svg,png -o omega
  tromp render --fixture Y -t tree -f svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, source, err := c.readExpression(args, opts.file, opts.fixture)
			if err != nil {
				return err
			}
			if opts.fixture != "" && !cmd.Flags().Changed("notation") {
				opts.notation = lambda.DeBruijn.String()
			}
			return c.runRender(cmd.Context(), expr, source, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.notation, "notation", "n", "", "input notation: classic (default), debruijn")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): txt, svg, png, pdf, json, dot (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&opts.vizType, "type", "t", "", "visualization: tromp (default), tree")
	cmd.Flags().StringVar(&opts.placement, "placement", "", "variable column placement: stride (default), traced")
	cmd.Flags().StringVar(&opts.reach, "reach", "", "binder tick rule: enclosing (default), exact")
	cmd.Flags().Float64Var(&opts.cellSize, "cell-size", 0, "SVG cell size in pixels")
	cmd.Flags().Float64Var(&opts.scale, "scale", 0, "PNG resolution multiplier")
	cmd.Flags().StringVar(&opts.color, "color", "", "SVG fill color")
	cmd.Flags().StringVar(&opts.file, "file", "", "read the expression from a file (- for stdin)")
	cmd.Flags().StringVar(&opts.fixture, "fixture", "", "render a built-in term (see 'tromp gallery')")
	cmd.Flags().BoolVar(&opts.blocks, "blocks", false, "draw text output with █ instead of .")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")

	_ = cmd.RegisterFlagCompletionFunc("fixture", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		var names []string
		for _, f := range lambda.Named() {
			names = append(names, f.Name+"\t"+f.Description)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

// pipelineOptions overlays the flags on the configured defaults.
func (c *CLI) pipelineOptions(expr string, opts renderOpts) pipeline.Options {
	p := c.Config.PipelineOptions()
	p.Expression = expr
	p.Logger = c.Logger
	p.Refresh = opts.refresh
	if opts.notation != "" {
		p.Notation = opts.notation
	}
	if opts.vizType != "" && opts.vizType != p.VizType {
		p.VizType = opts.vizType
		p.Formats = nil
	}
	if f := parseFormats(opts.formats); len(f) > 0 {
		p.Formats = f
	}
	if opts.placement != "" {
		p.Placement = opts.placement
	}
	if opts.reach != "" {
		p.Reach = opts.reach
	}
	if opts.cellSize > 0 {
		p.CellSize = opts.cellSize
	}
	if opts.scale > 0 {
		p.Scale = opts.scale
	}
	if opts.color != "" {
		p.Color = opts.color
	}
	return p
}

func (c *CLI) runRender(ctx context.Context, expr, source string, opts renderOpts) error {
	popts := c.pipelineOptions(expr, opts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	paths, err := outputPaths(popts.Formats, opts.output, source)
	if err != nil {
		return err
	}

	runner := c.newRunner(ctx, opts.noCache)
	defer runner.Close()

	prog := newProgress(c.Logger)
	var spinner *Spinner
	if needsConverter(popts.Formats) && isatty.IsTerminal(os.Stderr.Fd()) {
		spinner = newSpinner(ctx, os.Stderr, "Rendering...")
		spinner.Start()
	}
	result, err := runner.Execute(ctx, popts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %s", strings.Join(popts.Formats, ", ")))

	p := c.out()
	for _, format := range popts.Formats {
		data := result.Artifacts[format]
		if format == pipeline.FormatTXT && opts.blocks && result.Layout.Diagram != nil {
			data = sink.RenderText(result.Layout.Diagram, sink.WithBlocks())
		}

		path := paths[format]
		if path == "" {
			if _, err := c.stdout.Write(data); err != nil {
				return err
			}
			continue
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPath, err, "write %s", path)
		}
		p.file(path)
	}

	if len(paths) > 0 {
		p.stats(result.Stats.Width, result.Stats.Height, result.Stats.MaxDepth, result.CacheInfo.RenderHit)
	}
	return nil
}

func needsConverter(formats []string) bool {
	for _, f := range formats {
		if f == pipeline.FormatPNG || f == pipeline.FormatPDF {
			return true
		}
	}
	return false
}

// outputPaths decides where each format goes. An empty path means stdout,
// which only text formats use, and only when no output was requested.
func outputPaths(formats []string, output, source string) (map[string]string, error) {
	paths := make(map[string]string)
	if output == "" {
		base := "diagram"
		if source != "" {
			base = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		}
		for _, f := range formats {
			if f == pipeline.FormatTXT || f == pipeline.FormatDOT && len(formats) == 1 {
				continue
			}
			paths[f] = base + "." + f
		}
		return paths, nil
	}

	if err := errors.ValidatePath(output); err != nil {
		return nil, err
	}
	if len(formats) == 1 {
		paths[formats[0]] = output
		return paths, nil
	}
	base := output
	if ext := strings.TrimPrefix(filepath.Ext(output), "."); pipeline.ValidFormats[ext] {
		base = strings.TrimSuffix(output, "."+ext)
	}
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths, nil
}

// readExpression returns the expression and, when it came from a file, the
// file's path (used to name outputs).
func (c *CLI) readExpression(args []string, file, fixture string) (string, string, error) {
	sources := 0
	for _, set := range []bool{len(args) > 0, file != "", fixture != ""} {
		if set {
			sources++
		}
	}
	switch {
	case sources == 0:
		return "", "", errors.New(errors.ErrCodeInvalidInput, "no expression: pass one as an argument, or use --file or --fixture")
	case sources > 1:
		return "", "", errors.New(errors.ErrCodeInvalidInput, "use only one of an argument, --file and --fixture")
	}

	switch {
	case fixture != "":
		f, ok := lambda.Lookup(fixture)
		if !ok {
			return "", "", errors.New(errors.ErrCodeNotFound, "unknown fixture %q (see 'tromp gallery')", fixture)
		}
		return lambda.Format(f.Term, lambda.DeBruijn), f.Name, nil
	case file == "-" || len(args) > 0 && args[0] == "-":
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return "", "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), "", nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return "", "", errors.Wrap(errors.ErrCodeFileNotFound, err, "expression file")
			}
			return "", "", fmt.Errorf("read %s: %w", file, err)
		}
		return strings.TrimSpace(string(data)), file, nil
	default:
		return args[0], "", nil
	}
}
