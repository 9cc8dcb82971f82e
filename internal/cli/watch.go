package cli

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tromp/internal/watch"
	"github.com/matzehuels/tromp/pkg/errors"
	"github.com/matzehuels/tromp/pkg/pipeline"
)

func (c *CLI) watchCommand() *cobra.Command {
	var (
		opts     renderOpts
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-render an expression file whenever it changes",
		Long: `Watch a file holding one expression and redraw its diagram each time the
file is saved. Without --output the text diagram is printed to the terminal;
with --output the requested formats are rewritten on every change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], opts, debounce)
		},
	}

	cmd.Flags().StringVarP(&opts.notation, "notation", "n", "", "input notation: classic (default), debruijn")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s) written with --output")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file or base path")
	cmd.Flags().StringVar(&opts.placement, "placement", "", "variable column placement: stride (default), traced")
	cmd.Flags().StringVar(&opts.reach, "reach", "", "binder tick rule: enclosing (default), exact")
	cmd.Flags().BoolVar(&opts.blocks, "blocks", false, "draw text output with █ instead of .")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before re-rendering")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, opts renderOpts, debounce time.Duration) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "watch")
	}
	ctx = withLogger(ctx, c.Logger)
	if opts.output == "" {
		opts.formats = pipeline.FormatTXT
	}
	// Every change is a fresh render, so the cache only gets in the way.
	opts.noCache = true

	handle := func(ctx context.Context, contents []byte) {
		c.watchRender(ctx, path, strings.TrimSpace(string(contents)), opts)
	}

	w, err := watch.New(path, handle, &watch.Options{Debounce: debounce, Logger: c.Logger})
	if err != nil {
		return err
	}

	p := c.out()
	p.info("Watching %s", w.Path())
	p.detail("press ctrl+c to stop")

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	handle(ctx, data)

	if err := w.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

// watchRender renders one revision of the file. Errors are reported and
// watching continues.
func (c *CLI) watchRender(ctx context.Context, path, expr string, opts renderOpts) {
	logger := loggerFromContext(ctx)
	p := c.out()
	p.line("")
	p.info("%s %s", StyleDim.Render(time.Now().Format("15:04:05")), path)

	if expr == "" {
		p.warning("file is empty")
		return
	}
	if opts.output != "" {
		if err := c.runRender(ctx, expr, path, opts); err != nil {
			p.error("%s", errors.UserMessage(err))
		}
		return
	}

	runner := c.newRunner(ctx, true)
	defer runner.Close()
	popts := c.pipelineOptions(expr, opts)
	popts.Formats = []string{pipeline.FormatTXT}
	result, err := runner.Execute(ctx, popts)
	if err != nil {
		logger.Debug("render failed", "err", err)
		p.error("%s", errors.UserMessage(err))
		return
	}
	text := string(result.Artifacts[pipeline.FormatTXT])
	if opts.blocks {
		text = strings.ReplaceAll(text, ".", "█")
	}
	p.diagram(text)
	p.detail("%d×%d · depth %d", result.Stats.Width, result.Stats.Height, result.Stats.MaxDepth)
}
