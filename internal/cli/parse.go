package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/tromp/pkg/lambda"
	"github.com/matzehuels/tromp/pkg/pipeline"
	"github.com/matzehuels/tromp/pkg/tromp"
)

// parseInfo is what `tromp parse --json` prints.
type parseInfo struct {
	DeBruijn string `json:"debruijn"`
	Classic  string `json:"classic"`
	Size     int    `json:"size"`
	Leaves   int    `json:"leaves"`
	MaxDepth int    `json:"max_depth"`
	Closed   bool   `json:"closed"`
	Free     []int  `json:"free_positions,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

func (c *CLI) parseCommand() *cobra.Command {
	var (
		notation, file, fixture string
		asJSON                  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [expression]",
		Short: "Show how an expression is read",
		Long: `Parse an expression and print it in both notations together with its
size, abstraction depth and whether it is closed. Closed terms also report
the size of their diagram.`,
		Example: `  tromp parse 'λx.λy.x'
  tromp parse -n debruijn 'λλ2(21)' --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expr, _, err := c.readExpression(args, file, fixture)
			if err != nil {
				return err
			}
			opts := c.Config.PipelineOptions()
			opts.Expression = expr
			if notation != "" {
				opts.Notation = notation
			}
			if fixture != "" && notation == "" {
				opts.Notation = lambda.DeBruijn.String()
			}

			t, err := pipeline.Parse(opts)
			if err != nil {
				return err
			}
			info := describe(t)
			if asJSON {
				enc := json.NewEncoder(c.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			c.printParseInfo(info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&notation, "notation", "n", "", "input notation: classic (default), debruijn")
	cmd.Flags().StringVar(&file, "file", "", "read the expression from a file (- for stdin)")
	cmd.Flags().StringVar(&fixture, "fixture", "", "parse a built-in term")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print machine-readable JSON")

	return cmd
}

func describe(t lambda.Term) parseInfo {
	info := parseInfo{
		DeBruijn: lambda.Format(t, lambda.DeBruijn),
		Classic:  lambda.Format(t, lambda.Classic),
		Size:     lambda.Size(t),
		Leaves:   lambda.Leaves(t),
		MaxDepth: tromp.MaxDepth(t),
		Closed:   lambda.Closed(t),
	}
	for _, occ := range lambda.FreeVariables(t) {
		info.Free = append(info.Free, occ.Position)
	}
	if info.Closed {
		if d, err := tromp.Render(t); err == nil {
			info.Width, info.Height = d.Width(), d.Height()
		}
	}
	return info
}

func (c *CLI) printParseInfo(info parseInfo) {
	p := c.out()
	p.keyValue("de Bruijn", info.DeBruijn)
	p.keyValue("classic", info.Classic)
	p.keyValue("size", strconv.Itoa(info.Size))
	p.keyValue("leaves", strconv.Itoa(info.Leaves))
	p.keyValue("depth", strconv.Itoa(info.MaxDepth))
	if info.Closed {
		p.keyValue("closed", "yes")
		p.keyValue("diagram", fmt.Sprintf("%d×%d", info.Width, info.Height))
		return
	}
	p.keyValue("closed", fmt.Sprintf("no (free variables at %v)", info.Free))
	p.warning("Tromp diagrams need closed terms; try 'tromp render -t tree' instead")
}
