package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/pipeline"
)

// treeCommand creates the tree command for the containment hierarchy.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
	)
	opts := pipeline.Options{VizType: pipeline.VizTree}

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Render the eon, era and period hierarchy with Graphviz",
		Example: `  deeptime tree -f dot -o -
  deeptime tree --focus Mesozoic --detailed -f svg,pdf -o mesozoic`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if formatsStr == "" {
				formatsStr = pipeline.FormatSVG
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(pipeline.VizTree, opts.Formats); err != nil {
				return err
			}
			if opts.Dataset == "" {
				opts.Dataset = c.cfg.Dataset
			}
			opts.Logger = c.Logger

			p := printer{cmd.OutOrStdout()}
			if output == "-" {
				p = printer{cmd.ErrOrStderr()}
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			ctx := commandContext(cmd)
			prog := newProgress(loggerFromContext(ctx))
			res, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			prog.done("Rendered containment tree", passFields(res)...)
			if opts.Focus != "" {
				p.success("Tree of %s", StyleTitle.Render(opts.Focus))
			} else {
				p.success("Tree of %s", StyleTitle.Render("all eons"))
			}
			return writeArtifacts(p, res.Artifacts, opts.Formats, output)
		},
	}

	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "dataset file (default builtin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), dot, png, pdf (comma-separated)")
	cmd.Flags().StringVar(&opts.Focus, "focus", "", "limit to the subtree of an eon or era")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "add time spans to node labels")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion(pipeline.VizTree))
	_ = cmd.RegisterFlagCompletionFunc("focus", focusCompletion())

	return cmd
}
