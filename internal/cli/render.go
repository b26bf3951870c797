package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/pipeline"
	"github.com/matzehuels/deeptime/pkg/session"
)

// renderFlags holds the flags shared by commands that run a layout pass.
type renderFlags struct {
	from, to float64
	viewID   string
	noCache  bool
}

func (c *CLI) addViewFlags(cmd *cobra.Command, opts *pipeline.Options, rf *renderFlags) {
	cmd.Flags().StringVar(&opts.Dataset, "dataset", "", "dataset file (toml, yaml or json; default builtin)")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "viewport width in px (default from config)")
	cmd.Flags().Float64Var(&opts.Height, "height", 0, "viewport height in px (default from config)")
	cmd.Flags().Float64Var(&opts.X, "x", 0, "view translation in px")
	cmd.Flags().Float64Var(&opts.K, "k", 1, "view scale factor (1 to 100000)")
	cmd.Flags().Float64Var(&rf.from, "from", 0, "zoom to a range starting at this age in Ma")
	cmd.Flags().Float64Var(&rf.to, "to", 0, "zoom to a range ending at this age in Ma")
	cmd.Flags().StringVar(&rf.viewID, "view", "", "start from a saved view")
	cmd.Flags().BoolVar(&rf.noCache, "no-cache", false, "disable caching")
}

// resolveOptions fills unset fields from the config and applies --view,
// --from and --to.
func (c *CLI) resolveOptions(ctx context.Context, cmd *cobra.Command, opts pipeline.Options, rf renderFlags) (pipeline.Options, error) {
	base := c.baseOptions()
	if opts.Dataset == "" {
		opts.Dataset = base.Dataset
	}
	if opts.Width == 0 {
		opts.Width = base.Width
	}
	if opts.Height == 0 {
		opts.Height = base.Height
	}
	if opts.Theme == "" {
		opts.Theme = base.Theme
	}
	if opts.Scale == 0 {
		opts.Scale = base.Scale
	}
	if opts.Rasterizer == "" {
		opts.Rasterizer = base.Rasterizer
	}
	opts.Logger = c.Logger

	if rf.viewID != "" {
		store, err := c.openStore(ctx)
		if err != nil {
			return opts, err
		}
		defer store.Close()
		sess, err := session.Lookup(ctx, store, rf.viewID)
		if err != nil {
			return opts, err
		}
		if !cmd.Flags().Changed("x") {
			opts.X = sess.State.X
		}
		if !cmd.Flags().Changed("k") {
			opts.K = sess.State.K
		}
		c.Logger.Debug("view loaded", "id", sess.ID, "name", sess.Name, "query", sess.State.Query())
	}

	if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
		opts.Start, opts.End = rf.from, rf.to
		if opts.Start < opts.End {
			opts.Start, opts.End = opts.End, opts.Start
		}
	}
	return opts, nil
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		rf         renderFlags
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a timeline frame to SVG, PNG, PDF or JSON",
		Long: `Render one frame of the timeline.

The view is given either as a transform (--x, --k), as a time range to frame
(--from, --to, in Ma) or as a saved view (--view). Snapshots and artifacts
are cached locally; --no-cache bypasses the cache.`,
		Example: `  deeptime render -o timeline.svg
  deeptime render --from 252 --to 66 -f svg,png -o mesozoic
  deeptime render --x -1400 --k 8 --theme light --context -f pdf`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(pipeline.VizTimeline, opts.Formats); err != nil {
				return err
			}
			if opts.Theme != "" {
				if err := pipeline.ValidateTheme(opts.Theme); err != nil {
					return err
				}
			}
			ctx := commandContext(cmd)
			resolved, err := c.resolveOptions(ctx, cmd, opts, rf)
			if err != nil {
				return err
			}
			p := printer{cmd.OutOrStdout()}
			if output == "-" {
				p = printer{cmd.ErrOrStderr()}
			}
			return c.runRender(ctx, p, resolved, output, rf.noCache)
		},
	}

	c.addViewFlags(cmd, &opts, &rf)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format), base path (multiple) or - for stdout")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, json (comma-separated)")
	cmd.Flags().StringVar(&opts.Theme, "theme", "", "color theme: dark, light")
	cmd.Flags().StringVar(&opts.Title, "title", "", "title drawn above the timeline")
	cmd.Flags().BoolVar(&opts.Context, "context", false, "draw the context indicator and eon buttons")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG pixel ratio")
	cmd.Flags().StringVar(&opts.Rasterizer, "rasterizer", "", "PNG rasterizer: chrome, rsvg")
	_ = cmd.RegisterFlagCompletionFunc("format", formatCompletion(pipeline.VizTimeline))
	_ = cmd.RegisterFlagCompletionFunc("theme", themeCompletion())
	_ = cmd.RegisterFlagCompletionFunc("rasterizer", rasterizerCompletion())

	return cmd
}

// runRender executes the pipeline and writes the artifacts.
func (c *CLI) runRender(ctx context.Context, p printer, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(loggerFromContext(ctx))
	slow := slices.Contains(opts.Formats, pipeline.FormatPNG) || slices.Contains(opts.Formats, pipeline.FormatPDF)
	var spinner *Spinner
	if slow {
		spinner = newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", strings.Join(opts.Formats, ", ")))
		spinner.Start()
	}

	res, err := runner.Execute(ctx, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		p.errorf("Render failed")
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifact(s)", len(res.Artifacts)), passFields(res)...)

	snap := res.Snapshot
	p.success("%s %s", StyleTitle.Render(snap.Nav.Context.Name), StyleDim.Render(snap.Nav.Context.Range))
	p.stats(res.Stats.Entities, res.CacheInfo.SnapshotHit)
	if err := writeArtifacts(p, res.Artifacts, opts.Formats, output); err != nil {
		return err
	}
	if output != "-" {
		p.nextStep("Share this view", appName+" view save --x "+formatFloat(snap.Transform.X)+" --k "+formatFloat(snap.Transform.K))
	}
	return nil
}
