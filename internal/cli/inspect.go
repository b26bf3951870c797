package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/format"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/view"
)

// Encodings for diagnostic output.
const (
	encTable = "table"
	encJSON  = "json"
	encYAML  = "yaml"
)

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// encode writes v as JSON or YAML.
func encode(p printer, enc string, v any) error {
	switch enc {
	case encJSON:
		e := json.NewEncoder(p.w)
		e.SetIndent("", "  ")
		return e.Encode(v)
	case encYAML:
		e := yaml.NewEncoder(p.w)
		e.SetIndent(2)
		defer e.Close()
		return e.Encode(v)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "invalid output encoding %q (must be table, json or yaml)", enc)
}

// layoutCommand prints the vertical layout for a viewport.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		width, height float64
		enc           string
		dataPath      string
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the band layout computed for a viewport",
		Example: `  deeptime layout --width 390 --height 844
  deeptime layout -e yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if width == 0 {
				width = c.cfg.Viewport.Width
			}
			if height == 0 {
				height = c.cfg.Viewport.Height
			}
			if dataPath == "" {
				dataPath = c.cfg.Dataset
			}
			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer runner.Close()

			data, hash, err := runner.Load(commandContext(cmd), dataPath)
			if err != nil {
				return err
			}
			m, err := runner.Orchestrator(data, hash).Metrics(render.Viewport{Width: width, Height: height})
			if err != nil {
				return err
			}

			p := printer{cmd.OutOrStdout()}
			if enc != encTable {
				return encode(p, enc, m)
			}
			printMetrics(p, m, data.MaxLane)
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width in px (default from config)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height in px (default from config)")
	cmd.Flags().StringVarP(&enc, "encoding", "e", encTable, "output: table, json, yaml")
	cmd.Flags().StringVar(&dataPath, "dataset", "", "dataset file (default builtin)")
	return cmd
}

func printMetrics(p printer, m layout.Metrics, maxLane int) {
	p.keyValue("Profile", m.Class.String())
	p.keyValue("Viewport", fmt.Sprintf("%.0f × %.0f", m.Width, m.Height))
	p.keyValue("Inner", fmt.Sprintf("%.0f × %.0f", m.InnerWidth, m.InnerHeight))
	p.keyValue("Margin", fmt.Sprintf("%.0f %.0f %.0f %.0f", m.Margin.Top, m.Margin.Right, m.Margin.Bottom, m.Margin.Left))
	p.keyValue("Lanes", strconv.Itoa(maxLane+1))
	p.keyValue("Row limit", fmt.Sprintf("%.0f px", m.RowThreshold))
	p.table([]string{"Band", "Y", "Height"}, [][]string{
		{"eon", formatFloat(m.Bands.Eon), formatFloat(m.Heights.Eon)},
		{"era", formatFloat(m.Bands.Era), formatFloat(m.Heights.Era)},
		{"period", formatFloat(m.Bands.Period), formatFloat(m.Heights.Period)},
		{"species", formatFloat(m.Bands.Species), formatFloat(m.Heights.Species)},
		{"events", formatFloat(m.Bands.EventBaseline), formatFloat(m.Heights.Event)},
		{"axis", formatFloat(m.Bands.Axis), "-"},
	})
}

// lanesCommand prints the species lane assignment.
func (c *CLI) lanesCommand() *cobra.Command {
	var dataPath string
	cmd := &cobra.Command{
		Use:   "lanes",
		Short: "Print species lifespans and their lanes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = c.cfg.Dataset
			}
			data, err := dataset.LoadPrepared(dataPath)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(data.Species))
			for _, s := range data.Species {
				rows = append(rows, []string{
					strconv.Itoa(s.Lane), swatch(s.Color) + " " + s.Name,
					format.Ma(s.Start), format.Ma(s.End), format.Duration(s.Start, s.End),
				})
			}
			p := printer{cmd.OutOrStdout()}
			p.table([]string{"Lane", "Species", "From", "To", "Span"}, rows)
			p.detail("%d species in %d lanes", len(data.Species), data.MaxLane+1)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataPath, "dataset", "", "dataset file (default builtin)")
	return cmd
}

// zoomCommand prints the transform that frames a time range.
func (c *CLI) zoomCommand() *cobra.Command {
	var (
		width, height float64
		dataPath      string
	)
	cmd := &cobra.Command{
		Use:   "zoom <from-ma> <to-ma>",
		Short: "Print the view transform that frames a time range",
		Example: `  deeptime zoom 252 66
  deeptime zoom 541 0 --width 390 --height 844`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.ParseFloat(args[0], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidRange, "from %q is not a number", args[0])
			}
			end, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return errors.New(errors.ErrCodeInvalidRange, "to %q is not a number", args[1])
			}
			if start < end {
				start, end = end, start
			}
			if width == 0 {
				width = c.cfg.Viewport.Width
			}
			if height == 0 {
				height = c.cfg.Viewport.Height
			}
			if dataPath == "" {
				dataPath = c.cfg.Dataset
			}

			runner, err := c.newRunner(true)
			if err != nil {
				return err
			}
			defer runner.Close()
			data, hash, err := runner.Load(commandContext(cmd), dataPath)
			if err != nil {
				return err
			}
			o := runner.Orchestrator(data, hash)
			nav, err := o.Navigator(render.Viewport{Width: width, Height: height})
			if err != nil {
				return err
			}

			p := printer{cmd.OutOrStdout()}
			if !nav.ZoomTo(start, end) {
				p.warning("Range %s – %s is empty, view unchanged", format.Ma(start), format.Ma(end))
			}
			t := nav.Transform()
			p.keyValue("Range", format.Ma(start)+" – "+format.Ma(end))
			p.keyValue("Transform", fmt.Sprintf("x=%s k=%s", formatFloat(t.X), formatFloat(t.K)))
			p.keyValue("Query", t.Query())
			mid := view.Compose(nav.Base(), t).Invert(nav.Width() / 2)
			ctx := lod.ContextAt(mid, t.K, data.Eons, data.Eras, data.Periods)
			p.keyValue("Context", ctx.Name)
			p.nextStep("Render it", fmt.Sprintf("%s render --x %s --k %s", appName, formatFloat(t.X), formatFloat(t.K)))
			return nil
		},
	}
	cmd.Flags().Float64Var(&width, "width", 0, "viewport width in px (default from config)")
	cmd.Flags().Float64Var(&height, "height", 0, "viewport height in px (default from config)")
	cmd.Flags().StringVar(&dataPath, "dataset", "", "dataset file (default builtin)")
	return cmd
}

// inspectCommand prints the details of a named interval, species or event.
func (c *CLI) inspectCommand() *cobra.Command {
	var dataPath string
	cmd := &cobra.Command{
		Use:   "inspect <name>",
		Short: "Show the details of an interval, species or event",
		Example: `  deeptime inspect Jurassic
  deeptime inspect "Great Oxidation Event"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dataPath == "" {
				dataPath = c.cfg.Dataset
			}
			data, err := dataset.LoadPrepared(dataPath)
			if err != nil {
				return err
			}
			name := strings.Join(args, " ")
			p := printer{cmd.OutOrStdout()}
			if iv, ok := findInterval(data, name); ok {
				printInterval(p, iv)
				return nil
			}
			if ev, ok := findEvent(data, name); ok {
				printEvent(p, ev)
				return nil
			}
			return errors.New(errors.ErrCodeNotFound, "nothing named %q in the dataset", name)
		},
	}
	cmd.Flags().StringVar(&dataPath, "dataset", "", "dataset file (default builtin)")
	return cmd
}

// findInterval looks up an eon, era, period or species by name, ignoring case.
func findInterval(data *dataset.Prepared, name string) (dataset.Interval, bool) {
	for _, iv := range data.Intervals() {
		if strings.EqualFold(iv.Name, name) {
			return iv, true
		}
	}
	for _, s := range data.Species {
		if strings.EqualFold(s.Name, name) {
			iv := s.Interval
			iv.Level = "species"
			return iv, true
		}
	}
	return dataset.Interval{}, false
}

func findEvent(data *dataset.Prepared, name string) (dataset.Event, bool) {
	for _, list := range [][]dataset.Event{data.Events, data.Extinctions} {
		for _, ev := range list {
			if strings.EqualFold(ev.Name, name) {
				return ev, true
			}
		}
	}
	return dataset.Event{}, false
}

func printInterval(p printer, iv dataset.Interval) {
	p.line(swatch(iv.Color) + " " + StyleTitle.Render(iv.Name) + " " + StyleDim.Render(string(iv.Level)))
	p.keyValue("Span", format.Ma(iv.Start)+" – "+format.Ma(iv.End))
	p.keyValue("Duration", format.Duration(iv.Start, iv.End))
	p.keyValue("24h clock", format.Clock24(iv.Start)+" – "+format.Clock24(iv.End))
	p.keyValue("On the clock", format.Duration24(iv.Start, iv.End))
	if iv.Description != "" {
		p.keyValue("About", iv.Description)
	}
	if iv.WikiURL != "" {
		p.keyValue("Wikipedia", iv.WikiURL)
	}
}

func printEvent(p printer, ev dataset.Event) {
	p.line(swatch(lod.EventColorFor(ev.Type)) + " " + StyleTitle.Render(ev.Name) + " " + StyleDim.Render(string(ev.Type)))
	p.keyValue("Date", format.Ma(ev.Date))
	p.keyValue("24h clock", format.Clock24(ev.Date))
	if ev.Type == dataset.EventExtinction {
		p.keyValue("Species lost", fmt.Sprintf("%.0f%%", ev.Severity))
	}
	if lod.IsMajor(ev.Name) {
		p.keyValue("Major", "yes")
	}
	if ev.Description != "" {
		p.keyValue("About", ev.Description)
	}
	if ev.WikiURL != "" {
		p.keyValue("Wikipedia", ev.WikiURL)
	}
}
