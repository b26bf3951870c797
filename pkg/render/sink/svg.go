package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/matzehuels/deeptime/pkg/render"
)

// Theme holds the chrome colors of the SVG output.
type Theme struct {
	Background  string
	Grid        string
	Axis        string
	AxisText    string
	Marker      string
	SpeciesText string
	DotStroke   string
}

// DarkTheme matches the interactive timeline.
var DarkTheme = Theme{
	Background:  "#0c1018",
	Grid:        "#141a24",
	Axis:        "#1e2a38",
	AxisText:    "#506070",
	Marker:      "#d4a54a",
	SpeciesText: "#e8ecf0",
	DotStroke:   "#0c1018",
}

// LightTheme suits print output.
var LightTheme = Theme{
	Background:  "#ffffff",
	Grid:        "#eef0f3",
	Axis:        "#9aa4ae",
	AxisText:    "#4a5560",
	Marker:      "#b07d1a",
	SpeciesText: "#1b1b1b",
	DotStroke:   "#ffffff",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	theme     Theme
	title     string
	nav       bool
	fontStack string
}

// WithTheme selects the chrome colors.
func WithTheme(t Theme) SVGOption { return func(r *svgRenderer) { r.theme = t } }

// WithTitle adds a <title> element.
func WithTitle(s string) SVGOption { return func(r *svgRenderer) { r.title = s } }

// WithContext draws the context indicator ("Viewing: ...") in the top margin.
func WithContext() SVGOption { return func(r *svgRenderer) { r.nav = true } }

// WithFont sets the CSS font-family used by all text.
func WithFont(family string) SVGOption { return func(r *svgRenderer) { r.fontStack = family } }

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{theme: DarkTheme, fontStack: "Inter, Helvetica, Arial, sans-serif"}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// RenderSVG renders a snapshot as a standalone SVG document.
func RenderSVG(s *render.Snapshot, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)
	m := s.Metrics

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f" font-family="%s">`+"\n",
		m.Width, m.Height, m.Width, m.Height, escape(r.fontStack))
	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	fmt.Fprintf(&buf, `  <defs><clipPath id="clip"><rect width="%.2f" height="%.2f"/></clipPath></defs>`+"\n",
		m.InnerWidth, m.InnerHeight+m.Margin.Top+m.Margin.Bottom)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.theme.Background)
	if r.nav {
		renderContext(&buf, s, r.theme)
	}
	fmt.Fprintf(&buf, `  <g transform="translate(%.2f,%.2f)">`+"\n", m.Margin.Left, m.Margin.Top)
	buf.WriteString(`    <g clip-path="url(#clip)">` + "\n")
	for _, l := range render.DrawOrder {
		if l == render.LayerAxis {
			continue
		}
		renderLayer(&buf, s, l, r.theme)
	}
	buf.WriteString("    </g>\n")
	renderAxis(&buf, s, r.theme)
	buf.WriteString("  </g>\n</svg>\n")
	return buf.Bytes()
}

func renderLayer(w io.Writer, s *render.Snapshot, l render.Layer, t Theme) {
	fmt.Fprintf(w, `      <g class="%s">`+"\n", l)
	switch l {
	case render.LayerEons, render.LayerEras, render.LayerPeriods:
		for _, b := range s.Bands(l.Level()) {
			if b.Hidden {
				continue
			}
			fmt.Fprintf(w, `        <rect class="geo-bar" data-name="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s"/>`+"\n",
				escape(b.Name), b.Rect.X, b.Rect.Y, b.Rect.W, b.Rect.H, b.Color)
			if b.Label.Text != "" {
				fmt.Fprintf(w, `        <text class="geo-label" x="%.2f" y="%.2f" fill="%s" font-size="%.0f" text-anchor="middle" dominant-baseline="central">%s</text>`+"\n",
					b.Label.X, b.Label.Y, b.Label.Color, b.Label.FontSize, escape(b.Label.Text))
			}
		}
	case render.LayerGrid:
		for _, x := range s.Grid {
			fmt.Fprintf(w, `        <line x1="%.2f" x2="%.2f" y1="0" y2="%.2f" stroke="%s" stroke-width="0.5"/>`+"\n",
				x, x, s.Metrics.Bands.Axis, t.Grid)
		}
	case render.LayerExtinctions:
		for _, e := range s.Extinctions {
			fmt.Fprintf(w, `        <rect class="extinction-band" data-name="%s" x="%.2f" y="0" width="%.2f" height="%.2f" rx="%.2f" fill="%s" opacity="%.3f"/>`+"\n",
				escape(e.Name), e.Rect.X, e.Rect.W, e.Rect.H, e.Radius, e.Color, e.Opacity)
		}
	case render.LayerEvents:
		for _, e := range s.Events {
			fmt.Fprintf(w, `        <g class="event-marker" data-name="%s" transform="translate(%.2f,0)">`+"\n", escape(e.Name), e.X)
			fmt.Fprintf(w, `          <line y1="%.2f" y2="%.2f" stroke="%s" opacity="0.18"/>`+"\n", e.DotY, e.StemY2, e.Color)
			fmt.Fprintf(w, `          <circle cy="%.2f" r="%.1f" fill="%s" stroke="%s" stroke-width="1.5"/>`+"\n", e.DotY, e.Radius, e.Color, t.DotStroke)
			fmt.Fprintf(w, `          <text x="6" y="%.2f" fill="%s" font-size="%.0f" font-weight="600" opacity="%.2f">%s</text>`+"\n",
				e.Label.Y, e.Label.Color, e.Label.FontSize, e.Label.Opacity, escape(e.Label.Text))
			fmt.Fprintf(w, "        </g>\n")
		}
	case render.LayerSpecies:
		for _, sp := range s.Species {
			fmt.Fprintf(w, `        <rect class="species-bar" data-name="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" opacity="0.7"/>`+"\n",
				escape(sp.Name), sp.Rect.X, sp.Rect.Y, sp.Rect.W, sp.Rect.H, sp.Color)
			if sp.Label.Text != "" {
				fmt.Fprintf(w, `        <text class="species-label" x="%.2f" y="%.2f" fill="%s" font-size="%.0f" dominant-baseline="central" opacity="%.2f">%s</text>`+"\n",
					sp.Label.X, sp.Label.Y, t.SpeciesText, sp.Label.FontSize, sp.Label.Opacity, escape(sp.Label.Text))
			}
		}
	case render.LayerMarker:
		if mk := s.Marker; mk.Visible {
			fmt.Fprintf(w, `        <g class="yah" transform="translate(%.2f,0)">`+"\n", mk.X)
			fmt.Fprintf(w, `          <circle cy="%.2f" r="5" fill="%s"/>`+"\n", mk.Y, t.Marker)
			fmt.Fprintf(w, `          <text y="-6" text-anchor="end" fill="%s" font-size="10" font-weight="700">%s</text>`+"\n", t.Marker, escape(mk.Text))
			fmt.Fprintf(w, "        </g>\n")
		}
	}
	fmt.Fprintf(w, "      </g>\n")
}

func renderAxis(w io.Writer, s *render.Snapshot, t Theme) {
	fmt.Fprintf(w, `    <g class="axis" transform="translate(0,%.2f)">`+"\n", s.Metrics.Bands.Axis)
	fmt.Fprintf(w, `      <path d="M0,0H%.2f" stroke="%s"/>`+"\n", s.Metrics.InnerWidth, t.Axis)
	for _, tk := range s.Axis {
		fmt.Fprintf(w, `      <g class="tick" transform="translate(%.2f,0)"><line y2="6" stroke="%s"/><text y="9" dy="0.71em" text-anchor="middle" font-size="10" fill="%s">%s</text></g>`+"\n",
			tk.X, t.Axis, t.AxisText, escape(tk.Label))
	}
	fmt.Fprintf(w, "    </g>\n")
}

func renderContext(w io.Writer, s *render.Snapshot, t Theme) {
	c := s.Nav.Context
	fmt.Fprintf(w, `  <text class="context" x="%.2f" y="%.2f" font-size="11" fill="%s">Viewing: %s | %s</text>`+"\n",
		s.Metrics.Margin.Left, s.Metrics.Margin.Top-3, t.AxisText, escape(c.Name), escape(c.Range))
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
