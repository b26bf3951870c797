package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/format"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/render"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the time span and duration to node labels.
	Detailed bool

	// Focus limits the diagram to the subtree rooted at the named eon or
	// era. Empty means the whole tree.
	Focus string

	// LeftToRight lays the tree out horizontally.
	LeftToRight bool
}

// ToDOT converts the containment tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
func ToDOT(tree []dataset.Eon, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges [][2]string
	node := func(iv dataset.Interval) {
		fmt.Fprintf(&buf, "  %q [%s];\n", iv.Name, strings.Join(fmtAttrs(iv, fmtLabel(iv, opts.Detailed)), ", "))
	}
	for _, eon := range tree {
		inFocus := opts.Focus == "" || opts.Focus == eon.Name
		if inFocus {
			node(eon.Interval)
		}
		for _, era := range eon.Eras {
			eraFocus := inFocus || opts.Focus == era.Name
			if !eraFocus {
				continue
			}
			node(era.Interval)
			if inFocus {
				edges = append(edges, [2]string{eon.Name, era.Name})
			}
			for _, p := range era.Periods {
				node(p)
				edges = append(edges, [2]string{era.Name, p.Name})
			}
		}
	}

	buf.WriteString("\n")
	for _, e := range edges {
		fmt.Fprintf(&buf, "  %q -> %q;\n", e[0], e[1])
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(iv dataset.Interval, detailed bool) string {
	if !detailed {
		return iv.Name
	}
	return iv.Name + "\n" + format.Ma(iv.Start) + " – " + format.Ma(iv.End) + "\n" + format.Duration(iv.Start, iv.End)
}

func fmtAttrs(iv dataset.Interval, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if iv.Color != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", iv.Color), fmt.Sprintf("fontcolor=%q", lod.ContrastColor(iv.Color)))
	}
	if iv.Level == dataset.LevelEon {
		attrs = append(attrs, "penwidth=2")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the diagram scales from
// the origin regardless of the pt offsets Graphviz emits.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
