package pipeline

import (
	"context"

	"github.com/matzehuels/deeptime/pkg/buildinfo"
	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/render"
	"github.com/matzehuels/deeptime/pkg/render/nodelink"
	"github.com/matzehuels/deeptime/pkg/render/sink"
)

// RenderSnapshot encodes a snapshot in the requested formats.
func RenderSnapshot(ctx context.Context, snap *render.Snapshot, opts Options) (map[string][]byte, error) {
	svgOpts := buildSVGOptions(opts)
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var data []byte
		var err error

		switch format {
		case FormatSVG:
			data = sink.RenderSVG(snap, svgOpts...)
		case FormatPNG:
			data, err = sink.RenderPNG(ctx, snap,
				sink.WithPNGSVGOptions(svgOpts...),
				sink.WithScale(opts.Scale),
				sink.WithRasterizer(sink.Rasterizer(opts.Rasterizer)))
		case FormatPDF:
			data, err = sink.RenderPDF(ctx, snap, svgOpts...)
		case FormatJSON:
			data, err = sink.RenderJSON(snap, sink.WithJSONIndent(), sink.WithJSONVersion(buildinfo.Version))
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported timeline format %q", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderTree renders the eon/era/period containment tree as a node-link
// diagram.
func RenderTree(ctx context.Context, data *dataset.Prepared, opts Options) (map[string][]byte, error) {
	dot := nodelink.ToDOT(data.Tree, nodelink.Options{Detailed: opts.Detailed, Focus: opts.Focus})
	artifacts := make(map[string][]byte, len(opts.Formats))

	for _, format := range opts.Formats {
		var out []byte
		var err error

		switch format {
		case FormatDOT:
			out = []byte(dot)
		case FormatSVG:
			out, err = nodelink.RenderSVG(ctx, dot)
		case FormatPNG:
			out, err = nodelink.RenderPNG(ctx, dot, opts.Scale)
		case FormatPDF:
			out, err = nodelink.RenderPDF(ctx, dot)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported tree format %q", format)
		}

		if err != nil {
			return nil, errors.Wrap(errors.GetCodeOr(err, errors.ErrCodeInternal), err, "render tree %s", format)
		}
		artifacts[format] = out
	}
	return artifacts, nil
}

// buildSVGOptions builds SVG rendering options.
func buildSVGOptions(opts Options) []sink.SVGOption {
	svgOpts := []sink.SVGOption{sink.WithTheme(Themes[opts.Theme])}
	if opts.Title != "" {
		svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
	}
	if opts.Context {
		svgOpts = append(svgOpts, sink.WithContext())
	}
	return svgOpts
}
