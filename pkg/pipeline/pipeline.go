// Package pipeline provides the core rendering pipeline for deeptime.
//
// This package implements the complete load → pass → render pipeline used
// by the CLI and the HTTP server. Centralizing it keeps caching, defaults
// and validation identical across entry points.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: read and validate a dataset (or the builtin one) and prepare it
//  2. Pass: run one layout pass for a viewport and view transform
//  3. Render: encode the snapshot as SVG, PNG, PDF or JSON
//
// The tree visualization skips the pass and renders the containment tree
// of eons, eras and periods as a node-link diagram.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Width:   1200,
//	    Height:  700,
//	    Start:   252,
//	    End:     66,
//	    Formats: []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/deeptime/pkg/cache"
	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/render/sink"
	"github.com/matzehuels/deeptime/pkg/view"
)

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 1200.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 700.0

	// DefaultTheme is the default color theme.
	DefaultTheme = "dark"

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Visualization types.
const (
	VizTimeline = "timeline"
	VizTree     = "tree"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// ValidFormats is the set of supported output formats per visualization.
var ValidFormats = map[string]map[string]bool{
	VizTimeline: {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatJSON: true},
	VizTree:     {FormatSVG: true, FormatPNG: true, FormatPDF: true, FormatDOT: true},
}

// Themes maps theme names to SVG themes.
var Themes = map[string]sink.Theme{
	"dark":  sink.DarkTheme,
	"light": sink.LightTheme,
}

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Dataset string `json:"dataset,omitempty"` // path; empty selects the builtin dataset

	// Pass options
	VizType string  `json:"viz_type,omitempty"`
	Width   float64 `json:"width,omitempty"`
	Height  float64 `json:"height,omitempty"`
	X       float64 `json:"x,omitempty"`
	K       float64 `json:"k,omitempty"`
	Start   float64 `json:"start,omitempty"` // zoom-to-range, Ma; overrides X and K when Start > End
	End     float64 `json:"end,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Theme      string   `json:"theme,omitempty"`
	Title      string   `json:"title,omitempty"`
	Context    bool     `json:"context,omitempty"` // draw the context line
	Scale      float64  `json:"scale,omitempty"`
	Rasterizer string   `json:"rasterizer,omitempty"`

	// Tree options
	Focus    string `json:"focus,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`

	Refresh bool `json:"refresh,omitempty"` // bypass cache lookups

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateFormat checks that a format is valid for a visualization type.
func ValidateFormat(vizType, format string) error {
	if !ValidFormats[vizType][format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q for %s", format, vizType)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(vizType string, formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(vizType, f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTheme checks that a theme name is known.
func ValidateTheme(theme string) error {
	if _, ok := Themes[theme]; !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid theme %q (must be one of: dark, light)", theme)
	}
	return nil
}

// ValidateVizType checks that a visualization type is valid.
func ValidateVizType(vizType string) error {
	if vizType != VizTimeline && vizType != VizTree {
		return errors.New(errors.ErrCodeInvalidInput, "invalid viz_type %q (must be one of: timeline, tree)", vizType)
	}
	return nil
}

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.VizType == "" {
		o.VizType = VizTimeline
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.K == 0 {
		o.K = 1
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Theme == "" {
		o.Theme = DefaultTheme
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Rasterizer == "" {
		o.Rasterizer = string(sink.RasterChrome)
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	if err := ValidateVizType(o.VizType); err != nil {
		return err
	}
	if err := ValidateFormats(o.VizType, o.Formats); err != nil {
		return err
	}
	if err := ValidateTheme(o.Theme); err != nil {
		return err
	}
	if o.Width <= 0 || o.Height <= 0 {
		return errors.New(errors.ErrCodeInvalidViewport, "viewport must be positive, got %vx%v", o.Width, o.Height)
	}
	if o.HasRange() && (o.Start < 0 || o.End < 0) {
		return errors.New(errors.ErrCodeInvalidRange, "range must not be in the future: %v..%v", o.Start, o.End)
	}
	o.validated = true
	return nil
}

// HasRange reports whether the options request a zoom to a time range.
func (o *Options) HasRange() bool { return o.Start > o.End }

// Transform returns the explicit view transform.
func (o *Options) Transform() view.Transform { return view.Transform{X: o.X, K: o.K} }

// SnapshotKeyOpts returns cache key options for a resolved transform.
func (o *Options) SnapshotKeyOpts(t view.Transform) cache.SnapshotKeyOpts {
	return cache.SnapshotKeyOpts{Width: o.Width, Height: o.Height, X: t.X, K: t.K}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format, Theme: o.Theme, Title: o.Title}
	if o.Context {
		opts.Title += "\x00context"
	}
	if format == FormatPNG {
		opts.Scale = o.Scale
		opts.Rasterizer = o.Rasterizer
	}
	if o.VizType == VizTree {
		opts.Theme = ""
		opts.Title = o.Focus
		if o.Detailed {
			opts.Title += "\x00detailed"
		}
	}
	return opts
}
