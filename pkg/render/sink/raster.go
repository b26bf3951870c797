package sink

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/render"
)

// Rasterizer selects the PNG backend.
type Rasterizer string

const (
	// RasterChrome screenshots the SVG in headless Chrome.
	RasterChrome Rasterizer = "chrome"
	// RasterRSVG converts with rsvg-convert.
	RasterRSVG Rasterizer = "rsvg"
)

// DefaultRasterTimeout bounds a headless Chrome screenshot.
const DefaultRasterTimeout = 30 * time.Second

// PNGOption configures PNG rendering.
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	svgOpts    []SVGOption
	scale      float64
	rasterizer Rasterizer
	timeout    time.Duration
}

// WithPNGSVGOptions passes options through to the underlying SVG renderer.
func WithPNGSVGOptions(opts ...SVGOption) PNGOption {
	return func(r *pngRenderer) { r.svgOpts = opts }
}

// WithScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption {
	return func(r *pngRenderer) { r.scale = s }
}

// WithRasterizer selects the PNG backend (default RasterChrome).
func WithRasterizer(b Rasterizer) PNGOption {
	return func(r *pngRenderer) { r.rasterizer = b }
}

// WithRasterTimeout bounds the headless browser run.
func WithRasterTimeout(d time.Duration) PNGOption {
	return func(r *pngRenderer) { r.timeout = d }
}

// RenderPNG renders the snapshot as PNG via SVG.
func RenderPNG(ctx context.Context, s *render.Snapshot, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, rasterizer: RasterChrome, timeout: DefaultRasterTimeout}
	for _, opt := range opts {
		opt(&r)
	}
	svg := RenderSVG(s, r.svgOpts...)
	switch r.rasterizer {
	case RasterRSVG:
		return render.ToPNG(ctx, svg, r.scale)
	case RasterChrome, "":
		return screenshot(ctx, svg, s.Metrics.Width, s.Metrics.Height, r.scale, r.timeout)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown rasterizer %q", r.rasterizer)
}

// screenshot loads the SVG as a data URI in headless Chrome and captures
// the root element.
func screenshot(ctx context.Context, svg []byte, width, height, scale float64, timeout time.Duration) ([]byte, error) {
	dataURI := "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString(svg)

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Headless,
		chromedp.WindowSize(int(width), int(height)),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var buf []byte
	tasks := chromedp.Tasks{
		chromedp.Navigate(dataURI),
		chromedp.WaitVisible(`svg`, chromedp.ByQuery),
		chromedp.ScreenshotScale(`svg`, scale, &buf, chromedp.ByQuery),
	}
	if err := chromedp.Run(runCtx, tasks); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(errors.ErrCodeTimeout, err, "headless chrome screenshot")
		}
		return nil, errors.Wrap(errors.ErrCodeUnsupported, err, "headless chrome screenshot (is Chrome installed?)")
	}
	if len(buf) == 0 {
		return nil, errors.New(errors.ErrCodeInternal, "headless chrome returned an empty screenshot")
	}
	return buf, nil
}

// RenderPDF renders the snapshot as PDF via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, s *render.Snapshot, opts ...SVGOption) ([]byte, error) {
	return render.ToPDF(ctx, RenderSVG(s, opts...))
}
