// Package sink serializes render snapshots.
//
// # Overview
//
// A "sink" transforms a computed [render.Snapshot] into a final output
// format:
//
//   - SVG: standalone vector image, layers in draw order
//   - JSON: the snapshot geometry for external renderers
//   - PNG: raster image via headless Chrome, or rsvg-convert
//   - PDF: print-ready output via rsvg-convert
//
// # SVG Output
//
// [RenderSVG] draws the snapshot the way the interactive timeline does:
// geological bands, grid, extinction bands, events, species lanes, the
// present-day marker and the axis, clipped to the inner drawing area.
//
//	svg := sink.RenderSVG(snap, sink.WithTheme(sink.DarkTheme), sink.WithTitle("Mesozoic"))
//
// # PNG and PDF Output
//
// [RenderPNG] screenshots the SVG in headless Chrome through chromedp by
// default; [WithRasterizer] switches to rsvg-convert. [RenderPDF] always uses
// rsvg-convert:
//
//	png, err := sink.RenderPNG(ctx, snap)
//	pdf, err := sink.RenderPDF(ctx, snap)
//
// [render.Snapshot]: github.com/matzehuels/deeptime/pkg/render.Snapshot
package sink
