// Package nodelink renders the geological containment tree as a node-link
// diagram.
//
// # Overview
//
// Eons, eras and periods become boxes filled with their chart color, and
// each parent points to its children. The diagram complements the
// timeline: it shows the hierarchy at a glance, independent of duration.
//
// # Usage
//
// Convert the tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(prepared.Tree, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Detailed: node labels include the time span and duration
//   - Focus: restrict the diagram to the subtree rooted at one interval
//   - LeftToRight: lay the tree out horizontally
//
// # Dependencies
//
// Rendering uses github.com/goccy/go-graphviz, a Graphviz build compiled to
// WebAssembly, so no system Graphviz installation is needed. PDF and PNG
// conversion require librsvg.
package nodelink
