// Package render turns a view state into the geometry of one frame.
//
// # Overview
//
// An [Orchestrator] owns the prepared dataset and the current vertical
// layout. Each call to [Orchestrator.Pass] resolves the effective time scale
// for a transform, applies the level-of-detail policy, packs event labels
// into rows and emits a fresh [Snapshot]: every visible rectangle, marker,
// tick and label with final screen coordinates. Snapshots are never mutated
// after they are returned, so they can be handed to any sink or cached.
//
// A pass performs no I/O. The layout is recomputed only when the viewport
// dimensions change; everything else is recomputed from scratch.
//
// # Sinks
//
// The [sink] subpackage serializes snapshots (SVG, JSON, PNG and PDF). The
// [nodelink] subpackage draws the eon/era/period containment tree with
// Graphviz.
//
//	o := render.New(prepared)
//	snap, err := o.Pass(ctx, render.Viewport{Width: 1200, Height: 800}, view.Identity)
//	svg := sink.RenderSVG(snap)
//
// [sink]: github.com/matzehuels/deeptime/pkg/render/sink
// [nodelink]: github.com/matzehuels/deeptime/pkg/render/nodelink
package render
