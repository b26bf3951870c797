// Package pkg provides the core libraries for deeptime, a zoomable timeline
// of Earth's 4.54 billion year history.
//
// # Overview
//
// deeptime maps geologic time onto a square-root scale so that the recent
// past gets more room than the Hadean, then lets the viewer pan and zoom
// down to a scale of 100000. Each frame is computed as a pure function of
// the dataset, the viewport and the view transform.
//
// # Architecture
//
// The typical data flow through deeptime:
//
//	dataset (TOML, YAML or JSON)
//	         ↓
//	    [dataset] package (validate, assign species lanes)
//	         ↓
//	    [view] package (transform, navigator) + [timescale]
//	         ↓
//	    [render] package (layout, level of detail, label rows)
//	         ↓
//	    SVG/PNG/PDF/JSON output
//
// # Quick Start
//
//	data, _ := dataset.LoadPrepared("") // builtin dataset
//	o := render.New(data)
//	vp := render.Viewport{Width: 1200, Height: 700}
//
//	nav, _ := o.Navigator(vp)
//	nav.ZoomTo(252, 66) // frame the Mesozoic
//
//	snap, _ := o.Pass(ctx, vp, nav.Transform())
//	svg := sink.RenderSVG(snap, sink.WithContext())
//
// # Main Packages
//
// ## Geometry
//
// [timescale] - The square-root time scale and its inverse, plus the linear
// scale the view transform composes with it.
//
// [view] - View transforms (x, k), scale clamping, zoom-to-range, keyboard
// navigation and the query-string form of a view.
//
// [layout] - Vertical band layout for regular and compact viewports.
//
// [lod] - Level-of-detail rules: which intervals, events and labels are
// visible at a scale, and the context indicator.
//
// [pack] - Greedy interval packing used for species lanes and event label
// rows.
//
// [axis] - Nice tick values for the time axis.
//
// ## Rendering
//
// [render] - The orchestrator that turns a view into a [render.Snapshot].
// Subpackages sink (SVG, JSON, PNG, PDF) and nodelink (Graphviz containment
// tree) serialize it.
//
// ## Infrastructure
//
// [pipeline] - load → pass → render with caching, shared by the CLI and the
// HTTP API.
//
// [cache] - Content-addressed snapshot and artifact cache.
//
// [session] - Saved views with memory, file, Redis and MongoDB stores and a
// debounced publisher.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Hook interfaces for metrics and tracing.
//
// [errors] - Structured error codes.
//
// [timescale]: github.com/matzehuels/deeptime/pkg/timescale
// [view]: github.com/matzehuels/deeptime/pkg/view
// [layout]: github.com/matzehuels/deeptime/pkg/layout
// [lod]: github.com/matzehuels/deeptime/pkg/lod
// [pack]: github.com/matzehuels/deeptime/pkg/pack
// [axis]: github.com/matzehuels/deeptime/pkg/axis
// [render]: github.com/matzehuels/deeptime/pkg/render
// [render.Snapshot]: github.com/matzehuels/deeptime/pkg/render#Snapshot
// [pipeline]: github.com/matzehuels/deeptime/pkg/pipeline
// [cache]: github.com/matzehuels/deeptime/pkg/cache
// [session]: github.com/matzehuels/deeptime/pkg/session
// [config]: github.com/matzehuels/deeptime/pkg/config
// [observability]: github.com/matzehuels/deeptime/pkg/observability
// [errors]: github.com/matzehuels/deeptime/pkg/errors
// [dataset]: github.com/matzehuels/deeptime/pkg/dataset
package pkg
