package sink

import (
	"encoding/json"
	"slices"

	"github.com/matzehuels/deeptime/pkg/render"
)

// JSONOption configures JSON rendering via [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	indent  bool
	dataset string
	version string
	layers  []render.Layer
}

// WithJSONIndent pretty-prints the output.
func WithJSONIndent() JSONOption { return func(r *jsonRenderer) { r.indent = true } }

// WithJSONDataset records the dataset content hash the snapshot was built
// from.
func WithJSONDataset(hash string) JSONOption { return func(r *jsonRenderer) { r.dataset = hash } }

// WithJSONVersion records the producing build's version.
func WithJSONVersion(v string) JSONOption { return func(r *jsonRenderer) { r.version = v } }

// WithJSONLayers restricts the output to the given layers. Viewport,
// metrics, transform and nav are always included.
func WithJSONLayers(layers ...render.Layer) JSONOption {
	return func(r *jsonRenderer) { r.layers = layers }
}

type jsonOutput struct {
	Version string `json:"version,omitempty"`
	Dataset string `json:"dataset,omitempty"`
	*render.Snapshot
}

// RenderJSON exports the snapshot geometry.
func RenderJSON(s *render.Snapshot, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	snap := s
	if len(r.layers) > 0 {
		snap = filterLayers(s, r.layers)
	}
	out := jsonOutput{Version: r.version, Dataset: r.dataset, Snapshot: snap}
	if r.indent {
		return json.MarshalIndent(out, "", "  ")
	}
	return json.Marshal(out)
}

// filterLayers returns a shallow copy of s with unselected layers emptied.
func filterLayers(s *render.Snapshot, keep []render.Layer) *render.Snapshot {
	c := *s
	has := func(l render.Layer) bool { return slices.Contains(keep, l) }
	if !has(render.LayerEons) {
		c.Eons = nil
	}
	if !has(render.LayerEras) {
		c.Eras = nil
	}
	if !has(render.LayerPeriods) {
		c.Periods = nil
	}
	if !has(render.LayerGrid) {
		c.Grid = nil
	}
	if !has(render.LayerExtinctions) {
		c.Extinctions = nil
	}
	if !has(render.LayerEvents) {
		c.Events = nil
	}
	if !has(render.LayerSpecies) {
		c.Species = nil
	}
	if !has(render.LayerMarker) {
		c.Marker = render.Marker{}
	}
	if !has(render.LayerAxis) {
		c.Axis = nil
	}
	return &c
}
