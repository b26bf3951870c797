package render

import (
	"github.com/matzehuels/deeptime/pkg/axis"
	"github.com/matzehuels/deeptime/pkg/dataset"
	"github.com/matzehuels/deeptime/pkg/layout"
	"github.com/matzehuels/deeptime/pkg/lod"
	"github.com/matzehuels/deeptime/pkg/view"
)

// Layer names a group of drawables. Layers are drawn in DrawOrder.
type Layer string

const (
	LayerEons        Layer = "eons"
	LayerEras        Layer = "eras"
	LayerPeriods     Layer = "periods"
	LayerGrid        Layer = "grid"
	LayerExtinctions Layer = "extinctions"
	LayerEvents      Layer = "events"
	LayerSpecies     Layer = "species"
	LayerMarker      Layer = "marker"
	LayerAxis        Layer = "axis"
)

// DrawOrder lists the layers back to front.
var DrawOrder = []Layer{
	LayerGrid, LayerExtinctions, LayerEons, LayerEras, LayerPeriods,
	LayerSpecies, LayerEvents, LayerMarker, LayerAxis,
}

// Viewport is the outer size of the drawing surface in px.
type Viewport struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Label is positioned text. An empty Text means the label is hidden.
type Label struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Color    string  `json:"color,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`
}

// Band is one geological interval.
type Band struct {
	Name   string        `json:"name"`
	Level  dataset.Level `json:"level"`
	Rect   layout.Rect   `json:"rect"`
	Color  string        `json:"color"`
	Hidden bool          `json:"hidden,omitempty"` // entirely outside the viewport
	Label  Label         `json:"label"`
	Start  float64       `json:"start"`
	End    float64       `json:"end"`
}

// SpeciesBar is one species lifespan in its lane.
type SpeciesBar struct {
	Name  string      `json:"name"`
	Lane  int         `json:"lane"`
	Rect  layout.Rect `json:"rect"`
	Color string      `json:"color"`
	Label Label       `json:"label"`
	Start float64     `json:"start"`
	End   float64     `json:"end"`
}

// EventMarker is a point event: a stem from the event baseline to the axis,
// a dot and a label placed in its packing row.
type EventMarker struct {
	Name   string            `json:"name"`
	Type   dataset.EventType `json:"type"`
	Date   float64           `json:"date"`
	X      float64           `json:"x"`
	DotY   float64           `json:"dot_y"`
	StemY2 float64           `json:"stem_y2"`
	Radius float64           `json:"radius"`
	Color  string            `json:"color"`
	Major  bool              `json:"major,omitempty"`
	Row    int               `json:"row"`
	Label  Label             `json:"label"`
}

// ExtinctionBand is a translucent vertical band centered on an extinction.
type ExtinctionBand struct {
	Name     string      `json:"name"`
	Date     float64     `json:"date"`
	Severity float64     `json:"severity,omitempty"`
	Rect     layout.Rect `json:"rect"`
	Radius   float64     `json:"radius"`
	Color    string      `json:"color"`
	Opacity  float64     `json:"opacity"`
}

// Marker is the "you are here" indicator at the present.
type Marker struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
	Text    string  `json:"text"`
}

// NavButton is the highlight state of one eon shortcut.
type NavButton struct {
	Name   string `json:"name"`
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

// Nav holds the navigation chrome: context indicator, eon buttons and the
// hints shown only near the identity view.
type Nav struct {
	Context      lod.Context `json:"context"`
	Eons         []NavButton `json:"eons"`
	Annotation   bool        `json:"annotation"`
	KeyboardHint bool        `json:"keyboard_hint"`
}

// Snapshot is the complete geometry of one frame. Coordinates are inner
// coordinates: (0, 0) is the top-left of the drawing area inside the
// margins.
type Snapshot struct {
	Viewport    Viewport         `json:"viewport"`
	Metrics     layout.Metrics   `json:"metrics"`
	Transform   view.Transform   `json:"transform"`
	Window      [2]float64       `json:"window"` // Ma at the left and right edge
	Eons        []Band           `json:"eons"`
	Eras        []Band           `json:"eras"`
	Periods     []Band           `json:"periods"`
	Grid        []float64        `json:"grid"`
	Extinctions []ExtinctionBand `json:"extinctions"`
	Events      []EventMarker    `json:"events"`
	Species     []SpeciesBar     `json:"species"`
	Marker      Marker           `json:"marker"`
	Axis        []axis.Tick      `json:"axis"`
	Nav         Nav              `json:"nav"`
}

// Bands returns the band layer of one level.
func (s *Snapshot) Bands(l dataset.Level) []Band {
	switch l {
	case dataset.LevelEon:
		return s.Eons
	case dataset.LevelEra:
		return s.Eras
	case dataset.LevelPeriod:
		return s.Periods
	}
	return nil
}

// Keys returns the entity names of a layer in draw order. Layers without
// named entities (grid, marker, axis) return nil.
func (s *Snapshot) Keys(l Layer) []string {
	var keys []string
	switch l {
	case LayerEons, LayerEras, LayerPeriods:
		for _, b := range s.Bands(l.Level()) {
			keys = append(keys, b.Name)
		}
	case LayerSpecies:
		for _, sp := range s.Species {
			keys = append(keys, sp.Name)
		}
	case LayerEvents:
		for _, e := range s.Events {
			keys = append(keys, e.Name)
		}
	case LayerExtinctions:
		for _, e := range s.Extinctions {
			keys = append(keys, e.Name)
		}
	}
	return keys
}

// Event returns the event marker with the given name.
func (s *Snapshot) Event(name string) (EventMarker, bool) {
	for _, e := range s.Events {
		if e.Name == name {
			return e, true
		}
	}
	return EventMarker{}, false
}

// EntityCount returns the number of named drawables in the snapshot.
func (s *Snapshot) EntityCount() int {
	return len(s.Eons) + len(s.Eras) + len(s.Periods) + len(s.Species) +
		len(s.Events) + len(s.Extinctions)
}

// Level returns the interval level drawn by a band layer, or "" for other
// layers.
func (l Layer) Level() dataset.Level {
	switch l {
	case LayerEons:
		return dataset.LevelEon
	case LayerEras:
		return dataset.LevelEra
	case LayerPeriods:
		return dataset.LevelPeriod
	}
	return ""
}
