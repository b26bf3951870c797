// Package layout computes the vertical band structure of the timeline.
//
// Layout is a pure function of viewport size, device class and the number of
// species lanes; it never depends on zoom. Bands stack top-down (eon, era,
// period, species lanes) while the event labels and the axis are anchored to
// the bottom of the viewport so they stay put as the lane count grows.
package layout

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/errors"
)

// CompactBreakpoint is the viewport width below which the compact profile
// applies.
const CompactBreakpoint = 768.0

// axisOffset is the distance of the axis line from the inner bottom edge.
const axisOffset = 12.0

// speciesOffset separates the period band from the first species lane.
const speciesOffset = 10.0

// DeviceClass selects the band sizing profile.
type DeviceClass int

const (
	Regular DeviceClass = iota
	Compact
)

func (c DeviceClass) String() string {
	if c == Compact {
		return "compact"
	}
	return "regular"
}

// Classify returns the device class for a viewport width.
func Classify(width float64) DeviceClass {
	if width < CompactBreakpoint {
		return Compact
	}
	return Regular
}

// Margin is the space between the viewport border and the drawing area.
type Margin struct {
	Top, Right, Bottom, Left float64
}

// Profile holds the fixed sizes for one device class.
type Profile struct {
	Margin       Margin
	EonHeight    float64
	EraHeight    float64
	PeriodHeight float64
	Gap          float64
	LaneHeight   float64
	LaneGap      float64
	EventHeight  float64 // distance of the event baseline above the axis
	RowThreshold float64 // minimum px between event labels sharing a row
}

// DefaultProfiles are the sizes used when no overrides are configured.
var DefaultProfiles = map[DeviceClass]Profile{
	Regular: {
		Margin:       Margin{Top: 16, Right: 30, Bottom: 40, Left: 30},
		EonHeight:    50,
		EraHeight:    34,
		PeriodHeight: 26,
		Gap:          3,
		LaneHeight:   28,
		LaneGap:      4,
		EventHeight:  50,
		RowThreshold: 140,
	},
	Compact: {
		Margin:       Margin{Top: 12, Right: 12, Bottom: 32, Left: 12},
		EonHeight:    36,
		EraHeight:    26,
		PeriodHeight: 20,
		Gap:          2,
		LaneHeight:   20,
		LaneGap:      3,
		EventHeight:  40,
		RowThreshold: 95,
	},
}

// Bands holds the top Y coordinate of each band in inner coordinates.
type Bands struct {
	Eon           float64 `json:"eon"`
	Era           float64 `json:"era"`
	Period        float64 `json:"period"`
	Species       float64 `json:"species"`
	EventBaseline float64 `json:"event_baseline"`
	Axis          float64 `json:"axis"`
}

// Heights holds the band heights.
type Heights struct {
	Eon     float64 `json:"eon"`
	Era     float64 `json:"era"`
	Period  float64 `json:"period"`
	Species float64 `json:"species"` // whole lane block
	Lane    float64 `json:"lane"`
	LaneGap float64 `json:"lane_gap"`
	Event   float64 `json:"event"`
}

// Metrics is the computed vertical layout for one viewport.
type Metrics struct {
	Width        float64     `json:"width"`
	Height       float64     `json:"height"`
	InnerWidth   float64     `json:"inner_width"`
	InnerHeight  float64     `json:"inner_height"`
	Margin       Margin      `json:"margin"`
	Class        DeviceClass `json:"-"`
	Bands        Bands       `json:"bands"`
	Heights      Heights     `json:"heights"`
	RowThreshold float64     `json:"row_threshold"`
}

// Engine computes Metrics from a set of profiles.
type Engine struct {
	profiles map[DeviceClass]Profile
}

// Option configures an Engine.
type Option func(*Engine)

// WithProfile replaces the sizing profile of one device class.
func WithProfile(c DeviceClass, p Profile) Option {
	return func(e *Engine) { e.profiles[c] = p }
}

// WithRowThresholds overrides the event-label row thresholds, leaving the
// other profile values untouched. Non-positive values are ignored.
func WithRowThresholds(regular, compact float64) Option {
	return func(e *Engine) {
		if regular > 0 {
			p := e.profiles[Regular]
			p.RowThreshold = regular
			e.profiles[Regular] = p
		}
		if compact > 0 {
			p := e.profiles[Compact]
			p.RowThreshold = compact
			e.profiles[Compact] = p
		}
	}
}

// New creates a layout engine with the default profiles plus overrides.
func New(opts ...Option) *Engine {
	e := &Engine{profiles: make(map[DeviceClass]Profile, len(DefaultProfiles))}
	for c, p := range DefaultProfiles {
		e.profiles[c] = p
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Profile returns the profile used for class c.
func (e *Engine) Profile(c DeviceClass) Profile { return e.profiles[c] }

// Compute lays out a width x height viewport holding maxLane+1 species
// lanes. It is idempotent and fails with ErrCodeInvalidViewport when the
// inner drawing area would be empty.
func (e *Engine) Compute(width, height float64, maxLane int) (Metrics, error) {
	if !finite(width) || !finite(height) {
		return Metrics{}, errors.New(errors.ErrCodeInvalidViewport, "viewport %vx%v is not finite", width, height)
	}
	class := Classify(width)
	p := e.profiles[class]

	innerW := width - p.Margin.Left - p.Margin.Right
	innerH := height - p.Margin.Top - p.Margin.Bottom
	if innerW <= 0 || innerH <= 0 {
		return Metrics{}, errors.New(errors.ErrCodeInvalidViewport,
			"viewport %vx%v leaves no drawing area (%s margins)", width, height, class)
	}
	if maxLane < 0 {
		maxLane = 0
	}

	eraY := p.EonHeight + p.Gap
	periodY := eraY + p.EraHeight + p.Gap
	speciesY := periodY + p.PeriodHeight + speciesOffset
	axisY := innerH - axisOffset

	return Metrics{
		Width:       width,
		Height:      height,
		InnerWidth:  innerW,
		InnerHeight: innerH,
		Margin:      p.Margin,
		Class:       class,
		Bands: Bands{
			Eon:           0,
			Era:           eraY,
			Period:        periodY,
			Species:       speciesY,
			EventBaseline: axisY - p.EventHeight,
			Axis:          axisY,
		},
		Heights: Heights{
			Eon:     p.EonHeight,
			Era:     p.EraHeight,
			Period:  p.PeriodHeight,
			Species: float64(maxLane+1) * (p.LaneHeight + p.LaneGap),
			Lane:    p.LaneHeight,
			LaneGap: p.LaneGap,
			Event:   p.EventHeight,
		},
		RowThreshold: p.RowThreshold,
	}, nil
}

// Compute lays out a viewport with the default profiles.
func Compute(width, height float64, maxLane int) (Metrics, error) {
	return New().Compute(width, height, maxLane)
}

// LaneY returns the top of the given species lane.
func (m Metrics) LaneY(lane int) float64 {
	return m.Bands.Species + float64(lane)*(m.Heights.Lane+m.Heights.LaneGap)
}

// EventLabelY returns the text baseline for an event label in the given row.
func (m Metrics) EventLabelY(row int) float64 {
	return m.Bands.EventBaseline + 14 + float64(row)*15
}

// SameViewport reports whether m was computed for the given dimensions.
func (m Metrics) SameViewport(width, height float64) bool {
	return m.Width == width && m.Height == height
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
