package lod

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/dataset"
)

// Zoom thresholds.
const (
	PeriodScale       = 2.0 // periods become visible
	EventScale        = 2.5 // non-major, non-human events become eligible
	HumanEventScale   = 8.0 // human events become eligible
	AnnotationScale   = 1.3 // annotation hides above this
	KeyboardHintScale = 1.1 // keyboard hint hides above this
	EonNavScale       = 1.3 // eon nav buttons can be active above this
)

// EonNavFraction is the share of the inner width an eon must cover for its
// nav button to be active.
const EonNavFraction = 0.35

// Colors of the event layers.
const (
	OriginColor     = "#4ec98a"
	EventColor      = "#e0a040"
	ExtinctionColor = "#e03e3e"
)

// majorEvents are always eligible regardless of zoom.
var majorEvents = map[string]bool{
	"Formation of Earth":    true,
	"Origin of Life":        true,
	"Great Oxidation Event": true,
	"Cambrian Explosion":    true,
	"First Dinosaurs":       true,
	"Homo Sapiens":          true,
	"First Eukaryotes":      true,
	"First Animals":         true,
}

// IsMajor reports whether the named event belongs to the fixed set of major
// events.
func IsMajor(name string) bool { return majorEvents[name] }

// PeriodsVisible reports whether the period layer is shown at scale k.
func PeriodsVisible(k float64) bool { return k >= PeriodScale }

// EventEligible reports whether e may appear in the event label layer at
// scale k. Extinction events never do; they have their own layer.
func EventEligible(e dataset.Event, k float64) bool {
	switch {
	case e.Type == dataset.EventExtinction:
		return false
	case IsMajor(e.Name):
		return true
	case e.Type == dataset.EventHuman:
		return k >= HumanEventScale
	}
	return k >= EventScale
}

// EventRadius returns the marker radius.
func EventRadius(major bool) float64 {
	if major {
		return 5
	}
	return 3.5
}

// EventOpacity returns the label opacity.
func EventOpacity(major bool) float64 {
	if major {
		return 0.9
	}
	return 0.7
}

// EventColorFor returns the marker and label color for an event type.
func EventColorFor(t dataset.EventType) string {
	switch t {
	case dataset.EventOrigin:
		return OriginColor
	case dataset.EventExtinction:
		return ExtinctionColor
	}
	return EventColor
}

// SpeciesOpacity returns the species label opacity at scale k.
func SpeciesOpacity(k float64) float64 {
	if k > 3 {
		return 0.9
	}
	return 0.6
}

// ExtinctionWidth returns the extinction band width in px at scale k,
// growing with sqrt(k) within [4, 40].
func ExtinctionWidth(k float64) float64 {
	return max(4, min(40, 6*math.Sqrt(k)))
}

// ExtinctionOpacity maps a severity percentage to band opacity. Unknown
// severity (0) counts as 50%.
func ExtinctionOpacity(severity float64) float64 {
	if severity == 0 {
		severity = 50
	}
	return severity / 100 * 0.28
}

// AnnotationVisible reports whether the introductory annotation is shown.
func AnnotationVisible(k float64) bool { return k <= AnnotationScale }

// KeyboardHintVisible reports whether the keyboard hint is shown.
func KeyboardHintVisible(k float64) bool { return k <= KeyboardHintScale }

// EonActive reports whether an eon's nav button is highlighted: the view is
// zoomed in, the eon overlaps the viewport and it spans more than
// EonNavFraction of the inner width. x0 and x1 are the eon's screen edges.
func EonActive(k, x0, x1, innerWidth float64) bool {
	visible := x0 < innerWidth && x1 > 0
	return k > EonNavScale && visible && x1-x0 > innerWidth*EonNavFraction
}
