package lod

import (
	"github.com/lucasb-eyer/go-colorful"
)

const ellipsis = "…"

// Event label character budgets.
const (
	EventBudgetBase = 16
	EventBudgetMid  = 22 // k > 3
	EventBudgetDeep = 30 // k > 10
)

// Label text colors chosen against a band fill.
const (
	DarkText  = "#1b1b1b"
	LightText = "#ffffff"
)

// EventLabelBudget returns the maximum number of characters of an event
// label at scale k.
func EventLabelBudget(k float64) int {
	switch {
	case k > 10:
		return EventBudgetDeep
	case k > 3:
		return EventBudgetMid
	}
	return EventBudgetBase
}

// Truncate shortens s to at most budget characters, ending in an ellipsis
// when anything was cut.
func Truncate(s string, budget int) string {
	r := []rune(s)
	if len(r) <= budget {
		return s
	}
	if budget <= 1 {
		return ellipsis
	}
	return string(r[:budget-1]) + ellipsis
}

// BandLabel abbreviates a geological band name to fit visiblePx pixels of
// band: nothing below 35px, a 4-character stub below 65px, names longer
// than 10 characters cut to 9 plus an ellipsis below 110px.
func BandLabel(name string, visiblePx float64) string {
	r := []rune(name)
	switch {
	case visiblePx < 35:
		return ""
	case visiblePx < 65:
		return string(r[:min(4, len(r))])
	case visiblePx < 110:
		if len(r) > 10 {
			return string(r[:9]) + ellipsis
		}
	}
	return name
}

// SpeciesLabel abbreviates a species name to fit visiblePx pixels of lane.
func SpeciesLabel(name string, visiblePx float64) string {
	r := []rune(name)
	switch {
	case visiblePx < 35:
		return ""
	case visiblePx < 70:
		if len(r) > 6 {
			return string(r[:6]) + ellipsis
		}
	}
	return name
}

// BandFontSize returns the label font size for a band of height h.
func BandFontSize(h float64) float64 {
	switch {
	case h >= 40:
		return 16
	case h >= 30:
		return 14
	}
	return 12
}

// ContrastColor picks dark or light label text for a band fill color given
// as hex. Unparseable colors get light text.
func ContrastColor(fill string) string {
	c, err := colorful.Hex(fill)
	if err != nil {
		return LightText
	}
	if l, _, _ := c.Lab(); l > 0.6 {
		return DarkText
	}
	return LightText
}
