package view

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/timescale"
)

// ZoomToRange computes the transform under which the time interval
// [end, start] fills the viewport minus RangePadding of the width on each
// side, centered. The second result is false, and the caller must keep its
// current view, when the range is degenerate or inverted (end >= start) or
// projects to a non-positive pixel width.
//
// The scale is clamped to [MinScale, MaxScale]; a clamped result keeps the
// range centered. The result is not constrained; Navigator.ZoomTo applies
// Constrain before committing it.
func ZoomToRange(base timescale.Scale, start, end float64) (Transform, bool) {
	if !(end < start) {
		return Transform{}, false
	}
	x0 := base.X(start)
	x1 := base.X(end)
	rw := x1 - x0
	if !(rw > 0) || math.IsInf(rw, 0) {
		return Transform{}, false
	}
	w := base.Width()
	pad := w * RangePadding
	k := ClampScale((w - 2*pad) / rw)
	mid := (x0 + x1) / 2
	return Transform{X: w/2 - k*mid, K: k}, true
}

// ScaleAt multiplies the scale by factor while keeping the point under the
// screen position px fixed, then constrains the result.
func ScaleAt(t Transform, width, px, factor float64) Transform {
	if !(factor > 0) {
		return Constrain(t, width)
	}
	k := ClampScale(t.K * factor)
	p := t.Invert(px)
	return Constrain(Transform{X: px - p*k, K: k}, width)
}

// ScaleBy scales around the viewport center.
func ScaleBy(t Transform, width, factor float64) Transform {
	return ScaleAt(t, width, width/2, factor)
}

// PanBy shifts the view by dx screen pixels. Positive dx moves the content
// right, revealing older time.
func PanBy(t Transform, width, dx float64) Transform {
	return Constrain(Transform{X: t.X + dx, K: t.K}, width)
}
