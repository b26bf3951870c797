// Package view implements the user's zoom/pan state on top of the base
// time scale.
//
// A [Transform] is an affine (translate + uniform scale) transform applied to
// pixel positions produced by a [timescale.Scale]:
//
//	effective_x(t) = X + K * base(t)
//
// The package also provides the gesture operations an input owner calls into
// (scale around a point, pan, zoom to a time range) and the [Navigator],
// which owns the current transform and maps keyboard shortcuts onto those
// operations. Nothing here animates: every operation returns the target
// transform and a newer request simply replaces an older one.
package view

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/timescale"
)

const (
	// MinScale is the fully zoomed-out scale.
	MinScale = 1.0

	// MaxScale is the deepest zoom allowed.
	MaxScale = 100000.0

	// PanMargin is how far (screen px) the dataset edges may be dragged
	// inside the viewport.
	PanMargin = 10.0

	// RangePadding is the fraction of the viewport width left empty on each
	// side by ZoomToRange.
	RangePadding = 0.04
)

// Transform is the zoom/pan state: X is the horizontal translation in
// screen pixels, K the uniform scale factor.
type Transform struct {
	X float64 `json:"x"`
	K float64 `json:"k"`
}

// Identity is the fully zoomed-out, unpanned view.
var Identity = Transform{X: 0, K: 1}

// Apply maps a base-scale pixel position to screen space.
func (t Transform) Apply(px float64) float64 { return t.X + t.K*px }

// Invert maps a screen position back to base-scale pixels.
func (t Transform) Invert(px float64) float64 { return (px - t.X) / t.K }

// Validate rejects transforms that would poison geometry: non-finite fields
// or a scale outside [MinScale, MaxScale].
func Validate(t Transform) error {
	if math.IsNaN(t.X) || math.IsInf(t.X, 0) || math.IsNaN(t.K) || math.IsInf(t.K, 0) {
		return errors.New(errors.ErrCodeInvalidTransform, "transform has non-finite fields (x=%v, k=%v)", t.X, t.K)
	}
	if t.K < MinScale || t.K > MaxScale {
		return errors.New(errors.ErrCodeInvalidTransform, "scale %v outside [%v, %v]", t.K, MinScale, MaxScale)
	}
	return nil
}

// ClampScale limits k to [MinScale, MaxScale]. NaN maps to MinScale.
func ClampScale(k float64) float64 {
	if math.IsNaN(k) {
		return MinScale
	}
	return max(MinScale, min(MaxScale, k))
}

// Constrain clamps the scale and then the translation so the dataset never
// leaves more than PanMargin pixels of empty space at either viewport edge:
// the oldest time stays at or left of PanMargin and the present at or right
// of width-PanMargin.
func Constrain(t Transform, width float64) Transform {
	k := ClampScale(t.K)
	lo := width - PanMargin - k*width
	hi := PanMargin
	x := t.X
	if math.IsNaN(x) {
		x = 0
	}
	return Transform{X: max(lo, min(hi, x)), K: k}
}

// Effective is the composed mapping used by every renderer.
type Effective struct {
	Base      timescale.Scale
	Transform Transform
}

// Compose rescales base by t.
func Compose(base timescale.Scale, t Transform) Effective {
	return Effective{Base: base, Transform: t}
}

// X projects time (Ma) to a screen pixel.
func (e Effective) X(ma float64) float64 { return e.Transform.Apply(e.Base.X(ma)) }

// Invert maps a screen pixel to time (Ma).
func (e Effective) Invert(px float64) float64 { return e.Base.Invert(e.Transform.Invert(px)) }

// Width is the viewport inner width the scale was built for.
func (e Effective) Width() float64 { return e.Base.Width() }

// Window returns the time at the left and right viewport edges.
func (e Effective) Window() (left, right float64) {
	return e.Invert(0), e.Invert(e.Base.Width())
}

// Linear returns a linear scale spanning the visible window, the basis for
// axis ticks and grid lines.
func (e Effective) Linear() timescale.Linear {
	l, r := e.Window()
	return timescale.Linear{T0: l, T1: r, Width: e.Base.Width()}
}
