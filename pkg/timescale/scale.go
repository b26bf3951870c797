// Package timescale maps geological time to horizontal pixel positions.
//
// Time is measured in Ma (millions of years before present) over the fixed
// domain [4540, 0]. The mapping is a square-root power law so that the most
// recent half-billion years, where most of the entities live, get a useful
// share of the width while deep time stays navigable:
//
//	x = width * ((4540 - t) / 4540)^0.5
//	t = 4540 * (1 - (x / width)^2)
//
// The scale is strictly decreasing in t (older time sits further left) and
// exactly invertible for any positive width.
package timescale

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/errors"
)

const (
	// EarthAge is the age of the Earth in Ma and the oldest point of the domain.
	EarthAge = 4540.0

	// Present is the youngest point of the domain.
	Present = 0.0

	// Exponent is the power-law exponent applied to normalized elapsed time.
	Exponent = 0.5
)

// Scale is the base nonlinear time scale for a given viewport inner width.
// The zero value is not usable; construct with [New].
type Scale struct {
	width float64
}

// New returns a scale whose range is [0, width].
// It fails with ErrCodeInvalidViewport when width is not a positive finite
// number, which callers treat as "no layout available".
func New(width float64) (Scale, error) {
	if !(width > 0) || math.IsInf(width, 0) {
		return Scale{}, errors.New(errors.ErrCodeInvalidViewport, "scale width must be positive, got %v", width)
	}
	return Scale{width: width}, nil
}

// Width returns the pixel range width.
func (s Scale) Width() float64 { return s.width }

// WithWidth re-parameterizes the range for a resized viewport. The domain
// never changes.
func (s Scale) WithWidth(width float64) (Scale, error) { return New(width) }

// X projects t (Ma) to a pixel position in [0, Width]. Times outside the
// domain are extrapolated on the same curve and may fall outside the range.
func (s Scale) X(t float64) float64 {
	u := (EarthAge - t) / EarthAge
	if u < 0 {
		return -s.width * math.Pow(-u, Exponent)
	}
	return s.width * math.Pow(u, Exponent)
}

// Invert maps a pixel position back to time in Ma.
func (s Scale) Invert(x float64) float64 {
	v := x / s.width
	if v < 0 {
		return EarthAge * (1 + v*v)
	}
	return EarthAge * (1 - v*v)
}
