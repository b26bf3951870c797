// Package axis computes tick positions for the time axis and grid.
//
// Ticks are "nice" round numbers (1, 2 or 5 times a power of ten) spread over
// the linear window of time currently visible, so labels stay readable at
// every zoom level even though the base scale is nonlinear.
package axis

import (
	"math"

	"github.com/matzehuels/deeptime/pkg/format"
	"github.com/matzehuels/deeptime/pkg/timescale"
)

// TickSpacing is the target horizontal distance between ticks in px.
const TickSpacing = 110.0

// MaxTicks caps the tick count on wide viewports.
const MaxTicks = 14

// MinAxisTicks is the lowest tick count requested for the axis.
const MinAxisTicks = 4

var (
	e10 = math.Sqrt(50)
	e5  = math.Sqrt(10)
	e2  = math.Sqrt(2)
)

// Tick is one labelled axis position.
type Tick struct {
	X     float64 `json:"x"`
	Value float64 `json:"value"` // Ma
	Label string  `json:"label"`
}

// AxisCount returns the tick count requested for an axis of width px.
func AxisCount(width float64) int {
	return min(MaxTicks, max(MinAxisTicks, int(math.Floor(width/TickSpacing))))
}

// GridCount returns the tick count requested for grid lines. It may be zero
// on narrow viewports.
func GridCount(width float64) int {
	return min(MaxTicks, max(0, int(math.Floor(width/TickSpacing))))
}

// Ticks returns approximately count nice values between start and stop,
// inclusive, in the direction from start to stop. It returns nil when count
// is not positive or the bounds are not finite.
func Ticks(start, stop float64, count int) []float64 {
	if count <= 0 || !finite(start) || !finite(stop) {
		return nil
	}
	if start == stop {
		return []float64{start}
	}
	reverse := stop < start
	lo, hi := start, stop
	if reverse {
		lo, hi = stop, start
	}
	i1, i2, inc := spec(lo, hi, float64(count))
	if !(i2 >= i1) {
		return nil
	}
	n := int(i2-i1) + 1
	out := make([]float64, n)
	for i := range n {
		idx := i1 + float64(i)
		if reverse {
			idx = i2 - float64(i)
		}
		if inc < 0 {
			out[i] = idx / -inc
		} else {
			out[i] = idx * inc
		}
	}
	return out
}

// spec returns the first and last tick index and the increment. A negative
// increment means the step is 1/-inc, which keeps small steps exact.
func spec(start, stop, count float64) (i1, i2, inc float64) {
	step := (stop - start) / max(0, count)
	power := math.Floor(math.Log10(step))
	e := step / math.Pow(10, power)
	factor := 1.0
	switch {
	case e >= e10:
		factor = 10
	case e >= e5:
		factor = 5
	case e >= e2:
		factor = 2
	}
	if power < 0 {
		inc = math.Pow(10, -power) / factor
		i1 = math.Round(start * inc)
		i2 = math.Round(stop * inc)
		if i1/inc < start {
			i1++
		}
		if i2/inc > stop {
			i2--
		}
		inc = -inc
	} else {
		inc = math.Pow(10, power) * factor
		i1 = math.Round(start / inc)
		i2 = math.Round(stop / inc)
		if i1*inc < start {
			i1++
		}
		if i2*inc > stop {
			i2--
		}
	}
	if i2 < i1 && 0.5 <= count && count < 2 {
		return spec(start, stop, count*2)
	}
	return i1, i2, inc
}

// Axis returns labelled ticks over the visible linear window.
func Axis(lin timescale.Linear) []Tick {
	values := Ticks(lin.T0, lin.T1, AxisCount(lin.Width))
	out := make([]Tick, 0, len(values))
	for _, v := range values {
		out = append(out, Tick{X: lin.X(v), Value: v, Label: format.Ma(math.Abs(v))})
	}
	return out
}

// Grid returns the x positions of the vertical grid lines.
func Grid(lin timescale.Linear) []float64 {
	values := Ticks(lin.T0, lin.T1, GridCount(lin.Width))
	out := make([]float64, 0, len(values))
	for _, v := range values {
		out = append(out, lin.X(v))
	}
	return out
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
