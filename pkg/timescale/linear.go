package timescale

// Linear is a linear scale over a visible time window, used for axis ticks
// and grid lines once the nonlinear view has been resolved to its edges.
type Linear struct {
	T0, T1 float64 // time at the left and right edge of the window
	Width  float64
}

// X projects t linearly into [0, Width].
func (l Linear) X(t float64) float64 {
	if l.T1 == l.T0 {
		return 0
	}
	return (t - l.T0) / (l.T1 - l.T0) * l.Width
}
