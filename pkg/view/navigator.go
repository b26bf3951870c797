package view

import (
	"github.com/matzehuels/deeptime/pkg/timescale"
)

// Keyboard zoom and pan steps.
const (
	ZoomInFactor  = 2.0
	ZoomOutFactor = 0.5
	PanFraction   = 0.15
)

// Range is a named time span that can be jumped to, such as an eon bound to
// a number key.
type Range struct {
	Name       string
	Start, End float64
}

// Navigator owns the current transform for one viewport and applies
// input requests to it. It is not safe for concurrent use; input events are
// expected to be delivered one at a time.
type Navigator struct {
	base      timescale.Scale
	current   Transform
	shortcuts []Range
	onChange  func(Transform)
}

// NewNavigator creates a navigator at the identity transform. shortcuts are
// bound in order to the keys "1", "2", ...
func NewNavigator(width float64, shortcuts []Range) (*Navigator, error) {
	base, err := timescale.New(width)
	if err != nil {
		return nil, err
	}
	return &Navigator{base: base, current: Identity, shortcuts: shortcuts}, nil
}

// OnChange registers a callback invoked after every accepted change.
func (n *Navigator) OnChange(fn func(Transform)) { n.onChange = fn }

// Transform returns the current transform.
func (n *Navigator) Transform() Transform { return n.current }

// Width returns the viewport inner width.
func (n *Navigator) Width() float64 { return n.base.Width() }

// Base returns the base scale for the current width.
func (n *Navigator) Base() timescale.Scale { return n.base }

// Set replaces the transform after constraining it, as when restoring a
// persisted view.
func (n *Navigator) Set(t Transform) {
	n.update(Constrain(t, n.base.Width()))
}

// Reset returns to the identity view.
func (n *Navigator) Reset() { n.update(Identity) }

// ScaleBy zooms around the viewport center.
func (n *Navigator) ScaleBy(factor float64) {
	n.update(ScaleBy(n.current, n.base.Width(), factor))
}

// ScaleAt zooms around a screen position, as a wheel event does.
func (n *Navigator) ScaleAt(px, factor float64) {
	n.update(ScaleAt(n.current, n.base.Width(), px, factor))
}

// PanBy shifts the view by dx screen pixels.
func (n *Navigator) PanBy(dx float64) {
	n.update(PanBy(n.current, n.base.Width(), dx))
}

// ZoomTo frames [end, start] and constrains the result, so a range at either
// end of the dataset is pulled back inside the pan margin. Degenerate ranges
// leave the view unchanged and report false.
func (n *Navigator) ZoomTo(start, end float64) bool {
	t, ok := ZoomToRange(n.base, start, end)
	if !ok {
		return false
	}
	n.update(Constrain(t, n.base.Width()))
	return true
}

// Resize re-parameterizes the base scale for a new inner width. The
// transform is kept and re-constrained.
func (n *Navigator) Resize(width float64) error {
	base, err := n.base.WithWidth(width)
	if err != nil {
		return err
	}
	n.base = base
	n.update(Constrain(n.current, width))
	return nil
}

// Key dispatches a keyboard shortcut and reports whether it was handled.
// Recognized keys: "+", "=", "-", "_", "ArrowLeft", "ArrowRight", "Home"
// and "1".."9" for the registered shortcuts.
func (n *Navigator) Key(key string) bool {
	pan := n.base.Width() * PanFraction
	switch key {
	case "+", "=":
		n.ScaleBy(ZoomInFactor)
	case "-", "_":
		n.ScaleBy(ZoomOutFactor)
	case "ArrowLeft":
		n.PanBy(pan)
	case "ArrowRight":
		n.PanBy(-pan)
	case "Home":
		n.Reset()
	default:
		if len(key) != 1 || key[0] < '1' || key[0] > '9' {
			return false
		}
		i := int(key[0] - '1')
		if i >= len(n.shortcuts) {
			return false
		}
		r := n.shortcuts[i]
		return n.ZoomTo(r.Start, r.End)
	}
	return true
}

func (n *Navigator) update(t Transform) {
	n.current = t
	if n.onChange != nil {
		n.onChange(t)
	}
}
