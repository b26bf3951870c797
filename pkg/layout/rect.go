package layout

// Rect is an axis-aligned rectangle in viewport inner coordinates, y growing
// downward.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom returns the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.H }

// CenterX returns the horizontal center point.
func (r Rect) CenterX() float64 { return r.X + r.W/2 }

// CenterY returns the vertical center point.
func (r Rect) CenterY() float64 { return r.Y + r.H/2 }
