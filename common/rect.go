package common

// Rect is an axis-aligned box anchored at its lower-left corner.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// HalfExtents returns half the width and height.
func (r Rect) HalfExtents() (float64, float64) {
	return r.Width / 2, r.Height / 2
}

// Scale divides every component by pixelsPerMeter.
func (r Rect) Scale(pixelsPerMeter float64) Rect {
	return Rect{
		X:      ToMeters(r.X, pixelsPerMeter),
		Y:      ToMeters(r.Y, pixelsPerMeter),
		Width:  ToMeters(r.Width, pixelsPerMeter),
		Height: ToMeters(r.Height, pixelsPerMeter),
	}
}

func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}
