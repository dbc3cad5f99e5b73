package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// RadToDeg converts a solver angle to the rendering convention.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// ToMeters converts a pixel-space length to simulation space.
func ToMeters(px, pixelsPerMeter float64) float64 {
	if pixelsPerMeter == 0 {
		return px
	}
	return px / pixelsPerMeter
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
