package actor

import "image"

// Animation is a time-based frame sequence over one row of a sprite sheet.
// Frames are laid out left to right starting at Row.
type Animation struct {
	FrameW        int
	FrameH        int
	FrameCount    int
	FrameDuration float64
	Row           int
	Loop          bool
}

// KeyFrame returns the frame index shown at stateTime seconds.
func (a Animation) KeyFrame(stateTime float64) int {
	if a.FrameCount <= 1 || a.FrameDuration <= 0 || stateTime <= 0 {
		return 0
	}
	n := int(stateTime / a.FrameDuration)
	if a.Loop {
		return n % a.FrameCount
	}
	if n >= a.FrameCount {
		return a.FrameCount - 1
	}
	return n
}

// Frame returns the sheet rectangle of frame i.
func (a Animation) Frame(i int) image.Rectangle {
	if a.FrameCount > 0 {
		i %= a.FrameCount
	}
	if i < 0 {
		i = 0
	}
	sx := i * a.FrameW
	sy := a.Row * a.FrameH
	return image.Rect(sx, sy, sx+a.FrameW, sy+a.FrameH)
}

// Duration is the length of one full cycle.
func (a Animation) Duration() float64 {
	return float64(a.FrameCount) * a.FrameDuration
}
