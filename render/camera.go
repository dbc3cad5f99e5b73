package render

import (
	"github.com/milk9111/gemfall/common"
)

// Camera maps world meters (y up) to screen pixels (y down). At zoom 1 one
// meter covers PixelsPerMeter screen pixels; smaller zoom values magnify.
type Camera struct {
	PosX, PosY float64

	screenW, screenH int
	zoom             float64
	pixelsPerMeter   float64
	smooth           float64
}

func NewCamera(screenW, screenH int, zoom, pixelsPerMeter float64) *Camera {
	c := &Camera{screenW: screenW, screenH: screenH, zoom: 1, pixelsPerMeter: pixelsPerMeter}
	if pixelsPerMeter <= 0 {
		c.pixelsPerMeter = common.PixelsPerMeter
	}
	c.SetZoom(zoom)
	return c
}

func (c *Camera) SetZoom(z float64) {
	if z <= 0 {
		return
	}
	c.zoom = z
}

func (c *Camera) Zoom() float64 {
	return c.zoom
}

// SetSmooth sets the follow factor in [0, 1]; 0 snaps to the target.
func (c *Camera) SetSmooth(f float64) {
	c.smooth = common.Clamp(f, 0, 1)
}

func (c *Camera) SetScreenSize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	c.screenW, c.screenH = w, h
}

// Scale is the number of screen pixels per world meter.
func (c *Camera) Scale() float64 {
	return c.pixelsPerMeter / c.zoom
}

// Update moves the camera toward the target point.
func (c *Camera) Update(targetX, targetY float64) {
	if c.smooth <= 0 || c.smooth >= 1 {
		c.PosX, c.PosY = targetX, targetY
		return
	}
	c.PosX = common.Lerp(c.PosX, targetX, c.smooth)
	c.PosY = common.Lerp(c.PosY, targetY, c.smooth)
}

// WorldToScreen converts a world point to screen pixels.
func (c *Camera) WorldToScreen(x, y float64) (float64, float64) {
	s := c.Scale()
	sx := (x-c.PosX)*s + float64(c.screenW)/2
	sy := float64(c.screenH)/2 - (y-c.PosY)*s
	return sx, sy
}

// ScreenToWorld is the inverse of WorldToScreen.
func (c *Camera) ScreenToWorld(sx, sy float64) (float64, float64) {
	s := c.Scale()
	x := (sx-float64(c.screenW)/2)/s + c.PosX
	y := (float64(c.screenH)/2-sy)/s + c.PosY
	return x, y
}

// View is the visible world rectangle.
func (c *Camera) View() common.Rect {
	s := c.Scale()
	w := float64(c.screenW) / s
	h := float64(c.screenH) / s
	return common.Rect{X: c.PosX - w/2, Y: c.PosY - h/2, Width: w, Height: h}
}
