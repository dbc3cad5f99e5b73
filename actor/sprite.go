package actor

import (
	"image"

	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/physics"
)

// Sprite is the drawable state of an actor in meters. X/Y is the
// lower-left corner; Rotation is degrees about the sprite centre.
type Sprite struct {
	X, Y          float64
	Width, Height float64
	Rotation      float64

	// Image names the texture; Region is the source rectangle in it. An
	// empty Region means the whole image.
	Image  string
	Region image.Rectangle
}

// NewSpriteAt returns a sprite of the given size centred on (cx, cy).
func NewSpriteAt(cx, cy, width, height float64) *Sprite {
	return &Sprite{
		X:      cx - width/2,
		Y:      cy - height/2,
		Width:  width,
		Height: height,
	}
}

// Bounds returns the sprite rectangle.
func (s *Sprite) Bounds() common.Rect {
	return common.Rect{X: s.X, Y: s.Y, Width: s.Width, Height: s.Height}
}

// Origin is the rotation centre relative to X/Y.
func (s *Sprite) Origin() (float64, float64) {
	return s.Width / 2, s.Height / 2
}

// SyncSprite places the sprite so its centre matches the body position and
// copies the body angle.
func SyncSprite(s *Sprite, body physics.Body) {
	if s == nil || body == nil {
		return
	}
	pos := body.Position()
	s.X = pos.X() - s.Width/2
	s.Y = pos.Y() - s.Height/2
	s.Rotation = common.RadToDeg(body.Angle())
}
