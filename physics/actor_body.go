package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/common"
)

// NewActorBody creates the single-box body of an actor. Bounds are in meters.
// The body centre is placed at (x + 2*hw, y + 2*hh), one full extent past
// the lower-left corner, which is where existing levels expect actors to sit.
func NewActorBody(solver Solver, bounds common.Rect, tag Tag, static bool) (Body, error) {
	if bounds.Empty() || !common.Finite(bounds.X, bounds.Y, bounds.Width, bounds.Height) {
		return nil, fmt.Errorf("%w: %+v", ErrInvalidBounds, bounds)
	}
	hw, hh := bounds.HalfExtents()
	def := BodyDef{
		Type:     DynamicBody,
		Position: mgl64.Vec2{bounds.X + 2*hw, bounds.Y + 2*hh},
		Shape:    BoxShape{HalfWidth: hw, HalfHeight: hh},
		Density:  ActorDensity,
		Tag:      tag,
	}
	if static {
		def.Type = StaticBody
	}
	return solver.CreateBody(def)
}
