// Package actor holds the dynamic entities of a level: a physics body
// paired with the sprite that draws it.
package actor

import (
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/physics"
)

// Actor is anything with a body and a sprite. Actors do not own their
// bodies; the solver does.
type Actor interface {
	ID() ecs.Entity
	Body() physics.Body
	Sprite() *Sprite
	// Update advances presentation state by dt and copies the body
	// transform into the sprite.
	Update(dt float64)
	// Dispose releases actor-owned resources. Safe to call more than once.
	Dispose()
}
