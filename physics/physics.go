// Package physics wraps the rigid-body solvers behind a small interface and
// converts level geometry and actor bounds into solver bodies.
package physics

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
)

var (
	ErrMalformedPolygon = errors.New("physics: malformed polygon")
	ErrWorldLocked      = errors.New("physics: world locked")
	ErrDestroyed        = errors.New("physics: solver destroyed")
	ErrUnknownShape     = errors.New("physics: unknown shape")
	ErrUnknownBackend   = errors.New("physics: unknown backend")
	ErrForeignBody      = errors.New("physics: body not owned by solver")
	ErrInvalidBounds    = errors.New("physics: invalid bounds")
)

// ActorDensity is the fixture density of actor bodies.
const ActorDensity = 1.0

// minVertexSpacing mirrors the solvers' linear slop; closer consecutive
// chain vertices are rejected.
const minVertexSpacing = 0.005

type BodyType int

const (
	StaticBody BodyType = iota
	DynamicBody
)

func (t BodyType) String() string {
	if t == DynamicBody {
		return "dynamic"
	}
	return "static"
}

// TagKind is the closed set of fixture identities.
type TagKind uint8

const (
	TagNone TagKind = iota
	TagMapCollision
	TagActor
)

// Tag identifies what a fixture belongs to at contact time.
type Tag struct {
	Kind  TagKind
	Actor ecs.Entity
}

func MapCollisionTag() Tag {
	return Tag{Kind: TagMapCollision}
}

func ActorTag(e ecs.Entity) Tag {
	return Tag{Kind: TagActor, Actor: e}
}

func (t Tag) IsMapCollision() bool {
	return t.Kind == TagMapCollision
}

// IsActor reports whether the tag refers to actor e.
func (t Tag) IsActor(e ecs.Entity) bool {
	return t.Kind == TagActor && t.Actor == e
}

func (t Tag) String() string {
	switch t.Kind {
	case TagMapCollision:
		return "map"
	case TagActor:
		return "actor:" + t.Actor.String()
	default:
		return "none"
	}
}

// Shape is either a BoxShape or a ChainShape.
type Shape interface {
	shape()
}

// BoxShape is a centred box given by half extents.
type BoxShape struct {
	HalfWidth, HalfHeight float64
}

// ChainShape is a sequence of connected segments in body-local space.
type ChainShape struct {
	Vertices []mgl64.Vec2
	Closed   bool
}

func (BoxShape) shape()   {}
func (ChainShape) shape() {}

// BodyDef describes a body with exactly one fixture.
type BodyDef struct {
	Type     BodyType
	Position mgl64.Vec2
	Shape    Shape
	Density  float64
	Tag      Tag
}

// Body is an opaque handle owned by a Solver.
type Body interface {
	Type() BodyType
	Position() mgl64.Vec2
	Angle() float64
	LinearVelocity() mgl64.Vec2
	SetLinearVelocity(v mgl64.Vec2)
	Tag() Tag
}

// Contact names the two fixtures involved in a contact event.
type Contact struct {
	A, B         Tag
	BodyA, BodyB Body
}

// ContactListener receives solver contact events synchronously, from inside
// Solver.Step. Implementations must not create or destroy bodies.
type ContactListener interface {
	BeginContact(c Contact)
	EndContact(c Contact)
	PreSolve(c Contact)
	PostSolve(c Contact)
}

// NopContactListener ignores every event.
type NopContactListener struct{}

func (NopContactListener) BeginContact(Contact) {}
func (NopContactListener) EndContact(Contact)   {}
func (NopContactListener) PreSolve(Contact)     {}
func (NopContactListener) PostSolve(Contact)    {}

// Solver is the rigid-body world. It owns every body it creates.
type Solver interface {
	CreateBody(def BodyDef) (Body, error)
	// DestroyBody fails with ErrWorldLocked while a step is running.
	DestroyBody(b Body) error
	Step(dt float64, velocityIterations, positionIterations int)
	SetContactListener(l ContactListener)
	BodyCount() int
	Locked() bool
	// Destroy releases all bodies. It is safe to call more than once.
	Destroy()
}

type Backend string

const (
	BackendBox2D    Backend = "box2d"
	BackendChipmunk Backend = "chipmunk"
)

// NewSolver creates a solver for the named backend. An empty name selects
// box2d.
func NewSolver(backend Backend, gravity mgl64.Vec2) (Solver, error) {
	switch backend {
	case "", BackendBox2D:
		return NewBox2DSolver(gravity), nil
	case BackendChipmunk:
		return NewChipmunkSolver(gravity), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

// DefaultGravity is the build-time gravity vector.
func DefaultGravity() mgl64.Vec2 {
	return mgl64.Vec2{common.GravityX, common.GravityY}
}

// ValidateChain checks a chain vertex list before it reaches a solver.
func ValidateChain(vertices []mgl64.Vec2, closed bool) error {
	minCount := 2
	if closed {
		minCount = 3
	}
	if len(vertices) < minCount {
		return fmt.Errorf("%w: %d vertices", ErrMalformedPolygon, len(vertices))
	}
	for i, v := range vertices {
		if !common.Finite(v.X(), v.Y()) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrMalformedPolygon, i)
		}
		if i == 0 {
			continue
		}
		if v.Sub(vertices[i-1]).Len() <= minVertexSpacing {
			return fmt.Errorf("%w: vertices %d and %d coincide", ErrMalformedPolygon, i-1, i)
		}
	}
	if closed && vertices[0].Sub(vertices[len(vertices)-1]).Len() <= minVertexSpacing {
		return fmt.Errorf("%w: closing vertex repeats the first", ErrMalformedPolygon)
	}
	return nil
}

func validateDef(def BodyDef) error {
	if !common.Finite(def.Position.X(), def.Position.Y()) {
		return fmt.Errorf("%w: position %v", ErrInvalidBounds, def.Position)
	}
	switch s := def.Shape.(type) {
	case BoxShape:
		if s.HalfWidth <= 0 || s.HalfHeight <= 0 || !common.Finite(s.HalfWidth, s.HalfHeight) {
			return fmt.Errorf("%w: half extents %vx%v", ErrInvalidBounds, s.HalfWidth, s.HalfHeight)
		}
	case ChainShape:
		return ValidateChain(s.Vertices, s.Closed)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownShape, def.Shape)
	}
	return nil
}
