// Package physicstest provides a scripted solver for loop and dispatcher
// tests that should not depend on solver numerics.
package physicstest

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/physics"
)

// StepCall is one recorded Solver.Step invocation.
type StepCall struct {
	DT                 float64
	VelocityIterations int
	PositionIterations int
}

// Solver is an in-memory physics.Solver. Bodies never move unless a test
// moves them; OnStep runs inside each step with the world locked.
type Solver struct {
	Steps     []StepCall
	Defs      []physics.BodyDef
	OnStep    func(s *Solver, dt float64)
	CreateErr error
	Destroys  int

	bodies    []*Body
	listener  physics.ContactListener
	locked    bool
	destroyed bool
}

var _ physics.Solver = (*Solver)(nil)

func New() *Solver {
	return &Solver{listener: physics.NopContactListener{}}
}

// Body is a fake body whose state is set directly by tests.
type Body struct {
	Def      physics.BodyDef
	Pos      mgl64.Vec2
	Rot      float64
	Velocity mgl64.Vec2
	Removed  bool
}

func (b *Body) Type() physics.BodyType         { return b.Def.Type }
func (b *Body) Tag() physics.Tag               { return b.Def.Tag }
func (b *Body) Position() mgl64.Vec2           { return b.Pos }
func (b *Body) Angle() float64                 { return b.Rot }
func (b *Body) LinearVelocity() mgl64.Vec2     { return b.Velocity }
func (b *Body) SetLinearVelocity(v mgl64.Vec2) { b.Velocity = v }

func (s *Solver) CreateBody(def physics.BodyDef) (physics.Body, error) {
	if s.destroyed {
		return nil, physics.ErrDestroyed
	}
	if s.locked {
		return nil, physics.ErrWorldLocked
	}
	if s.CreateErr != nil {
		return nil, s.CreateErr
	}
	if chain, ok := def.Shape.(physics.ChainShape); ok {
		if err := physics.ValidateChain(chain.Vertices, chain.Closed); err != nil {
			return nil, err
		}
	}
	b := &Body{Def: def, Pos: def.Position}
	s.Defs = append(s.Defs, def)
	s.bodies = append(s.bodies, b)
	return b, nil
}

func (s *Solver) DestroyBody(body physics.Body) error {
	if s.destroyed {
		return physics.ErrDestroyed
	}
	if s.locked {
		return physics.ErrWorldLocked
	}
	for i, b := range s.bodies {
		if physics.Body(b) == body {
			b.Removed = true
			s.bodies = append(s.bodies[:i], s.bodies[i+1:]...)
			return nil
		}
	}
	return physics.ErrForeignBody
}

func (s *Solver) Step(dt float64, velocityIterations, positionIterations int) {
	if s.destroyed {
		return
	}
	s.Steps = append(s.Steps, StepCall{DT: dt, VelocityIterations: velocityIterations, PositionIterations: positionIterations})
	if s.OnStep == nil {
		return
	}
	s.locked = true
	defer func() { s.locked = false }()
	s.OnStep(s, dt)
}

func (s *Solver) SetContactListener(l physics.ContactListener) {
	if l == nil {
		l = physics.NopContactListener{}
	}
	s.listener = l
}

func (s *Solver) BodyCount() int {
	return len(s.bodies)
}

func (s *Solver) Locked() bool {
	return s.locked
}

func (s *Solver) Destroy() {
	s.Destroys++
	if s.destroyed {
		return
	}
	for _, b := range s.bodies {
		b.Removed = true
	}
	s.bodies = nil
	s.destroyed = true
}

// Destroyed reports whether Destroy has run.
func (s *Solver) Destroyed() bool {
	return s.destroyed
}

// Bodies returns the live bodies in creation order.
func (s *Solver) Bodies() []*Body {
	out := make([]*Body, len(s.bodies))
	copy(out, s.bodies)
	return out
}

// Find returns the first live body with the given tag.
func (s *Solver) Find(tag physics.Tag) *Body {
	for _, b := range s.bodies {
		if b.Def.Tag == tag {
			return b
		}
	}
	return nil
}

// Begin delivers a begin-contact event between a and b with the world locked.
func (s *Solver) Begin(a, b physics.Body) {
	s.fire(a, b, s.listener.BeginContact)
}

// End delivers an end-contact event between a and b with the world locked.
func (s *Solver) End(a, b physics.Body) {
	s.fire(a, b, s.listener.EndContact)
}

func (s *Solver) fire(a, b physics.Body, fn func(physics.Contact)) {
	c := physics.Contact{BodyA: a, BodyB: b}
	if a != nil {
		c.A = a.Tag()
	}
	if b != nil {
		c.B = b.Tag()
	}
	prev := s.locked
	s.locked = true
	defer func() { s.locked = prev }()
	fn(c)
}
