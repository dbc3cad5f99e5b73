package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

const (
	collisionTypeMap cp.CollisionType = iota + 1
	collisionTypeActor
)

const shapeFriction = 0.8

// ChipmunkSolver runs Chipmunk2D. Chipmunk has no separate position
// iterations; the velocity iteration count drives Space.Iterations.
type ChipmunkSolver struct {
	space     *cp.Space
	shapes    map[*cp.Shape]*chipmunkBody
	listener  ContactListener
	stepping  bool
	destroyed bool
}

type chipmunkBody struct {
	body   *cp.Body
	shapes []*cp.Shape
	typ    BodyType
	tag    Tag
}

func NewChipmunkSolver(gravity mgl64.Vec2) *ChipmunkSolver {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{X: gravity.X(), Y: gravity.Y()})
	s := &ChipmunkSolver{
		space:    space,
		shapes:   make(map[*cp.Shape]*chipmunkBody),
		listener: NopContactListener{},
	}
	s.setupHandlers()
	return s
}

func (s *ChipmunkSolver) setupHandlers() {
	for _, pair := range [][2]cp.CollisionType{
		{collisionTypeActor, collisionTypeMap},
		{collisionTypeActor, collisionTypeActor},
	} {
		handler := s.space.NewCollisionHandler(pair[0], pair[1])
		handler.UserData = s
		handler.BeginFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			if sol, ok := userData.(*ChipmunkSolver); ok {
				sol.listener.BeginContact(sol.contact(arb))
			}
			return true
		}
		handler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
			if sol, ok := userData.(*ChipmunkSolver); ok {
				sol.listener.PreSolve(sol.contact(arb))
			}
			return true
		}
		handler.PostSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
			if sol, ok := userData.(*ChipmunkSolver); ok {
				sol.listener.PostSolve(sol.contact(arb))
			}
		}
		handler.SeparateFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) {
			if sol, ok := userData.(*ChipmunkSolver); ok {
				sol.listener.EndContact(sol.contact(arb))
			}
		}
	}
}

func (s *ChipmunkSolver) CreateBody(def BodyDef) (Body, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.stepping {
		return nil, ErrWorldLocked
	}
	if err := validateDef(def); err != nil {
		return nil, err
	}

	collisionType := collisionTypeActor
	if def.Tag.IsMapCollision() {
		collisionType = collisionTypeMap
	}

	var body *cp.Body
	if def.Type == DynamicBody {
		body = s.newDynamicBody(def)
	} else {
		body = cp.NewStaticBody()
	}
	body.SetPosition(cp.Vector{X: def.Position.X(), Y: def.Position.Y()})
	s.space.AddBody(body)

	var shapes []*cp.Shape
	switch shape := def.Shape.(type) {
	case BoxShape:
		shapes = append(shapes, cp.NewBox(body, shape.HalfWidth*2, shape.HalfHeight*2, 0))
	case ChainShape:
		verts := shape.Vertices
		for i := 1; i < len(verts); i++ {
			shapes = append(shapes, newSegment(body, verts[i-1], verts[i]))
		}
		if shape.Closed {
			shapes = append(shapes, newSegment(body, verts[len(verts)-1], verts[0]))
		}
	}

	cb := &chipmunkBody{body: body, typ: def.Type, tag: def.Tag}
	for _, shape := range shapes {
		shape.SetFriction(shapeFriction)
		shape.SetCollisionType(collisionType)
		s.space.AddShape(shape)
		s.shapes[shape] = cb
	}
	cb.shapes = shapes
	return cb, nil
}

func (s *ChipmunkSolver) newDynamicBody(def BodyDef) *cp.Body {
	w, h := 1.0, 1.0
	if box, ok := def.Shape.(BoxShape); ok {
		w, h = box.HalfWidth*2, box.HalfHeight*2
	}
	mass := def.Density * w * h
	if mass <= 0 {
		mass = 1
	}
	return cp.NewBody(mass, cp.MomentForBox(mass, w, h))
}

func newSegment(body *cp.Body, a, b mgl64.Vec2) *cp.Shape {
	return cp.NewSegment(body, cp.Vector{X: a.X(), Y: a.Y()}, cp.Vector{X: b.X(), Y: b.Y()}, 0)
}

func (s *ChipmunkSolver) DestroyBody(b Body) error {
	if s.destroyed {
		return ErrDestroyed
	}
	cb, ok := b.(*chipmunkBody)
	if !ok || len(cb.shapes) == 0 || s.shapes[cb.shapes[0]] != cb {
		return ErrForeignBody
	}
	if s.stepping {
		return ErrWorldLocked
	}
	s.remove(cb)
	return nil
}

func (s *ChipmunkSolver) remove(cb *chipmunkBody) {
	for _, shape := range cb.shapes {
		s.space.RemoveShape(shape)
		delete(s.shapes, shape)
	}
	s.space.RemoveBody(cb.body)
	cb.shapes = nil
}

func (s *ChipmunkSolver) Step(dt float64, velocityIterations, positionIterations int) {
	if s.destroyed {
		return
	}
	if velocityIterations > 0 {
		s.space.Iterations = uint(velocityIterations)
	}
	s.stepping = true
	defer func() { s.stepping = false }()
	s.space.Step(dt)
}

func (s *ChipmunkSolver) SetContactListener(l ContactListener) {
	if l == nil {
		l = NopContactListener{}
	}
	s.listener = l
}

func (s *ChipmunkSolver) BodyCount() int {
	seen := make(map[*chipmunkBody]struct{}, len(s.shapes))
	for _, cb := range s.shapes {
		seen[cb] = struct{}{}
	}
	return len(seen)
}

func (s *ChipmunkSolver) Locked() bool {
	return s.stepping
}

func (s *ChipmunkSolver) Destroy() {
	if s.destroyed {
		return
	}
	s.listener = NopContactListener{}
	bodies := make(map[*chipmunkBody]struct{}, len(s.shapes))
	for _, cb := range s.shapes {
		bodies[cb] = struct{}{}
	}
	for cb := range bodies {
		s.remove(cb)
	}
	s.shapes = nil
	s.destroyed = true
}

func (s *ChipmunkSolver) contact(arb *cp.Arbiter) Contact {
	a, b := arb.Shapes()
	var c Contact
	if cb, ok := s.shapes[a]; ok {
		c.A, c.BodyA = cb.tag, cb
	}
	if cb, ok := s.shapes[b]; ok {
		c.B, c.BodyB = cb.tag, cb
	}
	return c
}

func (b *chipmunkBody) Type() BodyType { return b.typ }
func (b *chipmunkBody) Tag() Tag       { return b.tag }

func (b *chipmunkBody) Position() mgl64.Vec2 {
	p := b.body.Position()
	return mgl64.Vec2{p.X, p.Y}
}

func (b *chipmunkBody) Angle() float64 {
	return b.body.Angle()
}

func (b *chipmunkBody) LinearVelocity() mgl64.Vec2 {
	v := b.body.Velocity()
	return mgl64.Vec2{v.X, v.Y}
}

func (b *chipmunkBody) SetLinearVelocity(v mgl64.Vec2) {
	b.body.SetVelocityVector(cp.Vector{X: v.X(), Y: v.Y()})
}
