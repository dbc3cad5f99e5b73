package physics

import (
	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"
)

// Box2DSolver runs the ByteArena port of Box2D. Fixture tags are stored as
// fixture user data; bodies are resolved through the solver's own index.
type Box2DSolver struct {
	world     *box2d.B2World
	bodies    map[*box2d.B2Body]*box2dBody
	listener  ContactListener
	destroyed bool
}

type box2dBody struct {
	body    *box2d.B2Body
	fixture *box2d.B2Fixture
	typ     BodyType
	tag     Tag
}

func NewBox2DSolver(gravity mgl64.Vec2) *Box2DSolver {
	world := box2d.MakeB2World(box2d.MakeB2Vec2(gravity.X(), gravity.Y()))
	s := &Box2DSolver{
		world:    &world,
		bodies:   make(map[*box2d.B2Body]*box2dBody),
		listener: NopContactListener{},
	}
	s.world.SetContactListener(box2dContactAdapter{solver: s})
	return s
}

func (s *Box2DSolver) CreateBody(def BodyDef) (Body, error) {
	if s.destroyed {
		return nil, ErrDestroyed
	}
	if s.world.IsLocked() {
		return nil, ErrWorldLocked
	}
	if err := validateDef(def); err != nil {
		return nil, err
	}

	bd := box2d.MakeB2BodyDef()
	bd.Type = box2d.B2BodyType.B2_staticBody
	if def.Type == DynamicBody {
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bd.Position = box2d.MakeB2Vec2(def.Position.X(), def.Position.Y())

	body := s.world.CreateBody(&bd)
	if body == nil {
		return nil, ErrWorldLocked
	}

	fd := box2d.MakeB2FixtureDef()
	fd.Density = def.Density
	switch shape := def.Shape.(type) {
	case BoxShape:
		poly := box2d.MakeB2PolygonShape()
		poly.SetAsBox(shape.HalfWidth, shape.HalfHeight)
		fd.Shape = &poly
	case ChainShape:
		verts := make([]box2d.B2Vec2, len(shape.Vertices))
		for i, v := range shape.Vertices {
			verts[i] = box2d.MakeB2Vec2(v.X(), v.Y())
		}
		chain := box2d.MakeB2ChainShape()
		if shape.Closed {
			chain.CreateLoop(verts, len(verts))
		} else {
			chain.CreateChain(verts, len(verts))
		}
		fd.Shape = &chain
	}

	fixture := body.CreateFixtureFromDef(&fd)
	fixture.SetUserData(def.Tag)

	b := &box2dBody{body: body, fixture: fixture, typ: def.Type, tag: def.Tag}
	s.bodies[body] = b
	return b, nil
}

func (s *Box2DSolver) DestroyBody(b Body) error {
	if s.destroyed {
		return ErrDestroyed
	}
	bb, ok := b.(*box2dBody)
	if !ok || s.bodies[bb.body] != bb {
		return ErrForeignBody
	}
	if s.world.IsLocked() {
		return ErrWorldLocked
	}
	s.world.DestroyBody(bb.body)
	delete(s.bodies, bb.body)
	return nil
}

func (s *Box2DSolver) Step(dt float64, velocityIterations, positionIterations int) {
	if s.destroyed {
		return
	}
	s.world.Step(dt, velocityIterations, positionIterations)
}

func (s *Box2DSolver) SetContactListener(l ContactListener) {
	if l == nil {
		l = NopContactListener{}
	}
	s.listener = l
}

func (s *Box2DSolver) BodyCount() int {
	return len(s.bodies)
}

func (s *Box2DSolver) Locked() bool {
	return !s.destroyed && s.world.IsLocked()
}

func (s *Box2DSolver) Destroy() {
	if s.destroyed {
		return
	}
	s.listener = NopContactListener{}
	for body := range s.bodies {
		s.world.DestroyBody(body)
	}
	s.bodies = nil
	s.world.Destroy()
	s.destroyed = true
}

func (s *Box2DSolver) contact(c box2d.B2ContactInterface) Contact {
	fa, fb := c.GetFixtureA(), c.GetFixtureB()
	return Contact{
		A:     fixtureTag(fa),
		B:     fixtureTag(fb),
		BodyA: s.lookup(fa),
		BodyB: s.lookup(fb),
	}
}

func (s *Box2DSolver) lookup(f *box2d.B2Fixture) Body {
	if f == nil {
		return nil
	}
	if b, ok := s.bodies[f.GetBody()]; ok {
		return b
	}
	return nil
}

func fixtureTag(f *box2d.B2Fixture) Tag {
	if f == nil {
		return Tag{}
	}
	tag, _ := f.GetUserData().(Tag)
	return tag
}

type box2dContactAdapter struct {
	solver *Box2DSolver
}

func (a box2dContactAdapter) BeginContact(contact box2d.B2ContactInterface) {
	a.solver.listener.BeginContact(a.solver.contact(contact))
}

func (a box2dContactAdapter) EndContact(contact box2d.B2ContactInterface) {
	a.solver.listener.EndContact(a.solver.contact(contact))
}

func (a box2dContactAdapter) PreSolve(contact box2d.B2ContactInterface, oldManifold box2d.B2Manifold) {
	a.solver.listener.PreSolve(a.solver.contact(contact))
}

func (a box2dContactAdapter) PostSolve(contact box2d.B2ContactInterface, impulse *box2d.B2ContactImpulse) {
	a.solver.listener.PostSolve(a.solver.contact(contact))
}

func (b *box2dBody) Type() BodyType { return b.typ }
func (b *box2dBody) Tag() Tag       { return b.tag }

func (b *box2dBody) Position() mgl64.Vec2 {
	p := b.body.GetPosition()
	return mgl64.Vec2{p.X, p.Y}
}

func (b *box2dBody) Angle() float64 {
	return b.body.GetAngle()
}

func (b *box2dBody) LinearVelocity() mgl64.Vec2 {
	v := b.body.GetLinearVelocity()
	return mgl64.Vec2{v.X, v.Y}
}

func (b *box2dBody) SetLinearVelocity(v mgl64.Vec2) {
	b.body.SetLinearVelocity(box2d.MakeB2Vec2(v.X(), v.Y()))
}
