package physics_test

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/physics/physicstest"
)

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-6
}

func nearVec(a, b mgl64.Vec2) bool {
	return near(a.X(), b.X()) && near(a.Y(), b.Y())
}

type solverFactory struct {
	name string
	make func() physics.Solver
}

func allSolvers() []solverFactory {
	return []solverFactory{
		{"fake", func() physics.Solver { return physicstest.New() }},
		{"box2d", func() physics.Solver { return physics.NewBox2DSolver(physics.DefaultGravity()) }},
		{"chipmunk", func() physics.Solver { return physics.NewChipmunkSolver(physics.DefaultGravity()) }},
	}
}

func realSolvers() []solverFactory {
	return allSolvers()[1:]
}

func collisionLevel(objects ...levels.Object) *levels.Level {
	return &levels.Level{
		Width: 40, Height: 15, TileWidth: 32, TileHeight: 32,
		Layers: []levels.Layer{{Name: "Collisions", Type: levels.LayerObjects, Objects: objects}},
	}
}

func TestBuildStaticGeometryRectangle(t *testing.T) {
	level := collisionLevel(levels.Object{ID: 1, Name: "floor", X: 0, Y: 0, Width: 200, Height: 100})

	for _, f := range allSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			report, err := physics.BuildStaticGeometry(solver, level, "Collisions", common.PixelsPerMeter, quietLogger())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if report.BodyCount() != 1 || report.Rectangles != 1 || report.Polygons != 0 {
				t.Fatalf("unexpected report %+v", report)
			}
			def := report.Defs[0]
			if !nearVec(def.Position, mgl64.Vec2{1, 0.5}) {
				t.Fatalf("centre = %v, want (1, 0.5)", def.Position)
			}
			box, ok := def.Shape.(physics.BoxShape)
			if !ok || !near(box.HalfWidth, 1) || !near(box.HalfHeight, 0.5) {
				t.Fatalf("half extents = %+v, want (1, 0.5)", def.Shape)
			}
			if def.Type != physics.StaticBody || def.Density != 0 {
				t.Fatalf("expected static body with zero density, got %v / %v", def.Type, def.Density)
			}
			body := report.Bodies[0]
			if !nearVec(body.Position(), mgl64.Vec2{1, 0.5}) {
				t.Fatalf("body position = %v", body.Position())
			}
			if !body.Tag().IsMapCollision() {
				t.Fatalf("tag = %v, want map", body.Tag())
			}
			if solver.BodyCount() != 1 {
				t.Fatalf("solver bodies = %d", solver.BodyCount())
			}
		})
	}
}

func TestBuildStaticGeometryChains(t *testing.T) {
	level := collisionLevel(
		levels.Object{ID: 1, Name: "ramp", X: 100, Y: 0, Polygon: []levels.Point{{X: 0, Y: 0}, {X: 200, Y: 0}, {X: 200, Y: 100}}},
		levels.Object{ID: 2, Name: "ledge", X: 0, Y: 300, Polyline: []levels.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}},
		levels.Object{ID: 3, Name: "plank", X: 0, Y: 500, Polygon: []levels.Point{{X: 0, Y: 0}, {X: 300, Y: 0}}},
		levels.Object{ID: 4, Name: "outline", X: 0, Y: 700, Polygon: []levels.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 0}}},
		levels.Object{ID: 5, Name: "pen", X: 400, Y: 0, Polygon: []levels.Point{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}},
			Properties: map[string]any{"closed": true}},
	)

	cases := []struct {
		name   string
		index  int
		closed bool
		want   []mgl64.Vec2
	}{
		{"polygon_open", 0, false, []mgl64.Vec2{{1, 0}, {3, 0}, {3, 1}}},
		{"polyline_open", 1, false, []mgl64.Vec2{{0, 3}, {1, 3}}},
		{"two_vertex_polygon", 2, false, []mgl64.Vec2{{0, 5}, {3, 5}}},
		{"last_repeats_first", 3, false, []mgl64.Vec2{{0, 7}, {1, 7}, {1, 8}, {0, 7}}},
		{"closed_property_loops", 4, true, []mgl64.Vec2{{4, 0}, {5, 0}, {5, 1}}},
	}

	for _, f := range allSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			report, err := physics.BuildStaticGeometry(solver, level, "Collisions", common.PixelsPerMeter, quietLogger())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if report.Polygons != len(cases) || len(report.Skipped) != 0 {
				t.Fatalf("polygons = %d skipped = %+v, want %d built", report.Polygons, report.Skipped, len(cases))
			}
			for _, c := range cases {
				t.Run(c.name, func(t *testing.T) {
					def := report.Defs[c.index]
					if def.Position != (mgl64.Vec2{}) {
						t.Fatalf("chain bodies sit at the origin, got %v", def.Position)
					}
					chain, ok := def.Shape.(physics.ChainShape)
					if !ok {
						t.Fatalf("shape = %T", def.Shape)
					}
					if chain.Closed != c.closed {
						t.Fatalf("closed = %v, want %v", chain.Closed, c.closed)
					}
					if len(chain.Vertices) != len(c.want) {
						t.Fatalf("vertices = %v", chain.Vertices)
					}
					for i := range c.want {
						if !nearVec(chain.Vertices[i], c.want[i]) {
							t.Fatalf("vertex %d = %v, want %v", i, chain.Vertices[i], c.want[i])
						}
					}
				})
			}
		})
	}
}

func TestBuildStaticGeometryMissingLayer(t *testing.T) {
	solver := physicstest.New()
	level := &levels.Level{Width: 1, Height: 1, TileWidth: 32, TileHeight: 32}

	report, err := physics.BuildStaticGeometry(solver, level, "Collisions", common.PixelsPerMeter, quietLogger())
	if err != nil {
		t.Fatalf("missing layer should not fail: %v", err)
	}
	if report.BodyCount() != 0 || solver.BodyCount() != 0 {
		t.Fatalf("expected zero bodies, got %d", report.BodyCount())
	}
}

func TestBuildStaticGeometrySkipsMalformed(t *testing.T) {
	level := collisionLevel(
		levels.Object{ID: 1, Name: "lonely", Polyline: []levels.Point{{X: 5, Y: 5}}},
		levels.Object{ID: 2, Name: "floor", Width: 64, Height: 32},
		levels.Object{ID: 3, Name: "stutter", Polygon: []levels.Point{{X: 0, Y: 0}, {X: 0, Y: 0}, {X: 50, Y: 50}}},
		levels.Object{ID: 4, Name: "spawn", X: 10, Y: 10, IsPoint: true},
		levels.Object{ID: 5, Name: "blob", Width: 10, Height: 10, IsEllipse: true},
	)

	for _, f := range allSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			report, err := physics.BuildStaticGeometry(solver, level, "Collisions", common.PixelsPerMeter, quietLogger())
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			if report.BodyCount() != 1 || report.Rectangles != 1 {
				t.Fatalf("expected only the rectangle, got %+v", report)
			}
			if len(report.Skipped) != 2 {
				t.Fatalf("skipped = %+v, want 2", report.Skipped)
			}
			for i, id := range []int{1, 3} {
				s := report.Skipped[i]
				if s.ID != id || !errors.Is(s.Err, physics.ErrMalformedPolygon) {
					t.Fatalf("skipped[%d] = %+v", i, s)
				}
			}
		})
	}
}

func TestNewActorBody(t *testing.T) {
	id := ecs.Entity(7)
	for _, f := range allSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			body, err := physics.NewActorBody(solver, common.Rect{X: 2, Y: 3, Width: 1, Height: 1}, physics.ActorTag(id), false)
			if err != nil {
				t.Fatalf("create: %v", err)
			}
			if !nearVec(body.Position(), mgl64.Vec2{3, 4}) {
				t.Fatalf("centre = %v, want (3, 4)", body.Position())
			}
			if body.Type() != physics.DynamicBody {
				t.Fatalf("type = %v, want dynamic", body.Type())
			}
			if !body.Tag().IsActor(id) {
				t.Fatalf("tag = %v", body.Tag())
			}

			static, err := physics.NewActorBody(solver, common.Rect{Width: 0.5, Height: 0.5}, physics.ActorTag(id), true)
			if err != nil {
				t.Fatalf("create static: %v", err)
			}
			if static.Type() != physics.StaticBody {
				t.Fatalf("type = %v, want static", static.Type())
			}
		})
	}
}

func TestNewActorBodyDensity(t *testing.T) {
	solver := physicstest.New()
	if _, err := physics.NewActorBody(solver, common.Rect{Width: 0.32, Height: 0.32}, physics.ActorTag(1), false); err != nil {
		t.Fatal(err)
	}
	def := solver.Defs[0]
	box := def.Shape.(physics.BoxShape)
	if def.Density != physics.ActorDensity || !near(box.HalfWidth, 0.16) || !near(box.HalfHeight, 0.16) {
		t.Fatalf("unexpected def %+v", def)
	}
}

func TestNewActorBodyRejectsInvalidBounds(t *testing.T) {
	cases := []struct {
		name   string
		bounds common.Rect
	}{
		{"zero_width", common.Rect{Width: 0, Height: 1}},
		{"negative_height", common.Rect{Width: 1, Height: -1}},
		{"nan_origin", common.Rect{X: math.NaN(), Width: 1, Height: 1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			solver := physicstest.New()
			_, err := physics.NewActorBody(solver, c.bounds, physics.ActorTag(1), false)
			if !errors.Is(err, physics.ErrInvalidBounds) {
				t.Fatalf("err = %v, want ErrInvalidBounds", err)
			}
			if solver.BodyCount() != 0 {
				t.Fatalf("no body should be created")
			}
		})
	}
}

type recordingListener struct {
	physics.NopContactListener
	begins  []physics.Contact
	ends    []physics.Contact
	onBegin func(c physics.Contact)
}

func (r *recordingListener) BeginContact(c physics.Contact) {
	r.begins = append(r.begins, c)
	if r.onBegin != nil {
		r.onBegin(c)
	}
}

func (r *recordingListener) EndContact(c physics.Contact) {
	r.ends = append(r.ends, c)
}

func dropBox(t *testing.T, solver physics.Solver, actor ecs.Entity) physics.Body {
	t.Helper()
	floor := physics.BodyDef{
		Type:     physics.StaticBody,
		Position: mgl64.Vec2{0, 0},
		Shape:    physics.BoxShape{HalfWidth: 5, HalfHeight: 0.5},
		Tag:      physics.MapCollisionTag(),
	}
	if _, err := solver.CreateBody(floor); err != nil {
		t.Fatalf("floor: %v", err)
	}
	body, err := physics.NewActorBody(solver, common.Rect{X: -0.5, Y: 1, Width: 0.5, Height: 0.5}, physics.ActorTag(actor), false)
	if err != nil {
		t.Fatalf("actor: %v", err)
	}
	return body
}

func TestSolverBeginContact(t *testing.T) {
	actor := ecs.Entity(3)
	for _, f := range realSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			listener := &recordingListener{}
			solver.SetContactListener(listener)
			body := dropBox(t, solver, actor)
			startY := body.Position().Y()

			for i := 0; i < 120 && len(listener.begins) == 0; i++ {
				solver.Step(common.SimulationStep, common.VelocityIterations, common.PositionIterations)
			}
			if len(listener.begins) == 0 {
				t.Fatalf("box never touched the floor (y=%v)", body.Position().Y())
			}
			if body.Position().Y() >= startY {
				t.Fatalf("box did not fall: %v -> %v", startY, body.Position().Y())
			}
			c := listener.begins[0]
			mapFirst := c.A.IsMapCollision() && c.B.IsActor(actor)
			actorFirst := c.B.IsMapCollision() && c.A.IsActor(actor)
			if !mapFirst && !actorFirst {
				t.Fatalf("unexpected contact tags %v / %v", c.A, c.B)
			}
			if c.BodyA == nil || c.BodyB == nil {
				t.Fatalf("contact bodies should resolve")
			}
		})
	}
}

func TestSolverLockedDuringCallbacks(t *testing.T) {
	for _, f := range realSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			defer solver.Destroy()

			var destroyErr, createErr error
			var locked bool
			listener := &recordingListener{}
			listener.onBegin = func(c physics.Contact) {
				if len(listener.begins) > 1 {
					return
				}
				locked = solver.Locked()
				destroyErr = solver.DestroyBody(c.BodyA)
				_, createErr = physics.NewActorBody(solver, common.Rect{Width: 1, Height: 1}, physics.ActorTag(9), false)
			}
			solver.SetContactListener(listener)
			dropBox(t, solver, 1)

			for i := 0; i < 120 && len(listener.begins) == 0; i++ {
				solver.Step(common.SimulationStep, common.VelocityIterations, common.PositionIterations)
			}
			if len(listener.begins) == 0 {
				t.Fatal("no contact")
			}
			if !locked {
				t.Fatal("solver should report locked inside a callback")
			}
			if !errors.Is(destroyErr, physics.ErrWorldLocked) || !errors.Is(createErr, physics.ErrWorldLocked) {
				t.Fatalf("destroy err = %v, create err = %v", destroyErr, createErr)
			}
			if solver.Locked() {
				t.Fatal("solver should unlock after the step")
			}
			if solver.BodyCount() != 2 {
				t.Fatalf("bodies = %d, want 2", solver.BodyCount())
			}
		})
	}
}

func TestSolverDestroy(t *testing.T) {
	for _, f := range allSolvers() {
		t.Run(f.name, func(t *testing.T) {
			solver := f.make()
			body := dropBox(t, solver, 1)

			if err := solver.DestroyBody(body); err != nil {
				t.Fatalf("destroy body: %v", err)
			}
			if err := solver.DestroyBody(body); !errors.Is(err, physics.ErrForeignBody) {
				t.Fatalf("second destroy err = %v", err)
			}
			if solver.BodyCount() != 1 {
				t.Fatalf("bodies = %d, want 1", solver.BodyCount())
			}

			solver.Destroy()
			solver.Destroy()
			if solver.BodyCount() != 0 {
				t.Fatalf("bodies after destroy = %d", solver.BodyCount())
			}
			if _, err := physics.NewActorBody(solver, common.Rect{Width: 1, Height: 1}, physics.ActorTag(1), false); !errors.Is(err, physics.ErrDestroyed) {
				t.Fatalf("create after destroy err = %v", err)
			}
			solver.Step(common.SimulationStep, 6, 2)
		})
	}
}

func TestSolverRejectsForeignBody(t *testing.T) {
	a := physics.NewBox2DSolver(physics.DefaultGravity())
	b := physics.NewChipmunkSolver(physics.DefaultGravity())
	defer a.Destroy()
	defer b.Destroy()

	body, err := physics.NewActorBody(a, common.Rect{Width: 1, Height: 1}, physics.ActorTag(1), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := b.DestroyBody(body); !errors.Is(err, physics.ErrForeignBody) {
		t.Fatalf("err = %v, want ErrForeignBody", err)
	}
}

func TestNewSolver(t *testing.T) {
	cases := []struct {
		backend physics.Backend
		wantErr bool
	}{
		{"", false},
		{physics.BackendBox2D, false},
		{physics.BackendChipmunk, false},
		{"bullet", true},
	}
	for _, c := range cases {
		t.Run(string(c.backend), func(t *testing.T) {
			solver, err := physics.NewSolver(c.backend, physics.DefaultGravity())
			if c.wantErr {
				if !errors.Is(err, physics.ErrUnknownBackend) {
					t.Fatalf("err = %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			solver.Destroy()
		})
	}
}

func TestValidateChain(t *testing.T) {
	cases := []struct {
		name    string
		verts   []mgl64.Vec2
		closed  bool
		wantErr bool
	}{
		{"segment", []mgl64.Vec2{{0, 0}, {1, 0}}, false, false},
		{"single_vertex", []mgl64.Vec2{{0, 0}}, false, true},
		{"closed_needs_three", []mgl64.Vec2{{0, 0}, {1, 0}}, true, true},
		{"triangle", []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}}, true, false},
		{"duplicate", []mgl64.Vec2{{0, 0}, {0, 0}, {1, 1}}, false, true},
		{"closed_repeats_first", []mgl64.Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 0}}, true, true},
		{"infinite", []mgl64.Vec2{{0, 0}, {math.Inf(1), 0}}, false, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := physics.ValidateChain(c.verts, c.closed)
			if c.wantErr != (err != nil) {
				t.Fatalf("err = %v, wantErr %v", err, c.wantErr)
			}
			if err != nil && !errors.Is(err, physics.ErrMalformedPolygon) {
				t.Fatalf("err should wrap ErrMalformedPolygon: %v", err)
			}
		})
	}
}

func TestTags(t *testing.T) {
	e := ecs.Entity(4)
	if !physics.MapCollisionTag().IsMapCollision() {
		t.Fatal("map tag")
	}
	if physics.ActorTag(e).IsMapCollision() || !physics.ActorTag(e).IsActor(e) {
		t.Fatal("actor tag")
	}
	if physics.ActorTag(e).IsActor(ecs.Entity(5)) {
		t.Fatal("actor tag matched another entity")
	}
	if (physics.Tag{}).String() != "none" || physics.MapCollisionTag().String() != "map" {
		t.Fatal("tag strings")
	}
}
