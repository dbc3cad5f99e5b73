package sim

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/actor"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/physics/physicstest"
	"github.com/milk9111/gemfall/prefabs"
)

func testSpecs(warmup float64, collect bool) *prefabs.Specs {
	return &prefabs.Specs{
		World: prefabs.WorldSpec{
			Solver:           "box2d",
			Gravity:          prefabs.VectorSpec{X: 0, Y: -10},
			Warmup:           &warmup,
			ReactionVelocity: prefabs.VectorSpec{X: 8, Y: 0},
			CollectGems:      collect,
			CameraZoom:       0.25,
		},
		Player: prefabs.PlayerSpec{Image: "player", TileScale: 1},
		Gem: prefabs.GemSpec{
			Image:         "gems",
			FrameWidth:    32,
			FrameHeight:   32,
			Frames:        8,
			FrameDuration: 0.1,
			Classes:       []string{"BlueGem", "GreyGem", "PinkGem", "GreenGem", "OrangeGem", "YellowGem"},
		},
	}
}

func testLevel() *levels.Level {
	return &levels.Level{
		Width: 20, Height: 10, TileWidth: 32, TileHeight: 32,
		Layers: []levels.Layer{
			{Name: "Collisions", Type: levels.LayerObjects, Objects: []levels.Object{
				{ID: 1, Name: "floor", Width: 640, Height: 32},
				{ID: 2, Name: "broken", Polyline: []levels.Point{{X: 1, Y: 1}}},
			}},
			{Name: "Objects", Type: levels.LayerObjects, Objects: []levels.Object{
				{ID: 10, Name: "PlayerStartPos", X: 100, Y: 200, IsPoint: true},
				{ID: 11, Type: "BlueGem", X: 300, Y: 100},
				{ID: 12, Type: "GreenGem", X: 400, Y: 100},
			}},
		},
	}
}

func loadFake(t *testing.T, warmup float64, collect bool) (*Session, *physicstest.Solver) {
	t.Helper()
	solver := physicstest.New()
	s, err := Load(Options{
		Level:     testLevel(),
		LevelName: "test",
		Specs:     testSpecs(warmup, collect),
		Solver:    solver,
		Logger:    quietLogger(),
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return s, solver
}

func TestLoadBuildsWorld(t *testing.T) {
	s, solver := loadFake(t, 5, false)
	defer s.Close()

	r := s.Report()
	if r.StaticBodies != 1 || r.Skipped != 1 || r.Gems != 2 {
		t.Fatalf("report = %+v", r)
	}
	if solver.BodyCount() != 4 {
		t.Fatalf("solver bodies = %d, want floor + player + 2 gems", solver.BodyCount())
	}
	if s.Player() == nil || len(s.Actors()) != 3 {
		t.Fatalf("actors = %d", len(s.Actors()))
	}
	if s.Actors()[0] != actor.Actor(s.Player()) {
		t.Fatal("player should come first")
	}
	if s.Camera() != s.Player().Body().Position() {
		t.Fatalf("camera %v should start on the player", s.Camera())
	}
	if s.CameraZoom() != 0.25 {
		t.Fatalf("zoom = %v", s.CameraZoom())
	}
}

func TestSessionWarmupGatesSolver(t *testing.T) {
	s, solver := loadFake(t, 5, false)
	defer s.Close()

	for i := 0; i < 4; i++ {
		if err := s.Update(1); err != nil {
			t.Fatal(err)
		}
	}
	if len(solver.Steps) != 0 {
		t.Fatalf("solver stepped %d times during warm-up", len(solver.Steps))
	}
	s.Update(1)
	if len(solver.Steps) != 15 {
		t.Fatalf("threshold frame steps = %d, want 15 (clamped)", len(solver.Steps))
	}
	s.Update(0.04)
	if len(solver.Steps) != 17 {
		t.Fatalf("steps = %d, want 17", len(solver.Steps))
	}
	for _, c := range solver.Steps {
		if c.DT != 1.0/60 || c.VelocityIterations != 6 || c.PositionIterations != 2 {
			t.Fatalf("step call = %+v", c)
		}
	}
}

func TestSessionUpdateOrdering(t *testing.T) {
	s, solver := loadFake(t, 0, false)
	defer s.Close()

	player := s.Player()
	playerBody := solver.Find(player.Body().Tag())
	floor := solver.Find(physics.MapCollisionTag())

	solver.OnStep = func(fs *physicstest.Solver, dt float64) {
		playerBody.Pos = playerBody.Pos.Add(mgl64.Vec2{0.5, -0.1})
		fs.Begin(floor, playerBody)
	}

	if err := s.Update(0.04); err != nil {
		t.Fatal(err)
	}
	if len(solver.Steps) != 2 {
		t.Fatalf("steps = %d, want 2", len(solver.Steps))
	}
	if playerBody.Velocity != (mgl64.Vec2{8, 0}) {
		t.Fatalf("reaction not applied: %v", playerBody.Velocity)
	}

	sp := player.Sprite()
	if sp.X != playerBody.Pos.X()-sp.Width/2 || sp.Y != playerBody.Pos.Y()-sp.Height/2 {
		t.Fatalf("sprite (%v, %v) not synced to body %v after stepping", sp.X, sp.Y, playerBody.Pos)
	}
	if s.Camera() != playerBody.Pos {
		t.Fatalf("camera %v does not follow %v", s.Camera(), playerBody.Pos)
	}
	if st := s.Stats(); st.Begins != 2 || st.Reactions != 2 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestSessionActorsUpdateWithoutSteps(t *testing.T) {
	s, solver := loadFake(t, 5, false)
	defer s.Close()

	gem := s.Gems()[0]
	body := solver.Find(gem.Body().Tag())
	body.Pos = mgl64.Vec2{7, 7}

	s.Update(0.25)
	if len(solver.Steps) != 0 {
		t.Fatal("no steps expected during warm-up")
	}
	if gem.Sprite().X != 7-gem.Sprite().Width/2 {
		t.Fatalf("gem sprite not resynced during warm-up: %v", gem.Sprite().X)
	}
	if gem.StateTime() != 0.25 {
		t.Fatalf("gem animation clock = %v", gem.StateTime())
	}
}

func TestSessionDefersGemCollect(t *testing.T) {
	s, solver := loadFake(t, 0, true)
	defer s.Close()

	gem := s.Gems()[0]
	gemBody := solver.Find(gem.Body().Tag())
	playerBody := solver.Find(s.Player().Body().Tag())

	var stillThere bool
	solver.OnStep = func(fs *physicstest.Solver, dt float64) {
		fs.Begin(playerBody, gemBody)
		stillThere = !gemBody.Removed
	}

	if err := s.Update(0.02); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !stillThere {
		t.Fatal("gem body removed inside the step")
	}
	if !gemBody.Removed || !gem.Disposed() {
		t.Fatal("gem should be removed after the step loop")
	}
	if len(s.Gems()) != 1 || s.Report().Contacts.Collected != 1 {
		t.Fatalf("gems = %d, report = %+v", len(s.Gems()), s.Report())
	}
}

func TestSessionCloseIsIdempotent(t *testing.T) {
	s, solver := loadFake(t, 0, false)
	actors := s.Actors()

	s.Close()
	s.Close()

	if solver.Destroys != 1 || !solver.Destroyed() {
		t.Fatalf("solver destroyed %d times", solver.Destroys)
	}
	for _, a := range actors {
		if a.Body() != nil {
			t.Fatalf("actor %v still holds a body", a.ID())
		}
	}
	if s.Level() != nil || len(s.Actors()) != 0 {
		t.Fatal("session should drop level and actors")
	}
	if err := s.Update(0.1); !errors.Is(err, ErrClosed) {
		t.Fatalf("update after close = %v", err)
	}
	var nilSession *Session
	nilSession.Close()
}

func TestLoadFailureReleasesSolver(t *testing.T) {
	level := testLevel()
	level.Layers[1].Objects = level.Layers[1].Objects[1:]
	solver := physicstest.New()

	_, err := Load(Options{Level: level, Specs: testSpecs(0, false), Solver: solver, Logger: quietLogger()})
	if !errors.Is(err, actor.ErrMissingSpawn) || !errors.Is(err, levels.ErrObjectNotFound) {
		t.Fatalf("err = %v", err)
	}
	if !solver.Destroyed() {
		t.Fatal("solver should be destroyed after a failed load")
	}
}

func TestLoadUnknownBackend(t *testing.T) {
	_, err := Load(Options{Level: testLevel(), Specs: testSpecs(0, false), Backend: "bullet", Logger: quietLogger()})
	if !errors.Is(err, physics.ErrUnknownBackend) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyWorldSpec(t *testing.T) {
	s, solver := loadFake(t, 5, false)
	defer s.Close()

	w := testSpecs(0, true).World
	w.ReactionVelocity = prefabs.VectorSpec{X: -2, Y: 1}
	s.ApplyWorldSpec(w)

	if s.Stepper().Warmup != 0 {
		t.Fatalf("warmup = %v", s.Stepper().Warmup)
	}
	floor := solver.Find(physics.MapCollisionTag())
	playerBody := solver.Find(s.Player().Body().Tag())
	solver.Begin(floor, playerBody)
	if playerBody.Velocity != (mgl64.Vec2{-2, 1}) {
		t.Fatalf("velocity = %v", playerBody.Velocity)
	}

	s.ApplyGemSpec(prefabs.GemSpec{FrameDuration: 0.5})
	s.Update(0.6)
	if got := s.Gems()[0].Sprite().Region.Min.X; got != 32 {
		t.Fatalf("frame x = %d, want second frame", got)
	}
}

func TestSessionRealBackends(t *testing.T) {
	for _, backend := range []physics.Backend{physics.BackendBox2D, physics.BackendChipmunk} {
		t.Run(string(backend), func(t *testing.T) {
			s, err := Load(Options{
				LevelName: levels.DefaultLevel,
				Specs:     testSpecs(0, false),
				Backend:   backend,
				Logger:    quietLogger(),
			})
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			defer s.Close()

			start := s.Player().Body().Position()
			for i := 0; i < 180; i++ {
				if err := s.Update(1.0 / 60); err != nil {
					t.Fatal(err)
				}
			}
			r := s.Report()
			if r.Steps == 0 || r.StaticBodies == 0 {
				t.Fatalf("report = %+v", r)
			}
			if r.Contacts.Reactions == 0 {
				t.Fatalf("player never reached the ground (start %v, now %v)", start, s.Player().Body().Position())
			}
			if s.Player().Body().Position() == start {
				t.Fatal("player did not move")
			}
		})
	}
}
