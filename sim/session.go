package sim

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/actor"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/prefabs"
)

const (
	DefaultCollisionLayer = "Collisions"
	DefaultObjectsLayer   = "Objects"
	DefaultPlayerStart    = "PlayerStartPos"
)

var (
	ErrClosed  = errors.New("sim: session closed")
	ErrNotAGem = errors.New("sim: actor is not a gem")
	ErrNoSpecs = errors.New("sim: no prefab specs")
)

// Options configures Load. Level and Specs fall back to the named level
// and the prefab files. Solver, when set, is used instead of creating one
// and is destroyed by Close.
type Options struct {
	Level          *levels.Level
	LevelName      string
	Specs          *prefabs.Specs
	Backend        physics.Backend
	Solver         physics.Solver
	Script         *ReactionScript
	PixelsPerMeter float64
	Logger         *log.Logger
}

// Session is one loaded level: the solver, its static geometry, the actors
// and the fixed-step loop that drives them.
type Session struct {
	levelName string
	level     *levels.Level
	specs     prefabs.Specs
	backend   physics.Backend
	ppm       float64

	solver     physics.Solver
	stepper    *FixedStepper
	dispatcher *ContactDispatcher
	commands   ecs.CommandQueue
	actors     *ecs.Registry[actor.Actor]
	player     *actor.Player
	geometry   physics.GeometryReport

	camera   mgl64.Vec2
	warmedUp bool
	closed   bool
	logger   *log.Logger
}

// Load builds a session. On failure everything built so far is released.
func Load(opts Options) (*Session, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("sim")
	}

	level := opts.Level
	name := opts.LevelName
	if level == nil {
		var err error
		level, err = levels.Load(name)
		if err != nil {
			return nil, fmt.Errorf("sim: load level %s: %w", name, err)
		}
	}
	if name == "" {
		name = levels.DefaultLevel
	}

	specs := opts.Specs
	if specs == nil {
		var err error
		specs, err = prefabs.LoadAll()
		if err != nil {
			return nil, fmt.Errorf("sim: %w: %w", ErrNoSpecs, err)
		}
	}
	world := withLayerDefaults(specs.World)

	ppm := opts.PixelsPerMeter
	if ppm <= 0 {
		ppm = common.PixelsPerMeter
	}

	backend := opts.Backend
	if backend == "" {
		backend = physics.Backend(world.Solver)
	}

	s := &Session{
		levelName: name,
		level:     level,
		specs:     *specs,
		backend:   backend,
		ppm:       ppm,
		actors:    ecs.NewRegistry[actor.Actor](),
		logger:    logger,
	}
	s.specs.World = world

	if opts.Solver != nil {
		s.solver = opts.Solver
	} else {
		solver, err := physics.NewSolver(backend, world.Gravity.Vec2())
		if err != nil {
			return nil, fmt.Errorf("sim: %w", err)
		}
		s.solver = solver
	}

	if err := s.build(opts.Script); err != nil {
		s.Close()
		return nil, fmt.Errorf("sim: load level %s: %w", name, err)
	}

	logger.Info("session loaded",
		"level", name,
		"backend", s.backendName(),
		"static", s.geometry.BodyCount(),
		"skipped", len(s.geometry.Skipped),
		"gems", len(s.Gems()),
		"warmup", s.stepper.Warmup)
	return s, nil
}

func (s *Session) build(script *ReactionScript) error {
	world := s.specs.World

	s.stepper = NewFixedStepper()
	s.stepper.Warmup = world.WarmupSeconds(common.WarmupDelay)

	report, err := physics.BuildStaticGeometry(s.solver, s.level, world.CollisionLayer, s.ppm, s.logger.WithPrefix("geometry"))
	s.geometry = report
	if err != nil {
		return err
	}

	playerID := s.actors.Create()
	player, err := actor.NewPlayer(s.solver, s.level, actor.PlayerConfig{
		ID:             playerID,
		Layer:          world.ObjectsLayer,
		Spawn:          world.PlayerStart,
		Spec:           s.specs.Player,
		PixelsPerMeter: s.ppm,
	})
	if err != nil {
		return err
	}
	if err := s.actors.Set(playerID, player); err != nil {
		return err
	}
	s.player = player

	gems, err := actor.BuildGems(s.solver, s.level, world.ObjectsLayer, s.specs.Gem, s.ppm, s.actors.Create)
	for _, g := range gems {
		if setErr := s.actors.Set(g.ID(), g); setErr != nil {
			return setErr
		}
	}
	if err != nil {
		return err
	}

	d := NewContactDispatcher(playerID, &s.commands, s.logger.WithPrefix("contact"))
	d.Reaction = reactionVelocity(world)
	d.CollectGems = world.CollectGems
	d.IsGem = s.isGem
	d.Collect = s.collect
	if script == nil && world.ReactionScript != "" {
		script, err = LoadReactionScript(world.ReactionScript)
		if err != nil {
			return err
		}
	}
	d.Script = script
	s.dispatcher = d
	s.solver.SetContactListener(d)

	s.followPlayer()
	return nil
}

// Update runs one frame: fixed solver steps (contact callbacks fire inside
// them), then deferred commands, then every actor, then the camera.
func (s *Session) Update(delta float64) error {
	if s.closed {
		return ErrClosed
	}

	s.stepper.Advance(delta, s.solver.Step)
	if !s.warmedUp && s.stepper.WarmedUp() {
		s.warmedUp = true
		s.logger.Info("warm-up complete", "after", s.stepper.WarmupElapsed())
	}

	err := s.commands.Flush()
	if err != nil {
		s.logger.Warn("deferred command failed", "err", err)
	}

	dt := sanitizeDelta(delta)
	s.actors.Each(func(_ ecs.Entity, a actor.Actor) {
		a.Update(dt)
	})
	s.followPlayer()
	return err
}

// Close tears the session down: stop stepping, dispose actors, destroy the
// solver, drop the level. It is safe to call more than once.
func (s *Session) Close() {
	if s == nil || s.closed {
		return
	}
	s.closed = true

	if s.solver != nil {
		s.solver.SetContactListener(nil)
	}
	s.commands.Drain()

	if s.actors != nil {
		for _, e := range s.actors.Entities() {
			if a, ok := s.actors.Get(e); ok && a != nil {
				a.Dispose()
			}
			s.actors.Destroy(e)
		}
	}
	s.player = nil

	if s.solver != nil {
		s.solver.Destroy()
	}
	s.geometry = physics.GeometryReport{Layer: s.geometry.Layer}
	s.level = nil
	s.logger.Debug("session closed", "level", s.levelName)
}

func (s *Session) Closed() bool {
	return s.closed
}

func (s *Session) followPlayer() {
	if s.player == nil || s.player.Body() == nil {
		return
	}
	s.camera = s.player.Body().Position()
}

func (s *Session) isGem(e ecs.Entity) bool {
	a, ok := s.actors.Get(e)
	if !ok {
		return false
	}
	_, gem := a.(*actor.Gem)
	return gem
}

func (s *Session) collect(e ecs.Entity) error {
	a, ok := s.actors.Get(e)
	if !ok {
		return nil
	}
	gem, ok := a.(*actor.Gem)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotAGem, e)
	}
	if body := gem.Body(); body != nil {
		if err := s.solver.DestroyBody(body); err != nil {
			return fmt.Errorf("sim: collect %s: %w", gem.Class(), err)
		}
	}
	gem.Dispose()
	s.actors.Destroy(e)
	s.logger.Debug("gem collected", "gem", gem.Class(), "id", e)
	return nil
}

func (s *Session) backendName() string {
	if s.backend == "" {
		return string(physics.BackendBox2D)
	}
	return string(s.backend)
}

func withLayerDefaults(w prefabs.WorldSpec) prefabs.WorldSpec {
	if w.CollisionLayer == "" {
		w.CollisionLayer = DefaultCollisionLayer
	}
	if w.ObjectsLayer == "" {
		w.ObjectsLayer = DefaultObjectsLayer
	}
	if w.PlayerStart == "" {
		w.PlayerStart = DefaultPlayerStart
	}
	return w
}

func reactionVelocity(w prefabs.WorldSpec) mgl64.Vec2 {
	v := w.ReactionVelocity.Vec2()
	if v == (mgl64.Vec2{}) {
		return DefaultReaction
	}
	return v
}
