package sim

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/actor"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/prefabs"
)

// Report summarizes a session for the HUD and logs.
type Report struct {
	Level        string
	Backend      string
	StaticBodies int
	Skipped      int
	Gems         int
	Steps        uint64
	WarmedUp     bool
	Contacts     ContactStats
}

func (s *Session) Report() Report {
	r := Report{
		Level:        s.levelName,
		Backend:      s.backendName(),
		StaticBodies: s.geometry.BodyCount(),
		Skipped:      len(s.geometry.Skipped),
		Gems:         len(s.Gems()),
	}
	if s.stepper != nil {
		r.Steps = s.stepper.TotalSteps()
		r.WarmedUp = s.stepper.WarmedUp()
	}
	if s.dispatcher != nil {
		r.Contacts = s.dispatcher.Stats()
	}
	return r
}

func (s *Session) Level() *levels.Level             { return s.level }
func (s *Session) Solver() physics.Solver           { return s.solver }
func (s *Session) Stepper() *FixedStepper           { return s.stepper }
func (s *Session) Player() *actor.Player            { return s.player }
func (s *Session) Geometry() physics.GeometryReport { return s.geometry }
func (s *Session) PixelsPerMeter() float64          { return s.ppm }

// Camera is the point the view is centred on, in meters.
func (s *Session) Camera() mgl64.Vec2 {
	return s.camera
}

// CameraZoom is the configured zoom factor, defaulting to 1.
func (s *Session) CameraZoom() float64 {
	if s.specs.World.CameraZoom <= 0 {
		return 1
	}
	return s.specs.World.CameraZoom
}

func (s *Session) Stats() ContactStats {
	if s.dispatcher == nil {
		return ContactStats{}
	}
	return s.dispatcher.Stats()
}

// Actors returns the live actors, player first.
func (s *Session) Actors() []actor.Actor {
	if s.actors == nil {
		return nil
	}
	out := make([]actor.Actor, 0, s.actors.Len())
	if s.player != nil {
		out = append(out, s.player)
	}
	s.actors.Each(func(_ ecs.Entity, a actor.Actor) {
		if a != actor.Actor(s.player) {
			out = append(out, a)
		}
	})
	return out
}

func (s *Session) Gems() []*actor.Gem {
	if s.actors == nil {
		return nil
	}
	var gems []*actor.Gem
	s.actors.Each(func(_ ecs.Entity, a actor.Actor) {
		if g, ok := a.(*actor.Gem); ok {
			gems = append(gems, g)
		}
	})
	return gems
}

// ApplyWorldSpec swaps in reloaded world tunables between frames. Gravity,
// solver backend and layer names only take effect on the next Load.
func (s *Session) ApplyWorldSpec(w prefabs.WorldSpec) {
	if s.closed {
		return
	}
	w = withLayerDefaults(w)
	s.stepper.Warmup = w.WarmupSeconds(common.WarmupDelay)
	s.dispatcher.Reaction = reactionVelocity(w)
	s.dispatcher.CollectGems = w.CollectGems
	if w.ReactionScript == "" {
		s.dispatcher.Script = nil
	} else if s.dispatcher.Script == nil || s.dispatcher.Script.Name() != w.ReactionScript {
		script, err := LoadReactionScript(w.ReactionScript)
		if err != nil {
			s.logger.Warn("reaction script not reloaded", "script", w.ReactionScript, "err", err)
		} else {
			s.dispatcher.Script = script
		}
	}
	s.specs.World.Warmup = w.Warmup
	s.specs.World.ReactionVelocity = w.ReactionVelocity
	s.specs.World.ReactionScript = w.ReactionScript
	s.specs.World.CollectGems = w.CollectGems
	s.specs.World.CameraZoom = w.CameraZoom
	s.logger.Info("world tunables applied", "reaction", s.dispatcher.Reaction, "warmup", s.stepper.Warmup, "collect_gems", w.CollectGems)
}

// ApplyGemSpec retimes gem animations.
func (s *Session) ApplyGemSpec(g prefabs.GemSpec) {
	if s.closed {
		return
	}
	for _, gem := range s.Gems() {
		gem.SetFrameDuration(g.FrameDuration)
	}
	s.specs.Gem.FrameDuration = g.FrameDuration
}

// SetReactionScript replaces the compiled reaction script; nil restores
// the fixed reaction vector.
func (s *Session) SetReactionScript(script *ReactionScript) {
	if s.dispatcher != nil {
		s.dispatcher.Script = script
	}
}
