package sim

import (
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/physics"
)

// DefaultReaction is the velocity given to the player when it touches map
// geometry.
var DefaultReaction = mgl64.Vec2{8, 0}

// ContactStats counts contact events seen by a dispatcher.
type ContactStats struct {
	Begins    int
	Ends      int
	Reactions int
	Collected int
}

// ContactDispatcher classifies solver contacts and reacts to them. It only
// changes body properties; anything that adds or removes bodies is queued
// on Commands and applied after the step loop.
type ContactDispatcher struct {
	Player      ecs.Entity
	Reaction    mgl64.Vec2
	Script      *ReactionScript
	CollectGems bool
	Commands    *ecs.CommandQueue

	// IsGem reports whether an actor is collectable; Collect removes it.
	IsGem   func(ecs.Entity) bool
	Collect func(ecs.Entity) error

	logger  *log.Logger
	stats   ContactStats
	pending map[ecs.Entity]bool
}

var _ physics.ContactListener = (*ContactDispatcher)(nil)

func NewContactDispatcher(player ecs.Entity, commands *ecs.CommandQueue, logger *log.Logger) *ContactDispatcher {
	if logger == nil {
		logger = log.Default().WithPrefix("contact")
	}
	return &ContactDispatcher{
		Player:   player,
		Reaction: DefaultReaction,
		Commands: commands,
		logger:   logger,
		pending:  make(map[ecs.Entity]bool),
	}
}

func (d *ContactDispatcher) Stats() ContactStats {
	return d.stats
}

func (d *ContactDispatcher) BeginContact(c physics.Contact) {
	d.stats.Begins++
	d.logger.Debug("begin contact", "a", c.A, "b", c.B)

	switch {
	case c.A.IsMapCollision() && c.B.IsActor(d.Player):
		d.react(c.BodyB)
	case c.B.IsMapCollision() && c.A.IsActor(d.Player):
		d.react(c.BodyA)
	case c.A.IsActor(d.Player) && c.B.Kind == physics.TagActor:
		d.touch(c.B.Actor)
	case c.B.IsActor(d.Player) && c.A.Kind == physics.TagActor:
		d.touch(c.A.Actor)
	}
}

func (d *ContactDispatcher) EndContact(c physics.Contact) {
	d.stats.Ends++
}

func (d *ContactDispatcher) PreSolve(c physics.Contact) {}

func (d *ContactDispatcher) PostSolve(c physics.Contact) {}

func (d *ContactDispatcher) react(player physics.Body) {
	if player == nil {
		return
	}
	d.stats.Reactions++
	v := d.Reaction
	if d.Script != nil {
		out, err := d.Script.Eval(d.Reaction, d.stats.Reactions)
		if err != nil {
			d.logger.Warn("reaction script failed", "script", d.Script.Name(), "err", err)
		} else {
			v = out
		}
	}
	player.SetLinearVelocity(v)
}

func (d *ContactDispatcher) touch(other ecs.Entity) {
	if !d.CollectGems || d.Commands == nil || d.Collect == nil {
		return
	}
	if d.IsGem != nil && !d.IsGem(other) {
		return
	}
	if d.pending[other] {
		return
	}
	d.pending[other] = true
	d.Commands.Push(ecs.Command{
		Name: "collect " + other.String(),
		Apply: func() error {
			delete(d.pending, other)
			if err := d.Collect(other); err != nil {
				return err
			}
			d.stats.Collected++
			return nil
		},
	})
}
