package actor

import (
	"fmt"

	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/prefabs"
)

type Gem struct {
	id        ecs.Entity
	class     string
	body      physics.Body
	sprite    *Sprite
	anim      Animation
	stateTime float64
	disposed  bool
}

var _ Actor = (*Gem)(nil)

// GemConfig places a single gem. Position is the gem centre in pixels.
type GemConfig struct {
	ID             ecs.Entity
	Class          string
	X, Y           float64
	Animation      Animation
	Image          string
	PixelsPerMeter float64
}

func NewGem(solver physics.Solver, cfg GemConfig) (*Gem, error) {
	ppm := cfg.PixelsPerMeter
	if ppm <= 0 {
		ppm = common.PixelsPerMeter
	}
	w := float64(cfg.Animation.FrameW) / ppm
	h := float64(cfg.Animation.FrameH) / ppm

	sprite := NewSpriteAt(cfg.X/ppm, cfg.Y/ppm, w, h)
	sprite.Image = cfg.Image
	sprite.Region = cfg.Animation.Frame(0)

	body, err := physics.NewActorBody(solver, sprite.Bounds(), physics.ActorTag(cfg.ID), false)
	if err != nil {
		return nil, fmt.Errorf("actor: gem %s body: %w", cfg.Class, err)
	}
	return &Gem{
		id:     cfg.ID,
		class:  cfg.Class,
		body:   body,
		sprite: sprite,
		anim:   cfg.Animation,
	}, nil
}

// BuildGems creates a gem for every object in layer whose class is one of
// the prefab's gem classes. The class picks the sheet row. newID is called
// once per gem.
func BuildGems(solver physics.Solver, level *levels.Level, layer string, spec prefabs.GemSpec, ppm float64, newID func() ecs.Entity) ([]*Gem, error) {
	ly, ok := level.Layer(layer)
	if !ok {
		return nil, nil
	}
	var gems []*Gem
	for i := range ly.Objects {
		obj := &ly.Objects[i]
		class := obj.Class()
		row := spec.ClassIndex(class)
		if row < 0 {
			continue
		}
		x, _ := obj.PropertyFloat("x")
		y, _ := obj.PropertyFloat("y")
		gem, err := NewGem(solver, GemConfig{
			ID:    newID(),
			Class: class,
			X:     x,
			Y:     y,
			Animation: Animation{
				FrameW:        spec.FrameWidth,
				FrameH:        spec.FrameHeight,
				FrameCount:    spec.Frames,
				FrameDuration: spec.FrameDuration,
				Row:           row,
				Loop:          true,
			},
			Image:          spec.Image,
			PixelsPerMeter: ppm,
		})
		if err != nil {
			return gems, err
		}
		gems = append(gems, gem)
	}
	return gems, nil
}

func (g *Gem) ID() ecs.Entity     { return g.id }
func (g *Gem) Body() physics.Body { return g.body }
func (g *Gem) Sprite() *Sprite    { return g.sprite }
func (g *Gem) Class() string      { return g.class }

// StateTime is the accumulated animation clock in seconds.
func (g *Gem) StateTime() float64 {
	return g.stateTime
}

// SetFrameDuration retimes the animation without resetting its clock.
func (g *Gem) SetFrameDuration(d float64) {
	if d > 0 {
		g.anim.FrameDuration = d
	}
}

func (g *Gem) Update(dt float64) {
	if g.disposed {
		return
	}
	if dt > 0 {
		g.stateTime += dt
	}
	g.sprite.Region = g.anim.Frame(g.anim.KeyFrame(g.stateTime))
	SyncSprite(g.sprite, g.body)
}

func (g *Gem) Dispose() {
	if g.disposed {
		return
	}
	g.disposed = true
	g.body = nil
}

func (g *Gem) Disposed() bool {
	return g.disposed
}
