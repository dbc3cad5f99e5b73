package actor

import (
	"errors"
	"fmt"

	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/ecs"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/prefabs"
)

// ErrMissingSpawn is returned when the level has no player start object.
var ErrMissingSpawn = errors.New("actor: player spawn not found")

// PlayerConfig locates and sizes the player.
type PlayerConfig struct {
	ID             ecs.Entity
	Layer          string
	Spawn          string
	Spec           prefabs.PlayerSpec
	PixelsPerMeter float64
}

type Player struct {
	id       ecs.Entity
	body     physics.Body
	sprite   *Sprite
	disposed bool
}

var _ Actor = (*Player)(nil)

// NewPlayer builds the player at the level's spawn object. The sprite is one
// map tile square (times the prefab tile scale) centred on the spawn point.
func NewPlayer(solver physics.Solver, level *levels.Level, cfg PlayerConfig) (*Player, error) {
	ppm := cfg.PixelsPerMeter
	if ppm <= 0 {
		ppm = common.PixelsPerMeter
	}
	x, y, err := level.NamedLocation(cfg.Layer, cfg.Spawn)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMissingSpawn, err)
	}

	scale := cfg.Spec.TileScale
	if scale <= 0 {
		scale = 1
	}
	w := float64(level.TileWidth) / ppm * scale
	h := float64(level.TileHeight) / ppm * scale

	sprite := NewSpriteAt(x/ppm, y/ppm, w, h)
	sprite.Image = cfg.Spec.Image

	body, err := physics.NewActorBody(solver, sprite.Bounds(), physics.ActorTag(cfg.ID), cfg.Spec.Static)
	if err != nil {
		return nil, fmt.Errorf("actor: player body: %w", err)
	}
	return &Player{id: cfg.ID, body: body, sprite: sprite}, nil
}

func (p *Player) ID() ecs.Entity     { return p.id }
func (p *Player) Body() physics.Body { return p.body }
func (p *Player) Sprite() *Sprite    { return p.sprite }

func (p *Player) Update(dt float64) {
	if p.disposed {
		return
	}
	SyncSprite(p.sprite, p.body)
}

func (p *Player) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.body = nil
}

func (p *Player) Disposed() bool {
	return p.disposed
}
