package prefabs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	WorldFile  = "world.yaml"
	PlayerFile = "player.yaml"
	GemFile    = "gem.yaml"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

func (v VectorSpec) Vec2() mgl64.Vec2 {
	return mgl64.Vec2{v.X, v.Y}
}

// WorldSpec holds per-session tunables for the simulation.
type WorldSpec struct {
	Name             string     `yaml:"name"`
	Solver           string     `yaml:"solver"`
	Gravity          VectorSpec `yaml:"gravity"`
	Warmup           *float64   `yaml:"warmup"`
	ReactionVelocity VectorSpec `yaml:"reaction_velocity"`
	ReactionScript   string     `yaml:"reaction_script"`
	CollectGems      bool       `yaml:"collect_gems"`
	CollisionLayer   string     `yaml:"collision_layer"`
	ObjectsLayer     string     `yaml:"objects_layer"`
	PlayerStart      string     `yaml:"player_start"`
	CameraZoom       float64    `yaml:"camera_zoom"`
}

// WarmupSeconds returns the configured warm-up or def when unset.
func (s WorldSpec) WarmupSeconds(def float64) float64 {
	if s.Warmup == nil || *s.Warmup < 0 {
		return def
	}
	return *s.Warmup
}

type PlayerSpec struct {
	Name      string  `yaml:"name"`
	Image     string  `yaml:"image"`
	TileScale float64 `yaml:"tile_scale"`
	Static    bool    `yaml:"static"`
}

type GemSpec struct {
	Name          string   `yaml:"name"`
	Image         string   `yaml:"image"`
	FrameWidth    int      `yaml:"frame_width"`
	FrameHeight   int      `yaml:"frame_height"`
	Frames        int      `yaml:"frames"`
	FrameDuration float64  `yaml:"frame_duration"`
	Classes       []string `yaml:"classes"`
}

// ClassIndex returns the sheet row for a gem class, or -1.
func (s GemSpec) ClassIndex(class string) int {
	for i, c := range s.Classes {
		if c == class {
			return i
		}
	}
	return -1
}

func LoadWorldSpec() (*WorldSpec, error) {
	spec, err := LoadSpec[WorldSpec](WorldFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func LoadPlayerSpec() (*PlayerSpec, error) {
	spec, err := LoadSpec[PlayerSpec](PlayerFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

func LoadGemSpec() (*GemSpec, error) {
	spec, err := LoadSpec[GemSpec](GemFile)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Specs bundles every prefab the game loads at start-up.
type Specs struct {
	World  WorldSpec
	Player PlayerSpec
	Gem    GemSpec
}

func LoadAll() (*Specs, error) {
	world, err := LoadWorldSpec()
	if err != nil {
		return nil, err
	}
	player, err := LoadPlayerSpec()
	if err != nil {
		return nil, err
	}
	gem, err := LoadGemSpec()
	if err != nil {
		return nil, err
	}
	return &Specs{World: *world, Player: *player, Gem: *gem}, nil
}
