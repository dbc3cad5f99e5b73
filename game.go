package main

import (
	"fmt"
	"path"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/prefabs"
	"github.com/milk9111/gemfall/render"
	"github.com/milk9111/gemfall/sim"
)

// Config is the command-line configuration of a game.
type Config struct {
	Level   string
	Backend physics.Backend
	Debug   bool
	Watch   bool
	Logger  *log.Logger
}

type Game struct {
	cfg    Config
	logger *log.Logger

	specs    *prefabs.Specs
	session  *sim.Session
	renderer *render.Renderer
	timer    *sim.FrameTimer
	watcher  *prefabs.Watcher

	pauseUI *ebitenui.UI
	paused  bool
	resumed bool
	quit    bool
}

func NewGame(cfg Config) (*Game, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	specs, err := prefabs.LoadAll()
	if err != nil {
		return nil, err
	}

	g := &Game{
		cfg:    cfg,
		logger: logger,
		specs:  specs,
		timer:  sim.NewFrameTimer(sim.SystemClock{}),
	}
	if err := g.load(); err != nil {
		return nil, err
	}

	g.renderer = render.NewRenderer(*specs, g.session.CameraZoom(), common.PixelsPerMeter)
	g.renderer.Debug = cfg.Debug
	g.pauseUI = NewPauseUI(g)

	if cfg.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, filepath.Join(prefabs.Dir, prefabs.ScriptsDir))
		if err != nil {
			logger.Warn("prefab watcher disabled", "err", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *Game) load() error {
	session, err := sim.Load(sim.Options{
		LevelName: g.cfg.Level,
		Specs:     g.specs,
		Backend:   g.cfg.Backend,
		Logger:    g.logger.WithPrefix("sim"),
	})
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	g.session = session
	g.timer.Reset()
	return nil
}

// restart tears the current session down and loads the level again.
func (g *Game) restart() error {
	g.session.Close()
	return g.load()
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}
	g.applyReloads()

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.setPaused(!g.paused)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.renderer.Debug = !g.renderer.Debug
	}

	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	if g.resumed {
		g.resumed = false
		g.timer.Reset()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.restart(); err != nil {
			return err
		}
	}

	if err := g.session.Update(g.timer.Tick()); err != nil {
		g.logger.Warn("frame", "err", err)
	}
	return nil
}

func (g *Game) setPaused(paused bool) {
	if g.paused && !paused {
		g.resumed = true
	}
	g.paused = paused
}

// applyReloads picks up prefab edits between frames.
func (g *Game) applyReloads() {
	if g.watcher == nil {
		return
	}
	for _, name := range g.watcher.Pending() {
		switch name {
		case prefabs.WorldFile:
			spec, err := prefabs.LoadWorldSpec()
			if err != nil {
				g.logger.Warn("reload", "file", name, "err", err)
				continue
			}
			g.specs.World = *spec
			g.session.ApplyWorldSpec(*spec)
			g.renderer.Camera.SetZoom(g.session.CameraZoom())
		case prefabs.GemFile:
			spec, err := prefabs.LoadGemSpec()
			if err != nil {
				g.logger.Warn("reload", "file", name, "err", err)
				continue
			}
			g.specs.Gem.FrameDuration = spec.FrameDuration
			g.session.ApplyGemSpec(*spec)
		default:
			if script := g.specs.World.ReactionScript; script != "" && name == path.Join(prefabs.ScriptsDir, script) {
				rs, err := sim.LoadReactionScript(script)
				if err != nil {
					g.logger.Warn("reload", "file", name, "err", err)
					continue
				}
				g.session.SetReactionScript(rs)
			}
		}
		g.logger.Info("prefab reloaded", "file", name, "disk", prefabs.FromDisk(name))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen, g.session)
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

// Close stops the watcher and tears the session down. Safe to call twice.
func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	g.session.Close()
}
