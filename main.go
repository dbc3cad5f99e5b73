package main

import (
	"errors"
	"flag"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/physics"
)

func main() {
	debug := flag.Bool("debug", false, "draw collision geometry and solver stats")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "", "level name in levels/ (basename, .json optional)")
	solver := flag.String("solver", "", "physics backend: box2d or chipmunk (default from prefabs/world.yaml)")
	watch := flag.Bool("watch", false, "reload prefab tunables when files in prefabs/ change")
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "gemfall"})
	if *debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("gemfall")

	game, err := NewGame(Config{
		Level:   *levelName,
		Backend: physics.Backend(*solver),
		Debug:   *debug,
		Watch:   *watch,
		Logger:  logger,
	})
	if err != nil {
		logger.Fatal("start", "err", err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		logger.Error("run", "err", err)
		game.Close()
		os.Exit(1)
	}
}
