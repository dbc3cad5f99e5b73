// Command gemsheet previews the gem animations, or writes the generated
// sprite sheet to a PNG with -out.
package main

import (
	"flag"
	"image/color"
	"image/png"
	"os"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/gemfall/actor"
	"github.com/milk9111/gemfall/prefabs"
	"github.com/milk9111/gemfall/render"
	"github.com/milk9111/gemfall/sim"
)

const (
	previewScale = 4
	padding      = 16
)

type demoGame struct {
	sheet *ebiten.Image
	anims []actor.Animation
	timer *sim.FrameTimer
	state float64
}

func (g *demoGame) Update() error {
	g.state += g.timer.Tick()
	return nil
}

func (g *demoGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x00, 0x00, 0x00, 0xff})
	for i, a := range g.anims {
		frame := g.sheet.SubImage(a.Frame(a.KeyFrame(g.state))).(*ebiten.Image)
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Scale(previewScale, previewScale)
		op.GeoM.Translate(float64(padding+i*(a.FrameW*previewScale+padding)), padding)
		op.Filter = ebiten.FilterNearest
		screen.DrawImage(frame, op)
	}
}

func (g *demoGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}

func main() {
	out := flag.String("out", "", "write the gem sprite sheet to this PNG file and exit")
	flag.Parse()

	spec, err := prefabs.LoadGemSpec()
	if err != nil {
		log.Fatal("load gem spec", "err", err)
	}
	sheet := render.GemSheet(spec.FrameWidth, spec.FrameHeight, spec.Frames, len(spec.Classes))

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal("create", "path", *out, "err", err)
		}
		if err := png.Encode(f, sheet); err != nil {
			f.Close()
			log.Fatal("encode", "err", err)
		}
		if err := f.Close(); err != nil {
			log.Fatal("close", "err", err)
		}
		log.Info("sheet written", "path", *out, "classes", len(spec.Classes), "frames", spec.Frames)
		return
	}

	anims := make([]actor.Animation, len(spec.Classes))
	for i := range spec.Classes {
		anims[i] = actor.Animation{
			FrameW:        spec.FrameWidth,
			FrameH:        spec.FrameHeight,
			FrameCount:    spec.Frames,
			FrameDuration: spec.FrameDuration,
			Row:           i,
			Loop:          true,
		}
	}
	g := &demoGame{
		sheet: ebiten.NewImageFromImage(sheet),
		anims: anims,
		timer: sim.NewFrameTimer(sim.SystemClock{}),
	}

	w := padding + len(anims)*(spec.FrameWidth*previewScale+padding)
	h := spec.FrameHeight*previewScale + 2*padding
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowTitle("Gem Animations")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal("run", "err", err)
	}
}
