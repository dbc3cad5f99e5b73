package render

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/milk9111/gemfall/sim"
	"golang.org/x/image/colornames"
	"golang.org/x/image/font/basicfont"
)

const hudLineHeight = 16

type HUD struct {
	face ebtext.Face
}

func NewHUD() *HUD {
	return &HUD{face: ebtext.NewGoXFace(basicfont.Face7x13)}
}

func (h *HUD) Draw(screen *ebiten.Image, r sim.Report, debug bool) {
	for i, line := range HUDLines(r, ebiten.ActualFPS(), debug) {
		op := &ebtext.DrawOptions{}
		op.GeoM.Translate(8, 8+float64(i*hudLineHeight))
		op.ColorScale.ScaleWithColor(colornames.White)
		ebtext.Draw(screen, line, h.face, op)
	}
}

// HUDLines formats the overlay text for a session report.
func HUDLines(r sim.Report, fps float64, debug bool) []string {
	lines := []string{
		fmt.Sprintf("%s  gems: %d  collected: %d", r.Level, r.Gems, r.Contacts.Collected),
	}
	if !r.WarmedUp {
		lines = append(lines, "settling...")
	}
	if debug {
		lines = append(lines,
			fmt.Sprintf("FPS: %.1f  solver: %s  steps: %d", fps, r.Backend, r.Steps),
			fmt.Sprintf("static: %d  skipped: %d  contacts: %d/%d", r.StaticBodies, r.Skipped, r.Contacts.Begins, r.Contacts.Ends),
		)
	}
	return lines
}
