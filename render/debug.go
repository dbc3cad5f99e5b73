package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gemfall/physics"
	"github.com/milk9111/gemfall/sim"
	"golang.org/x/image/colornames"
)

// DrawDebug outlines static geometry and marks every actor body centre.
func DrawDebug(screen *ebiten.Image, cam *Camera, s *sim.Session) {
	scale := cam.Scale()
	for _, def := range s.Geometry().Defs {
		switch shape := def.Shape.(type) {
		case physics.BoxShape:
			x, y := cam.WorldToScreen(def.Position.X()-shape.HalfWidth, def.Position.Y()+shape.HalfHeight)
			w := shape.HalfWidth * 2 * scale
			h := shape.HalfHeight * 2 * scale
			vector.StrokeRect(screen, float32(x), float32(y), float32(w), float32(h), 1, colornames.Lime, false)
		case physics.ChainShape:
			verts := shape.Vertices
			for i := 1; i < len(verts); i++ {
				strokeSegment(screen, cam, def.Position.Add(verts[i-1]), def.Position.Add(verts[i]))
			}
			if shape.Closed && len(verts) > 2 {
				strokeSegment(screen, cam, def.Position.Add(verts[len(verts)-1]), def.Position.Add(verts[0]))
			}
		}
	}

	for _, a := range s.Actors() {
		body := a.Body()
		if body == nil {
			continue
		}
		p := body.Position()
		x, y := cam.WorldToScreen(p.X(), p.Y())
		vector.StrokeLine(screen, float32(x-4), float32(y), float32(x+4), float32(y), 1, colornames.Red, false)
		vector.StrokeLine(screen, float32(x), float32(y-4), float32(x), float32(y+4), 1, colornames.Red, false)
	}
}

func strokeSegment(screen *ebiten.Image, cam *Camera, a, b mgl64.Vec2) {
	ax, ay := cam.WorldToScreen(a.X(), a.Y())
	bx, by := cam.WorldToScreen(b.X(), b.Y())
	vector.StrokeLine(screen, float32(ax), float32(ay), float32(bx), float32(by), 1, colornames.Lime, true)
}
