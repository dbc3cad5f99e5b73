// Package render draws a running session with ebiten. It only reads
// session state; nothing here touches the solver.
package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/milk9111/gemfall/actor"
	"github.com/milk9111/gemfall/common"
	"github.com/milk9111/gemfall/levels"
	"github.com/milk9111/gemfall/prefabs"
	"github.com/milk9111/gemfall/sim"
	"golang.org/x/image/colornames"
)

var (
	backgroundColor  = color.RGBA{R: 0x10, G: 0x12, B: 0x1a, A: 0xff}
	defaultTileColor = colornames.Steelblue
)

type Renderer struct {
	Camera *Camera
	Images *Images
	HUD    *HUD
	Debug  bool
}

// NewRenderer builds the textures the prefabs name and a camera sized to
// the base resolution.
func NewRenderer(specs prefabs.Specs, zoom, pixelsPerMeter float64) *Renderer {
	images := NewImages()
	images.Add(imageName(specs.Player.Image, "player"), PlayerImage(32))
	gem := specs.Gem
	images.Add(imageName(gem.Image, "gems"), GemSheet(gem.FrameWidth, gem.FrameHeight, gem.Frames, len(gem.Classes)))

	return &Renderer{
		Camera: NewCamera(common.BaseWidth, common.BaseHeight, zoom, pixelsPerMeter),
		Images: images,
		HUD:    NewHUD(),
	}
}

func imageName(name, def string) string {
	if name == "" {
		return def
	}
	return name
}

// Draw renders the level tiles, every actor sprite and the overlays.
func (r *Renderer) Draw(screen *ebiten.Image, s *sim.Session) {
	screen.Fill(backgroundColor)
	if s == nil || s.Closed() {
		return
	}
	cam := s.Camera()
	r.Camera.Update(cam.X(), cam.Y())

	r.drawTiles(screen, s.Level(), s.PixelsPerMeter())
	for _, a := range s.Actors() {
		r.drawSprite(screen, a.Sprite())
	}
	if r.Debug {
		DrawDebug(screen, r.Camera, s)
	}
	if r.HUD != nil {
		r.HUD.Draw(screen, s.Report(), r.Debug)
	}
}

func (r *Renderer) drawTiles(screen *ebiten.Image, level *levels.Level, ppm float64) {
	if level == nil || ppm <= 0 {
		return
	}
	tw := float64(level.TileWidth) / ppm
	th := float64(level.TileHeight) / ppm
	size := float32(tw * r.Camera.Scale())
	sizeY := float32(th * r.Camera.Scale())

	for i := range level.Layers {
		layer := &level.Layers[i]
		if layer.Type != levels.LayerTiles {
			continue
		}
		clr := parseHexColor(layer.Color, defaultTileColor)
		for row := 0; row < level.Height; row++ {
			for col := 0; col < level.Width; col++ {
				if layer.TileAt(level, col, row) == 0 {
					continue
				}
				// row 0 is the top of the map; world y grows upward.
				x := float64(col) * tw
				top := float64(level.Height-row) * th
				sx, sy := r.Camera.WorldToScreen(x, top)
				vector.FillRect(screen, float32(sx), float32(sy), size, sizeY, clr, false)
			}
		}
	}
}

func (r *Renderer) drawSprite(screen *ebiten.Image, sp *actor.Sprite) {
	if sp == nil {
		return
	}
	img, ok := r.Images.Get(sp.Image)
	if !ok {
		return
	}
	if !sp.Region.Empty() {
		if sub, ok := img.SubImage(sp.Region).(*ebiten.Image); ok {
			img = sub
		}
	}
	b := img.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return
	}

	scale := r.Camera.Scale()
	ox, oy := sp.Origin()
	cx, cy := r.Camera.WorldToScreen(sp.X+ox, sp.Y+oy)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-float64(b.Dx())/2, -float64(b.Dy())/2)
	op.GeoM.Scale(sp.Width*scale/float64(b.Dx()), sp.Height*scale/float64(b.Dy()))
	op.GeoM.Rotate(-sp.Rotation * math.Pi / 180)
	op.GeoM.Translate(cx, cy)
	op.Filter = ebiten.FilterNearest
	screen.DrawImage(img, op)
}

// parseHexColor parses "#rrggbb", returning def when it cannot.
func parseHexColor(s string, def color.RGBA) color.RGBA {
	if len(s) != 7 || s[0] != '#' {
		return def
	}
	var r, g, b uint32
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &r, &g, &b); err != nil {
		return def
	}
	return color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
}
