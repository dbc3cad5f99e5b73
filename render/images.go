package render

import (
	"image"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/colornames"
)

// GemColors is the palette of gem sheet rows, in class order.
var GemColors = []color.RGBA{
	colornames.Royalblue,
	colornames.Slategray,
	colornames.Hotpink,
	colornames.Limegreen,
	colornames.Darkorange,
	colornames.Gold,
}

// Images holds the textures sprites refer to by name.
type Images struct {
	byName map[string]*ebiten.Image
}

func NewImages() *Images {
	return &Images{byName: make(map[string]*ebiten.Image)}
}

func (im *Images) Add(name string, src image.Image) {
	im.byName[name] = ebiten.NewImageFromImage(src)
}

func (im *Images) Get(name string) (*ebiten.Image, bool) {
	img, ok := im.byName[name]
	return img, ok
}

// PlayerImage draws a bordered square.
func PlayerImage(size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	border := max(1, size/8)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := colornames.Crimson
			if x < border || y < border || x >= size-border || y >= size-border {
				c = colornames.Darkred
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// GemSheet draws one row per class and frames columns. Each frame is a
// diamond whose width follows a spin cycle.
func GemSheet(frameW, frameH, frames, classes int) *image.RGBA {
	if frames < 1 {
		frames = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, frameW*frames, frameH*classes))
	for row := 0; row < classes; row++ {
		base := GemColors[row%len(GemColors)]
		for f := 0; f < frames; f++ {
			spin := math.Abs(math.Cos(math.Pi * float64(f) / float64(frames)))
			drawDiamond(img, f*frameW, row*frameH, frameW, frameH, spin, base)
		}
	}
	return img
}

func drawDiamond(img *image.RGBA, ox, oy, w, h int, spin float64, c color.RGBA) {
	cx, cy := float64(w)/2, float64(h)/2
	rx := math.Max(1, cx*0.9*math.Max(spin, 0.2))
	ry := cy * 0.9
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := math.Abs(float64(x)+0.5-cx) / rx
			dy := math.Abs(float64(y)+0.5-cy) / ry
			d := dx + dy
			if d > 1 {
				continue
			}
			shade := 1 - 0.4*d
			img.SetRGBA(ox+x, oy+y, color.RGBA{
				R: uint8(float64(c.R) * shade),
				G: uint8(float64(c.G) * shade),
				B: uint8(float64(c.B) * shade),
				A: 0xff,
			})
		}
	}
}
