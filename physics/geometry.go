package physics

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/gemfall/levels"
)

// SkippedShape records a map object that could not become a body.
type SkippedShape struct {
	Object string
	ID     int
	Err    error
}

// GeometryReport summarizes a static geometry build.
type GeometryReport struct {
	Layer      string
	Bodies     []Body
	Defs       []BodyDef
	Rectangles int
	Polygons   int
	Skipped    []SkippedShape
}

// BodyCount is the number of static bodies created.
func (r GeometryReport) BodyCount() int {
	return len(r.Bodies)
}

// BuildStaticGeometry turns every rectangle, polygon and polyline of the
// named layer into a static body tagged as map collision. Polygons and
// polylines become open chains; a "closed" property makes a loop. A missing
// layer builds nothing. Objects the solver cannot accept are skipped and
// reported.
func BuildStaticGeometry(solver Solver, level *levels.Level, layerName string, pixelsPerMeter float64, logger *log.Logger) (GeometryReport, error) {
	if logger == nil {
		logger = log.Default().WithPrefix("geometry")
	}
	report := GeometryReport{Layer: layerName}
	if level == nil {
		return report, nil
	}
	layer, ok := level.Layer(layerName)
	if !ok {
		logger.Debug("collision layer missing", "layer", layerName)
		return report, nil
	}

	for i := range layer.Objects {
		obj := &layer.Objects[i]
		def, ok := staticBodyDef(obj, pixelsPerMeter)
		if !ok {
			continue
		}
		body, err := solver.CreateBody(def)
		if err != nil {
			if !skippable(err) {
				return report, err
			}
			logger.Warn("skipping shape", "layer", layerName, "object", obj.Name, "id", obj.ID, "err", err)
			report.Skipped = append(report.Skipped, SkippedShape{Object: obj.Name, ID: obj.ID, Err: err})
			continue
		}
		report.Bodies = append(report.Bodies, body)
		report.Defs = append(report.Defs, def)
		if _, isBox := def.Shape.(BoxShape); isBox {
			report.Rectangles++
		} else {
			report.Polygons++
		}
	}

	logger.Info("static geometry built",
		"layer", layerName,
		"bodies", len(report.Bodies),
		"rectangles", report.Rectangles,
		"polygons", report.Polygons,
		"skipped", len(report.Skipped))
	return report, nil
}

func staticBodyDef(obj *levels.Object, ppm float64) (BodyDef, bool) {
	def := BodyDef{Type: StaticBody, Tag: MapCollisionTag()}
	switch obj.Kind() {
	case levels.ObjectRectangle:
		def.Position = mgl64.Vec2{(obj.X + obj.Width/2) / ppm, (obj.Y + obj.Height/2) / ppm}
		def.Shape = BoxShape{HalfWidth: obj.Width / 2 / ppm, HalfHeight: obj.Height / 2 / ppm}
	case levels.ObjectPolygon, levels.ObjectPolyline:
		verts := obj.TransformedVertices()
		for i := range verts {
			verts[i] = verts[i].Mul(1 / ppm)
		}
		closed, _ := obj.PropertyBool("closed")
		def.Shape = ChainShape{Vertices: verts, Closed: closed}
	default:
		return def, false
	}
	return def, true
}

func skippable(err error) bool {
	return errors.Is(err, ErrMalformedPolygon) || errors.Is(err, ErrInvalidBounds)
}
