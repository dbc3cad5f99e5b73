package levels

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ObjectKind classifies map objects by their geometry.
type ObjectKind int

const (
	ObjectRectangle ObjectKind = iota
	ObjectPolygon
	ObjectPolyline
	ObjectPoint
	ObjectEllipse
)

func (k ObjectKind) String() string {
	switch k {
	case ObjectRectangle:
		return "rectangle"
	case ObjectPolygon:
		return "polygon"
	case ObjectPolyline:
		return "polyline"
	case ObjectPoint:
		return "point"
	case ObjectEllipse:
		return "ellipse"
	default:
		return fmt.Sprintf("ObjectKind(%d)", int(k))
	}
}

// Point is a pixel-space vertex relative to its object's position.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Object is a map object. X/Y is the lower-left corner for rectangles and
// the local origin for polygons. Rotation is counter-clockwise degrees.
type Object struct {
	ID         int            `json:"id,omitempty"`
	Name       string         `json:"name,omitempty"`
	Type       string         `json:"type,omitempty"`
	X          float64        `json:"x"`
	Y          float64        `json:"y"`
	Width      float64        `json:"width,omitempty"`
	Height     float64        `json:"height,omitempty"`
	Rotation   float64        `json:"rotation,omitempty"`
	ScaleX     float64        `json:"scale_x,omitempty"`
	ScaleY     float64        `json:"scale_y,omitempty"`
	OriginX    float64        `json:"origin_x,omitempty"`
	OriginY    float64        `json:"origin_y,omitempty"`
	Polygon    []Point        `json:"polygon,omitempty"`
	Polyline   []Point        `json:"polyline,omitempty"`
	IsPoint    bool           `json:"point,omitempty"`
	IsEllipse  bool           `json:"ellipse,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Kind reports the object's geometry.
func (o *Object) Kind() ObjectKind {
	switch {
	case o.IsPoint:
		return ObjectPoint
	case o.IsEllipse:
		return ObjectEllipse
	case o.Polygon != nil:
		return ObjectPolygon
	case o.Polyline != nil:
		return ObjectPolyline
	default:
		return ObjectRectangle
	}
}

// Vertices returns the untransformed local vertex list.
func (o *Object) Vertices() []Point {
	if o.Polygon != nil {
		return o.Polygon
	}
	return o.Polyline
}

// TransformedVertices applies the per-instance transform: offset by the
// origin, scale, rotate, then translate to the object position.
func (o *Object) TransformedVertices() []mgl64.Vec2 {
	local := o.Vertices()
	if len(local) == 0 {
		return nil
	}
	sx, sy := o.ScaleX, o.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	origin := mgl64.Vec2{o.OriginX, o.OriginY}
	pos := mgl64.Vec2{o.X, o.Y}
	rot := mgl64.Rotate2D(o.Rotation * math.Pi / 180)

	out := make([]mgl64.Vec2, len(local))
	for i, p := range local {
		v := mgl64.Vec2{(p.X - origin.X()) * sx, (p.Y - origin.Y()) * sy}
		if o.Rotation != 0 {
			v = rot.Mul2x1(v)
		}
		out[i] = v.Add(pos).Add(origin)
	}
	return out
}

// Class returns the object's class, falling back to a "type" property.
func (o *Object) Class() string {
	if o.Type != "" {
		return o.Type
	}
	s, _ := o.PropertyString("type")
	return s
}

// Property returns a raw property. The built-in "x" and "y" keys resolve to
// the object position when not set explicitly.
func (o *Object) Property(key string) (any, bool) {
	if v, ok := o.Properties[key]; ok {
		return v, true
	}
	switch key {
	case "x":
		return o.X, true
	case "y":
		return o.Y, true
	case "width":
		return o.Width, true
	case "height":
		return o.Height, true
	}
	return nil, false
}

// PropertyFloat returns a numeric property.
func (o *Object) PropertyFloat(key string) (float64, bool) {
	v, ok := o.Property(key)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// PropertyString returns a string property.
func (o *Object) PropertyString(key string) (string, bool) {
	v, ok := o.Property(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// PropertyBool returns a boolean property.
func (o *Object) PropertyBool(key string) (bool, bool) {
	v, ok := o.Property(key)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}
