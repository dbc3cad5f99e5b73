package levels

import (
	"encoding/json"
	"errors"
	"fmt"
)

const DefaultLevel = "test_map.json"

var (
	ErrLayerNotFound  = errors.New("levels: layer not found")
	ErrObjectNotFound = errors.New("levels: object not found")
	ErrInvalidLevel   = errors.New("levels: invalid level")
)

// LayerType distinguishes tile grids from object groups.
type LayerType string

const (
	LayerTiles   LayerType = "tiles"
	LayerObjects LayerType = "objects"
)

// Level is a tile map with named layers. Coordinates are pixels with the
// origin at the bottom-left corner and y pointing up.
type Level struct {
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	TileWidth  int     `json:"tile_width"`
	TileHeight int     `json:"tile_height"`
	Layers     []Layer `json:"layers"`
}

// Layer is either a tile grid (Tiles, row-major, row 0 at the top) or an
// object group.
type Layer struct {
	Name    string    `json:"name"`
	Type    LayerType `json:"type"`
	Color   string    `json:"color,omitempty"`
	Tiles   []int     `json:"tiles,omitempty"`
	Objects []Object  `json:"objects,omitempty"`
}

// Parse decodes and validates level JSON.
func Parse(data []byte) (*Level, error) {
	var lvl Level
	if err := json.Unmarshal(data, &lvl); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

// Validate checks dimensions and tile layer sizes.
func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidLevel, l.Width, l.Height)
	}
	if l.TileWidth <= 0 || l.TileHeight <= 0 {
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidLevel, l.TileWidth, l.TileHeight)
	}
	for _, ly := range l.Layers {
		if ly.Type == LayerTiles && len(ly.Tiles) != l.Width*l.Height {
			return fmt.Errorf("%w: layer %q has %d tiles, want %d", ErrInvalidLevel, ly.Name, len(ly.Tiles), l.Width*l.Height)
		}
	}
	return nil
}

// Layer returns the named layer.
func (l *Level) Layer(name string) (*Layer, bool) {
	if l == nil {
		return nil, false
	}
	for i := range l.Layers {
		if l.Layers[i].Name == name {
			return &l.Layers[i], true
		}
	}
	return nil, false
}

// Object returns the first object called name in the named layer.
func (l *Level) Object(layer, name string) (*Object, error) {
	ly, ok := l.Layer(layer)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrLayerNotFound, layer)
	}
	for i := range ly.Objects {
		if ly.Objects[i].Name == name {
			return &ly.Objects[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s/%s", ErrObjectNotFound, layer, name)
}

// NamedLocation returns the pixel position of a named object.
func (l *Level) NamedLocation(layer, name string) (float64, float64, error) {
	obj, err := l.Object(layer, name)
	if err != nil {
		return 0, 0, err
	}
	return obj.X, obj.Y, nil
}

// PixelWidth is the map width in pixels.
func (l *Level) PixelWidth() float64 {
	return float64(l.Width * l.TileWidth)
}

// PixelHeight is the map height in pixels.
func (l *Level) PixelHeight() float64 {
	return float64(l.Height * l.TileHeight)
}

// TileAt returns the tile value at column x, row y (row 0 at the top).
func (ly *Layer) TileAt(l *Level, x, y int) int {
	if ly == nil || l == nil || x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return 0
	}
	idx := y*l.Width + x
	if idx >= len(ly.Tiles) {
		return 0
	}
	return ly.Tiles[idx]
}
