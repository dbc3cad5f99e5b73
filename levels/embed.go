package levels

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:embed *.json
var LevelsFS embed.FS

// LoadLevel loads a level from a JSON file on disk.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// LoadLevelFromFS loads a level JSON from an fs.FS (e.g. embedded levels).
// The ".json" extension is optional.
func LoadLevelFromFS(fsys fs.FS, name string) (*Level, error) {
	clean := strings.TrimPrefix(filepath.ToSlash(name), "levels/")
	if filepath.Ext(clean) == "" {
		clean += ".json"
	}
	data, err := fs.ReadFile(fsys, clean)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// Load prefers a level file on disk and falls back to the embedded copy.
func Load(name string) (*Level, error) {
	if name == "" {
		name = DefaultLevel
	}
	if lvl, err := LoadLevel(name); err == nil {
		return lvl, nil
	}
	return LoadLevelFromFS(LevelsFS, name)
}
