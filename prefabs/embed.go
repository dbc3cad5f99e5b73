// Package prefabs loads the YAML tunables and tengo reaction scripts. A file
// under Dir on disk shadows the copy built into the binary.
package prefabs

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

//go:embed *.yaml scripts/*.tengo
var bundled embed.FS

// Dir is the on-disk prefab directory.
var Dir = "prefabs"

// ScriptsDir is where reaction scripts live inside Dir.
const ScriptsDir = "scripts"

var ErrNotFound = errors.New("prefabs: not found")

// Load reads a spec file by name, e.g. "world.yaml".
func Load(name string) ([]byte, error) {
	return read(specPath(name))
}

// LoadScript reads a reaction script by name, e.g. "bounce.tengo".
func LoadScript(name string) ([]byte, error) {
	return read(scriptPath(name))
}

// FromDisk reports whether name currently resolves to a file under Dir.
func FromDisk(name string) bool {
	info, err := os.Stat(diskPath(specPath(name)))
	return err == nil && !info.IsDir()
}

func read(rel string) ([]byte, error) {
	if rel == "" {
		return nil, fmt.Errorf("%w: empty name", ErrNotFound)
	}
	if data, err := os.ReadFile(diskPath(rel)); err == nil {
		return data, nil
	}
	data, err := fs.ReadFile(bundled, rel)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, rel)
	}
	return data, err
}

// specPath accepts "gem.yaml" or "prefabs/gem.yaml".
func specPath(name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimPrefix(filepath.ToSlash(name), "prefabs/")
}

// scriptPath maps any of "x.tengo", "scripts/x.tengo", "prefabs/x.tengo"
// and "prefabs/scripts/x.tengo" to "scripts/x.tengo".
func scriptPath(name string) string {
	if name == "" {
		return ""
	}
	rel := strings.TrimPrefix(specPath(name), ScriptsDir+"/")
	return path.Join(ScriptsDir, rel)
}

func diskPath(rel string) string {
	return filepath.Join(Dir, filepath.FromSlash(rel))
}
