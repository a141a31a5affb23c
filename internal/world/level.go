package world

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Versifine/freemove/internal/mathx"
)

var ErrEmptyLevel = errors.New("level has no geometry")

// Level is the on-disk description of a test environment.
type Level struct {
	Name     string       `yaml:"name"`
	CellSize float64      `yaml:"cell_size"`
	Spawn    [3]float64   `yaml:"spawn"`
	SpawnYaw float64      `yaml:"spawn_yaw"`
	Solids   []CellRange  `yaml:"solids"`
	Boxes    []BoxElement `yaml:"boxes"`
}

// CellRange is an inclusive block of solid terrain cells.
type CellRange struct {
	Min [3]int `yaml:"min"`
	Max [3]int `yaml:"max"`
}

// BoxElement is free geometry in world units.
type BoxElement struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

func (l Level) SpawnPoint() mathx.Vec3 {
	return mathx.Vec3{l.Spawn[0], l.Spawn[1], l.Spawn[2]}
}

func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(data)
}

func ParseLevel(data []byte) (*Level, error) {
	level := &Level{CellSize: DefaultCellSize}
	if err := yaml.Unmarshal(data, level); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if level.CellSize <= 0 {
		return nil, fmt.Errorf("invalid cell_size %.3f", level.CellSize)
	}
	if len(level.Solids) == 0 && len(level.Boxes) == 0 {
		return nil, ErrEmptyLevel
	}
	return level, nil
}

// Build creates a Scene holding the level geometry.
func (l *Level) Build() *Scene {
	terrain := NewTerrain(l.CellSize)
	for _, r := range l.Solids {
		terrain.FillBox(
			CellPos{X: r.Min[0], Y: r.Min[1], Z: r.Min[2]},
			CellPos{X: r.Max[0], Y: r.Max[1], Z: r.Max[2]},
			true,
		)
	}
	scene := NewScene(terrain)
	for _, b := range l.Boxes {
		scene.AddBox(Box{Bounds: AABB{
			Min: mathx.Vec3{b.Min[0], b.Min[1], b.Min[2]},
			Max: mathx.Vec3{b.Max[0], b.Max[1], b.Max[2]},
		}})
	}
	return scene
}
