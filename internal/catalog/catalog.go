// Package catalog loads the ordered list of daily level presets.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/dailycal/internal/models"
)

//go:embed default.yaml
var defaultCatalog []byte

var (
	ErrEmpty        = errors.New("catalog has no presets")
	ErrOutOfRange   = errors.New("preset position out of range")
	ErrUnknownLevel = errors.New("level not in catalog")
)

type file struct {
	Presets []models.Preset `yaml:"presets"`
}

// Catalog is an ordered, immutable list of presets addressed by 1-based position.
type Catalog struct {
	presets []models.Preset
	byLevel map[int]int
}

// New builds a catalog from presets in play order. Level ids must be positive and unique.
func New(presets []models.Preset) (*Catalog, error) {
	if len(presets) == 0 {
		return nil, ErrEmpty
	}
	c := &Catalog{
		presets: make([]models.Preset, len(presets)),
		byLevel: make(map[int]int, len(presets)),
	}
	copy(c.presets, presets)
	for i, p := range c.presets {
		if p.LevelID <= 0 {
			return nil, fmt.Errorf("preset %d: level id must be positive, got %d", i+1, p.LevelID)
		}
		if prev, dup := c.byLevel[p.LevelID]; dup {
			return nil, fmt.Errorf("preset %d: level %d already defined at position %d", i+1, p.LevelID, prev+1)
		}
		c.byLevel[p.LevelID] = i
	}
	return c, nil
}

// Parse decodes a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return New(f.Presets)
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Len returns the number of presets.
func (c *Catalog) Len() int {
	return len(c.presets)
}

// At returns the preset at 1-based position pos.
func (c *Catalog) At(pos int) (models.Preset, error) {
	if pos < 1 || pos > len(c.presets) {
		return models.Preset{}, fmt.Errorf("%w: %d (catalog has %d)", ErrOutOfRange, pos, len(c.presets))
	}
	return c.presets[pos-1], nil
}

// Lookup finds the preset assigned to levelID.
func (c *Catalog) Lookup(levelID int) (models.Preset, error) {
	i, ok := c.byLevel[levelID]
	if !ok {
		return models.Preset{}, fmt.Errorf("%w: %d", ErrUnknownLevel, levelID)
	}
	return c.presets[i], nil
}

// Presets returns a copy of the presets in play order.
func (c *Catalog) Presets() []models.Preset {
	out := make([]models.Preset, len(c.presets))
	copy(out, c.presets)
	return out
}
