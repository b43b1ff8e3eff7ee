package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/dailycal/internal/models"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	require.Equal(t, 10, c.Len())

	first, err := c.At(1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.LevelID)
	assert.Equal(t, models.ModeDocku, first.Mode)

	second, err := c.Lookup(2)
	require.NoError(t, err)
	assert.Equal(t, models.ModePuzzle, second.Mode)
}

func TestAtBounds(t *testing.T) {
	c, err := New([]models.Preset{{LevelID: 10, Mode: models.ModeDocku}, {LevelID: 20, Mode: models.ModePuzzle}})
	require.NoError(t, err)

	_, err = c.At(0)
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = c.At(3)
	assert.ErrorIs(t, err, ErrOutOfRange)

	p, err := c.At(2)
	require.NoError(t, err)
	assert.Equal(t, 20, p.LevelID)
}

func TestLookupUnknown(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.Lookup(999)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		presets []models.Preset
		wantErr error
	}{
		{name: "empty", presets: nil, wantErr: ErrEmpty},
		{name: "zero level", presets: []models.Preset{{LevelID: 0, Mode: models.ModeDocku}}},
		{name: "duplicate level", presets: []models.Preset{{LevelID: 3, Mode: models.ModeDocku}, {LevelID: 3, Mode: models.ModePuzzle}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.presets)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestUnknownModeIsLoadable(t *testing.T) {
	c, err := Parse([]byte("presets:\n  - level: 1\n    mode: chess\n"))
	require.NoError(t, err)

	p, err := c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, models.GameMode("chess"), p.Mode)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte("presets:\n  - level: 5\n    mode: puzzle\n    name: Solo\n"), 0600))

	c, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, c.Len())
	p, _ := c.At(1)
	assert.Equal(t, "Solo", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	c, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, 10, c.Len())
}

func TestPresetsIsACopy(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	ps := c.Presets()
	ps[0].LevelID = 1000
	p, _ := c.At(1)
	assert.Equal(t, 1, p.LevelID)
}
