package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGPL = `GIMP Palette
Name: test
Columns: 2
# comment
  0   0   0	black
200 100  50
bad line here
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(testGPL))
	require.NoError(t, err)
	assert.Equal(t, "test", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {200, 100, 50}, {255, 255, 255}}, p.Colors)

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"))
	assert.Error(t, err)
}

func TestPalette_Lookup(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {200, 100, 50}, {255, 255, 255}}}

	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{255, 255, 255}, p.Lookup(2))
	assert.Equal(t, RGB{200, 100, 50}, p.Lookup(0.5))
	assert.Equal(t, RGB{100, 50, 25}, p.Lookup(0.25))

	assert.Equal(t, RGB{0, 0, 0}, p.Index(-3))
	assert.Equal(t, RGB{255, 255, 255}, p.Index(9))
}

func TestLoad(t *testing.T) {
	p, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultPalette, p.Name)
	assert.Len(t, p.Colors, 11)

	path := filepath.Join(t.TempDir(), "mine.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n1 2 3\n"), 0644))
	p, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mine", p.Name)

	_, err = Load(filepath.Join(t.TempDir(), "missing.gpl"))
	assert.Error(t, err)
}

func TestTheme_Colors(t *testing.T) {
	th := New(&Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}})
	assert.Equal(t, lipgloss.Color("#000000"), th.BG())
	assert.Equal(t, lipgloss.Color("#ffffff"), th.Success())
	assert.Equal(t, th.Color(RoleNoteLow), th.Velocity(0))
	assert.Equal(t, th.Velocity(0), th.Velocity(-1))
}
