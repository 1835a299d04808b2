package diagram

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSlice(t *testing.T) (bulb.Slice, soil.Foundation) {
	t.Helper()
	f := soil.MustFoundation(1.5, 1.5, 200)
	field, err := bulb.New(bulb.DefaultOptions()).Compute(context.Background(), f, soil.Soil{},
		stress.GridSpec{DepthRatio: 3, Resolution: 15, Method: stress.Newmark})
	require.NoError(t, err)
	return field.CenterSlice(), f
}

func TestDrawBulbSection(t *testing.T) {
	s, f := testSlice(t)
	out := DrawBulbSection(s, f.Width(), 40, 12)
	assert.Contains(t, out, "STRESS BULB")
	assert.Contains(t, out, "▄")
	assert.Contains(t, out, "█")
	assert.Contains(t, out, "Legend")
	assert.Contains(t, out, "z = 4.5 m")
	assert.Empty(t, DrawBulbSection(bulb.Slice{}, 1, 40, 12))
}

func TestDrawProfileChart(t *testing.T) {
	f := soil.MustFoundation(2, 2, 100)
	profiles, err := bulb.New(bulb.DefaultOptions()).Profiles(f, 6, 30, stress.Newmark)
	require.NoError(t, err)

	out := DrawProfileChart(profiles, f.Pressure(), 10)
	assert.Contains(t, out, "Center")
	assert.Contains(t, out, "Outside X")
	assert.Contains(t, out, "z = 6.00 m")
	assert.Empty(t, DrawProfileChart(nil, 100, 10))
}

func TestDrawSummaryBox(t *testing.T) {
	out := DrawSummaryBox("INFLUENCE DEPTH", []string{"z(10%) ≈ 3.13 m", "z/B = 2.1"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), l)
	}
}

func TestExportIsobars(t *testing.T) {
	s, f := testSlice(t)
	dir := t.TempDir()
	for _, name := range []string{"bulb.png", "bulb.svg", "nested/bulb"} {
		require.NoError(t, ExportIsobars(s, f, filepath.Join(dir, name)))
	}
	for _, name := range []string{"bulb.png", "bulb.svg", "nested/bulb.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.Positive(t, info.Size())
	}
}

func TestRenderIsobars(t *testing.T) {
	s, f := testSlice(t)
	data, err := RenderIsobars(s, f, "png")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	_, err = RenderIsobars(bulb.Slice{X: []float64{0}, Z: []float64{1}}, f, "png")
	assert.Error(t, err)
}

func TestExportProfiles(t *testing.T) {
	f := soil.MustFoundation(1, 2, 150)
	profiles, err := bulb.New(bulb.DefaultOptions()).Profiles(f, 5, 20, stress.Newmark)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "profiles.svg")
	require.NoError(t, ExportProfiles(profiles, f.Pressure(), path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	assert.Error(t, ExportProfiles(nil, 100, path))
}
