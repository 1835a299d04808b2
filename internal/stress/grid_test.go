package stress

import (
	"testing"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildGrid(t *testing.T) {
	f := soil.MustFoundation(1.5, 1.5, 200)
	g, err := BuildGrid(f, GridSpec{DepthRatio: 3, Resolution: 40, Method: Newmark})
	require.NoError(t, err)

	nx, ny, nz := g.Shape()
	assert.Equal(t, []int{40, 40, 40}, []int{nx, ny, nz})
	assert.Equal(t, 64000, g.Len())

	// 2·max(B, L) = 3.0 ties the minimum half span
	assert.Equal(t, -3.0, g.X[0])
	assert.Equal(t, 3.0, g.X[39])
	assert.Equal(t, -3.0, g.Y[0])
	assert.Equal(t, GridEpsilon, g.Z[0])
	assert.InDelta(t, 4.5, g.Z[39], 1e-12)

	for k := 1; k < nz; k++ {
		assert.Greater(t, g.Z[k], g.Z[k-1])
	}
}

func TestBuildGrid_LargeFootprint(t *testing.T) {
	f := soil.MustFoundation(4, 6, 100)
	g, err := BuildGrid(f, GridSpec{DepthRatio: 2, Resolution: 11, Method: Newmark})
	require.NoError(t, err)
	assert.Equal(t, -12.0, g.X[0])
	assert.Equal(t, 12.0, g.Y[10])
	assert.InDelta(t, 12.0, g.Z[10], 1e-12)
}

func TestBuildGrid_TinyFootprintKeepsFieldOfView(t *testing.T) {
	f := soil.MustFoundation(0.2, 0.3, 100)
	g, err := BuildGrid(f, GridSpec{DepthRatio: 3, Resolution: 5, Method: Newmark})
	require.NoError(t, err)
	assert.Equal(t, -MinHalfSpan, g.X[0])
	assert.Equal(t, MinHalfSpan, g.X[4])
}

func TestBuildGrid_Invalid(t *testing.T) {
	f := soil.MustFoundation(1, 1, 100)
	cases := []GridSpec{
		{DepthRatio: 0, Resolution: 10, Method: Newmark},
		{DepthRatio: 3, Resolution: 1, Method: Newmark},
		{DepthRatio: 3, Resolution: 10, Method: "boussinesq"},
		{DepthRatio: 0.005, Resolution: 10, Method: Newmark},
	}
	for _, spec := range cases {
		_, err := BuildGrid(f, spec)
		assert.ErrorIs(t, err, ErrInvalidGrid, "%+v", spec)
	}
}

func TestGrid_IndexingAndCoordinates(t *testing.T) {
	f := soil.MustFoundation(1, 2, 100)
	g, err := BuildGrid(f, GridSpec{DepthRatio: 2, Resolution: 4, Method: Newmark})
	require.NoError(t, err)

	pts := g.Coordinates()
	require.Len(t, pts, g.Len())
	for i := range g.X {
		for j := range g.Y {
			for k := range g.Z {
				assert.Equal(t, g.At(i, j, k), pts[g.Index(i, j, k)])
			}
		}
	}
	assert.Equal(t, 1, g.Index(0, 0, 1))
	assert.Equal(t, 4, g.Index(0, 1, 0))
	assert.Equal(t, 16, g.Index(1, 0, 0))
}

func TestBuildGrid_Deterministic(t *testing.T) {
	f := soil.MustFoundation(1.3, 2.1, 150)
	spec := GridSpec{DepthRatio: 2.5, Resolution: 17, Method: Newmark}
	a, err := BuildGrid(f, spec)
	require.NoError(t, err)
	b, err := BuildGrid(f, spec)
	require.NoError(t, err)
	assert.Equal(t, a.Coordinates(), b.Coordinates())
}

func TestNearest(t *testing.T) {
	axis := []float64{-1, -0.5, 0, 0.5, 1}
	assert.Equal(t, 2, Nearest(axis, 0.1))
	assert.Equal(t, 0, Nearest(axis, -7))
	assert.Equal(t, 4, Nearest(axis, 0.8))
}

func TestDefaultGridSpec(t *testing.T) {
	spec := DefaultGridSpec()
	require.NoError(t, spec.Validate())
	assert.Equal(t, Newmark, spec.Method)
	assert.Equal(t, DefaultResolution, spec.Resolution)
	assert.Equal(t, DefaultDepthRatio, spec.DepthRatio)
}
