package stress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfluenceDepth_SquareFooting(t *testing.T) {
	b := 1.5
	z10, err := InfluenceDepth(b, b, 0.10)
	require.NoError(t, err)
	// between B and 2.5B for a square footing
	assert.Greater(t, z10, b)
	assert.Less(t, z10, 2.5*b)
	assert.InDelta(t, 3.131, z10, 1e-3)

	// the ratio at the returned depth is just below the target
	assert.Less(t, CenterlineRatio(b, b, z10), 0.10)
	assert.GreaterOrEqual(t, CenterlineRatio(b, b, z10-1e-5), 0.10)
}

func TestInfluenceDepth_OrderedByThreshold(t *testing.T) {
	for _, fd := range []struct{ b, l float64 }{{1.5, 1.5}, {2, 2}, {1, 3}} {
		z05, err := InfluenceDepth(fd.b, fd.l, 0.05)
		require.NoError(t, err)
		z10, err := InfluenceDepth(fd.b, fd.l, 0.10)
		require.NoError(t, err)
		z20, err := InfluenceDepth(fd.b, fd.l, 0.20)
		require.NoError(t, err)
		assert.Less(t, z20, z10)
		assert.Less(t, z10, z05)
	}
}

func TestInfluenceDepth_Reference(t *testing.T) {
	cases := []struct {
		b, l, target, want float64
	}{
		{1.5, 1.5, 0.05, 4.533},
		{1.5, 1.5, 0.20, 2.105},
		{2, 2, 0.10, 4.175},
		{1, 3, 0.10, 3.506},
	}
	for _, c := range cases {
		got, err := InfluenceDepth(c.b, c.l, c.target)
		require.NoError(t, err)
		assert.InDelta(t, c.want, got, 1e-3, "%+v", c)
	}
}

func TestInfluenceDepth_ShallowTarget(t *testing.T) {
	// the centerline ratio leaves 0.999 a few centimetres below a 1 m footing
	z, err := InfluenceDepth(1, 1, 0.999)
	require.NoError(t, err)
	assert.Greater(t, z, GridEpsilon)
	assert.Less(t, z, 0.2)
}

func TestInfluenceDepth_NotFoundFallsBack(t *testing.T) {
	// a target this small is not reached within 5·max(B, L)
	z, err := InfluenceDepth(2, 2, 1e-6)
	require.NoError(t, err)
	assert.Equal(t, 4.0, z)
}

func TestInfluenceDepth_Invalid(t *testing.T) {
	_, err := InfluenceDepth(0, 1, 0.1)
	assert.Error(t, err)
	_, err = InfluenceDepth(1, 1, 0)
	assert.Error(t, err)
	_, err = InfluenceDepth(1, 1, 1)
	assert.Error(t, err)
}

func TestProfile(t *testing.T) {
	r := Rectangle{Q: 100, B: 2, L: 2}
	depths := Depths(6, 30)
	require.Len(t, depths, 30)
	assert.Equal(t, GridEpsilon, depths[0])
	assert.InDelta(t, 6, depths[29], 1e-12)

	pts := CharacteristicPoints(2, 2)
	require.Len(t, pts, 4)
	center := r.Profile(pts[0].X, pts[0].Y, depths, Newmark)
	edge := r.Profile(pts[1].X, pts[1].Y, depths, Newmark)
	outside := r.Profile(pts[3].X, pts[3].Y, depths, Newmark)
	for i := range depths {
		assert.GreaterOrEqual(t, center[i].Value, edge[i].Value)
		assert.GreaterOrEqual(t, center[i].Value, outside[i].Value)
	}
	// under the edge the shallow stress tends to q/2
	assert.InDelta(t, 50, edge[0].Value, 1)
}
