package stress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var methods = []Method{Newmark, Integration}

func TestCornerFactor(t *testing.T) {
	// reference values from Newmark's chart
	assert.InDelta(t, 0.1752, CornerFactor(1, 1), 1e-4)
	assert.InDelta(t, 0.0840, CornerFactor(0.5, 0.5), 1e-4)
	assert.InDelta(t, 0.1999, CornerFactor(2, 1), 1e-4)
	assert.InDelta(t, 0.2439, CornerFactor(3, 3), 1e-4)

	// symmetric in m and n
	assert.Equal(t, CornerFactor(0.7, 2.3), CornerFactor(2.3, 0.7))

	// the atan branch: once m²n² > m²+n²+1 the factor keeps growing towards 1/4
	assert.Greater(t, CornerFactor(2, 2), CornerFactor(1.4, 1.4))
	assert.InDelta(t, 0.25, CornerFactor(1e6, 1e6), 1e-9)

	assert.Zero(t, CornerFactor(0, 1))
}

func TestRectStress_SurfaceBoundary(t *testing.T) {
	for _, m := range methods {
		t.Run(string(m), func(t *testing.T) {
			assert.Equal(t, 100.0, RectStress(100, 1, 1, 0, 0, 0, m).Value)
			assert.Equal(t, 200.0, RectStress(200, 1.5, 2, 0.7, -0.9, 0, m).Value)
			assert.Equal(t, 200.0, RectStress(200, 1.5, 2, 0.75, 1, 0, m).Value, "edge belongs to the footprint")
			assert.Zero(t, RectStress(200, 1.5, 2, 0.76, 0, 0, m).Value)
			assert.Zero(t, RectStress(200, 1.5, 2, 0, -3, 1e-9, m).Value)
		})
	}
}

func TestRectStress_ExampleSquareFooting(t *testing.T) {
	// B = L = 1.5 m, q = 200 kPa, centre at z = B
	r := RectStress(200, 1.5, 1.5, 0, 0, 1.5, Newmark)
	ratio := r.Value / 200
	assert.InDelta(t, 0.3361, ratio, 1e-4)
	assert.True(t, ratio > 0.20 && ratio < 0.35)
	assert.False(t, r.FallbackUsed)
}

func TestRectStress_StripFooting(t *testing.T) {
	// a very long footing approaches the strip solution: 0.55q at z = B
	r := RectStress(1, 1, 1000, 0, 0, 1, Newmark)
	assert.InDelta(t, 0.550, r.Value, 1e-3)
}

func TestRectStress_Superposition(t *testing.T) {
	// under a corner the stress is the single corner factor
	r := RectStress(1, 2, 2, 1, 1, 1, Newmark)
	assert.InDelta(t, CornerFactor(2, 2), r.Value, 1e-12)

	// under the middle of an edge: two corner rectangles of 2×1 at z = 1
	r = RectStress(1, 2, 2, 1, 0, 1, Newmark)
	assert.InDelta(t, 2*CornerFactor(2, 1), r.Value, 1e-12)

	// symmetric about both axes
	a := RectStress(150, 2, 3, 0.4, 0.9, 1.2, Newmark).Value
	assert.InDelta(t, a, RectStress(150, 2, 3, -0.4, 0.9, 1.2, Newmark).Value, 1e-12)
	assert.InDelta(t, a, RectStress(150, 2, 3, 0.4, -0.9, 1.2, Newmark).Value, 1e-12)
}

func TestRectStress_OutsideFootprint(t *testing.T) {
	near := RectStress(100, 2, 2, 3, 0, 1, Newmark).Value
	far := RectStress(100, 2, 2, 10, 0, 1, Newmark).Value
	assert.Greater(t, near, 0.0)
	assert.Less(t, near, 1.0)
	assert.GreaterOrEqual(t, far, 0.0)
	assert.Less(t, far, near)
}

func TestRectStress_NonNegative(t *testing.T) {
	for _, x := range []float64{-8, -2, -0.5, 0, 0.5, 2, 8} {
		for _, y := range []float64{-8, -1, 0, 1, 8} {
			for _, z := range []float64{1e-4, 0.01, 0.3, 1, 5, 40} {
				v := RectStress(100, 1.2, 2.5, x, y, z, Newmark).Value
				assert.GreaterOrEqual(t, v, 0.0, "x=%g y=%g z=%g", x, y, z)
				assert.False(t, math.IsNaN(v))
			}
		}
	}
}

func TestRectStress_DecayWithDepth(t *testing.T) {
	for _, fd := range []struct{ b, l float64 }{{1, 1}, {1.5, 1.5}, {1, 3}, {2, 0.5}} {
		z := 10 * math.Max(fd.b, fd.l)
		for _, p := range [][2]float64{{0, 0}, {fd.b / 4, 0}, {0, fd.l / 4}} {
			v := RectStress(100, fd.b, fd.l, p[0], p[1], z, Newmark).Value
			assert.LessOrEqual(t, v, 1.0, "B=%g L=%g at %v", fd.b, fd.l, p)
		}
	}
}

func TestRectStress_CenterlineMonotone(t *testing.T) {
	for _, fd := range []struct{ b, l float64 }{{1.5, 1.5}, {1, 4}, {0.3, 0.3}, {5, 2}} {
		prev := math.Inf(1)
		for z := GridEpsilon; z < 20*math.Max(fd.b, fd.l); z += 0.01 {
			v := RectStress(1, fd.b, fd.l, 0, 0, z, Newmark).Value
			require.LessOrEqual(t, v, prev+1e-12, "B=%g L=%g z=%g", fd.b, fd.l, z)
			prev = v
		}
	}
}

func TestRectStress_MethodAgreement(t *testing.T) {
	cases := []struct {
		b, l, x, y, z float64
	}{
		{1.5, 1.5, 0, 0, 1.5},
		{1.5, 1.5, 0, 0, 3},
		{1.5, 1.5, 0.75, 0, 1.5},
		{1.5, 1.5, 2, 1, 2},
		{2, 3, 0.3, -0.4, 4},
		{1, 1, 0.5, 0, 0.05},
		{1, 1, 0, 0, 0.01},
	}
	for _, c := range cases {
		nm := RectStress(100, c.b, c.l, c.x, c.y, c.z, Newmark)
		in := RectStress(100, c.b, c.l, c.x, c.y, c.z, Integration)
		assert.False(t, in.FallbackUsed, "%+v", c)
		assert.InEpsilon(t, nm.Value, in.Value, 0.05, "%+v", c)
		assert.InDelta(t, nm.Value, in.Value, 1e-6, "%+v", c)
	}
}

func TestIntegrateRect_Converges(t *testing.T) {
	v, ok := integrateRect(nil, 1, 1, 0, 0, 1e-3)
	require.True(t, ok)
	assert.InDelta(t, newmarkInfluence(1, 1, 0, 0, 1e-3), v, 1e-6)
}

func TestBreakpoints(t *testing.T) {
	pts := breakpoints(-1, 1, 0, 0.01)
	assert.Equal(t, -1.0, pts[0])
	assert.Equal(t, 1.0, pts[len(pts)-1])
	assert.Contains(t, pts, 0.0)
	assert.Contains(t, pts, 0.01)
	assert.Contains(t, pts, -0.04)
	for i := 1; i < len(pts); i++ {
		assert.Greater(t, pts[i], pts[i-1])
	}

	// a point well outside projects onto the nearest end
	pts = breakpoints(-1, 1, 5, 1)
	assert.Equal(t, []float64{-1, 1}, pts)
}

func TestParseMethod(t *testing.T) {
	m, err := ParseMethod("Integration")
	require.NoError(t, err)
	assert.Equal(t, Integration, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, Newmark, m)

	_, err = ParseMethod("2:1")
	assert.Error(t, err)
}

func TestTwoToOne(t *testing.T) {
	// q·B·L/((B+z)(L+z)) = 1·1.5·1.5/(3·3)
	assert.InDelta(t, 0.25, TwoToOne(1, 1.5, 1.5, 0, 0, 1.5), 1e-12)
	assert.Zero(t, TwoToOne(1, 1.5, 1.5, 1.6, 0, 1.5))
	assert.Equal(t, 100.0, TwoToOne(100, 1, 1, 0, 0, 0))
}

func TestRectStress_IntegrationFallback(t *testing.T) {
	// A single order leaves nothing to compare against, so the quadrature
	// never converges.
	r := Rectangle{Q: 100, B: 1, L: 1, Orders: []int{16}}

	in := r.StressAt(0, 0, 1, Integration)
	nm := RectStress(100, 1, 1, 0, 0, 1, Newmark)
	assert.True(t, in.FallbackUsed)
	assert.Equal(t, nm.Value, in.Value)
	assert.InDelta(t, 33.61, in.Value, 0.01)

	// Surface points never integrate.
	assert.False(t, r.StressAt(0, 0, 0, Integration).FallbackUsed)

	_, ok := integrateRect([]int{}, 1, 1, 0, 0, 1)
	assert.False(t, ok)
}

func TestIntegrateRect_CustomOrders(t *testing.T) {
	v, ok := integrateRect([]int{8, 24, 48, 96}, 2, 3, 0.5, 0.5, 1.5)
	require.True(t, ok)
	assert.InDelta(t, newmarkInfluence(2, 3, 0.5, 0.5, 1.5), v, 1e-6)
}
