package bulb

import (
	"context"
	"math"
	"testing"

	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func computeField(t *testing.T, f soil.Foundation, n int) *StressField {
	t.Helper()
	field, err := New(DefaultOptions()).Compute(context.Background(), f, testSoil(t, 0.3), newmarkSpec(n))
	require.NoError(t, err)
	return field
}

func TestStressField_AccessorsReturnCopies(t *testing.T) {
	field := computeField(t, soil.MustFoundation(1, 1, 100), 6)

	s := field.Stresses()
	before := field.At(3, 3, 0)
	s[field.Index(3, 3, 0)] = -1
	assert.Equal(t, before, field.At(3, 3, 0))

	g := field.Grid()
	g.X[0] = 99
	assert.NotEqual(t, 99.0, field.Point(0, 0, 0).X)
}

func TestStressField_CoordinatesAlignWithStresses(t *testing.T) {
	f := soil.MustFoundation(1.5, 2, 160)
	field := computeField(t, f, 7)
	pts := field.Coordinates()
	vals := field.Stresses()
	for idx, p := range pts {
		want := stress.RectStress(160, 1.5, 2, p.X, p.Y, p.Z, stress.Newmark).Value
		assert.InDelta(t, want, vals[idx], 1e-9)
	}
}

func TestStressField_SliceY(t *testing.T) {
	f := soil.MustFoundation(2, 2, 250)
	field := computeField(t, f, 9)

	sl := field.CenterSlice()
	nx, ny, nz := field.Shape()
	assert.Equal(t, field.Point(0, ny/2, 0).Y, sl.Y)
	require.Len(t, sl.Percent, nx)
	require.Len(t, sl.Percent[0], nz)
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			assert.InDelta(t, 100*field.At(i, ny/2, k)/250, sl.Percent[i][k], 1e-12)
		}
	}

	sl.Percent[0][0] = 1e9
	sl.X[0] = 1e9
	assert.NotEqual(t, 1e9, field.CenterSlice().Percent[0][0])
	assert.NotEqual(t, 1e9, field.Point(0, 0, 0).X)
}

func TestStressField_ZeroPressure(t *testing.T) {
	field := computeField(t, soil.MustFoundation(1, 1, 0), 5)
	for _, v := range field.Percent() {
		assert.Zero(t, v)
	}
	assert.Zero(t, field.Max())
	assert.True(t, math.IsNaN(field.IsobarDepth(10)))
}

func TestStressField_ColumnAt(t *testing.T) {
	field := computeField(t, soil.MustFoundation(1, 1, 100), 11)
	col := field.ColumnAt(0.1, -0.1)
	assert.InDelta(t, 0, col.X, 1e-12)
	assert.InDelta(t, 0, col.Y, 1e-12)
	require.Len(t, col.Stress, 11)
	for k := 1; k < len(col.Stress); k++ {
		assert.Less(t, col.Stress[k], col.Stress[k-1])
	}
	i := stress.Nearest(field.Grid().X, 0)
	assert.Equal(t, field.At(i, i, 4), col.Stress[4])
}

func TestStressField_IsobarDepth(t *testing.T) {
	field := computeField(t, soil.MustFoundation(1.5, 1.5, 200), 31)
	d10 := field.IsobarDepth(10)
	d20 := field.IsobarDepth(20)
	assert.Less(t, d20, d10)
	// grid-resolution estimate of the 10 % influence depth
	assert.InDelta(t, 3.131, d10, 0.2)
}

func TestKey(t *testing.T) {
	f := soil.MustFoundation(1.5, 2, 200)
	spec := newmarkSpec(40)
	sm := stress.DefaultSmoothing
	k := KeyFor(f, spec, sm)
	assert.Equal(t, "v2|1.5|2|200|3|40|newmark|s0.8/20", k.String())
	assert.Equal(t, k.String(), KeyFor(soil.MustFoundation(1.5, 2, 200), spec, sm).String())

	spec.Method = stress.Integration
	assert.NotEqual(t, k.String(), KeyFor(f, spec, sm).String())
	assert.NotEqual(t, k.String(), KeyFor(soil.MustFoundation(2, 1.5, 200), newmarkSpec(40), sm).String())

	assert.NotEqual(t, k.String(), KeyFor(f, newmarkSpec(40), stress.Smoothing{Sigma: 1.2, MinResolution: 20}).String())
	assert.NotEqual(t, k.String(), KeyFor(f, newmarkSpec(40), stress.Smoothing{Sigma: 0.8, MinResolution: 30}).String())
	assert.Equal(t, "v2|1.5|2|200|3|40|newmark|s0/0", KeyFor(f, newmarkSpec(40), stress.Smoothing{}).String())

	k.Orders = []int{16, 32}
	assert.Equal(t, "v2|1.5|2|200|3|40|newmark|s0.8/20|o16,32", k.String())
}

func TestGobCodec_RejectsMismatchedGrid(t *testing.T) {
	field := computeField(t, soil.MustFoundation(1, 1, 100), 4)
	data, err := gobCodec{}.Encode(field)
	require.NoError(t, err)
	back, err := gobCodec{}.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, field.Stresses(), back.Stresses())

	broken := &StressField{id: field.id, grid: field.grid, stresses: field.stresses[:5], meta: field.meta}
	data, err = gobCodec{}.Encode(broken)
	require.NoError(t, err)
	_, err = gobCodec{}.Decode(data)
	assert.Error(t, err)

	_, err = gobCodec{}.Decode([]byte("garbage"))
	assert.Error(t, err)
}
