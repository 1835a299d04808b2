package soil

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFoundation(t *testing.T) {
	f, err := NewFoundation(1.5, 2.0, 200)
	require.NoError(t, err)
	assert.Equal(t, 1.5, f.Width())
	assert.Equal(t, 2.0, f.Length())
	assert.Equal(t, 200.0, f.Pressure())
	assert.InDelta(t, 3.0, f.Area(), 1e-12)
	assert.InDelta(t, 600.0, f.TotalLoad(), 1e-9)
	assert.Equal(t, 2.0, f.MaxDimension())

	// zero pressure is a valid (unloaded) footing
	_, err = NewFoundation(1, 1, 0)
	assert.NoError(t, err)
}

func TestNewFoundation_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		b, l, q float64
		field   string
	}{
		{"zero width", 0, 1, 100, "width"},
		{"negative length", 1, -2, 100, "length"},
		{"negative pressure", 1, 1, -1, "pressure"},
		{"nan width", math.NaN(), 1, 100, "width"},
		{"infinite pressure", 1, 1, math.Inf(1), "pressure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewFoundation(tc.b, tc.l, tc.q)
			require.Error(t, err)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestFoundation_Contains(t *testing.T) {
	f := MustFoundation(2, 4, 100)
	assert.True(t, f.Contains(0, 0))
	assert.True(t, f.Contains(1, 2), "footprint is closed")
	assert.True(t, f.Contains(-1, -2))
	assert.False(t, f.Contains(1.01, 0))
	assert.False(t, f.Contains(0, -2.01))
}

func TestNewSoil(t *testing.T) {
	s, err := NewSoil("Medium sand", 18.5)
	require.NoError(t, err)
	assert.Equal(t, DefaultPoissonRatio, s.PoissonRatio())
	assert.Equal(t, "Medium sand", s.Name())

	s, err = NewSoil("Clay", 17, WithPoissonRatio(0.45), WithCohesion(25), WithFrictionAngle(20), WithElasticModulus(15))
	require.NoError(t, err)
	assert.Equal(t, 0.45, s.PoissonRatio())
	assert.Equal(t, 25.0, s.Cohesion())
	assert.Equal(t, 20.0, s.FrictionAngle())
	assert.Equal(t, 15.0, s.ElasticModulus())
	assert.Contains(t, s.String(), "Clay")
}

func TestNewSoil_Invalid(t *testing.T) {
	cases := []struct {
		name  string
		gamma float64
		opts  []SoilOption
		field string
	}{
		{"zero unit weight", 0, nil, "unit_weight"},
		{"nu at upper bound", 18, []SoilOption{WithPoissonRatio(0.5)}, "poisson_ratio"},
		{"negative nu", 18, []SoilOption{WithPoissonRatio(-0.1)}, "poisson_ratio"},
		{"negative cohesion", 18, []SoilOption{WithCohesion(-1)}, "cohesion"},
		{"friction angle too large", 18, []SoilOption{WithFrictionAngle(95)}, "friction_angle"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSoil("s", tc.gamma, tc.opts...)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}
