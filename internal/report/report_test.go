package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alexiusacademia/gobulb/internal/bulb"
	"github.com/alexiusacademia/gobulb/internal/soil"
	"github.com/alexiusacademia/gobulb/internal/stress"
	"github.com/alexiusacademia/gobulb/internal/units"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func squareReport(t *testing.T, opts ...Option) Report {
	t.Helper()
	r, err := Build(soil.MustFoundation(1.5, 1.5, 200), append([]Option{At(fixed)}, opts...)...)
	require.NoError(t, err)
	return r
}

func TestBuild(t *testing.T) {
	r := squareReport(t)

	require.Len(t, r.Influence, 3)
	assert.InDelta(t, 2.105, r.Depth(0.20), 1e-3)
	assert.InDelta(t, 3.131, r.Depth(0.10), 1e-3)
	assert.InDelta(t, 4.533, r.Depth(0.05), 1e-3)
	assert.Zero(t, r.Depth(0.5))

	assert.Equal(t, 1.5, r.AtB.Depth)
	assert.InDelta(t, 67.22, r.AtB.Stress, 0.01)
	assert.InDelta(t, 50, r.AtB.TwoToOne, 1e-9)
	assert.InDelta(t, -25.6, r.AtB.Difference(), 0.1)
	assert.InDelta(t, 33.6, r.AtB.Percent(200), 0.05)
	assert.Less(t, r.At2B.Stress, r.AtB.Stress)

	require.Len(t, r.Comparison, len(comparisonDepths))
	for i := 1; i < len(r.Comparison); i++ {
		assert.Less(t, r.Comparison[i].Stress, r.Comparison[i-1].Stress)
	}
}

func TestRecommendations(t *testing.T) {
	r := squareReport(t)
	recs := r.Recommendations()
	require.Len(t, recs, 3)
	assert.Equal(t, r.Depth(0.10), recs[0].Depth)
	assert.Equal(t, r.Depth(0.20), recs[1].Depth)
	assert.Equal(t, r.Depth(0.05), recs[2].Depth)
}

func TestText(t *testing.T) {
	s, err := soil.NewSoil("Stiff clay", 19, soil.WithPoissonRatio(0.35))
	require.NoError(t, err)
	r := squareReport(t, WithSoil(s))

	out := Formatter{}.Text(r)
	for _, want := range []string{
		"TECHNICAL REPORT - STRESS BULB (BOUSSINESQ)",
		"Applied pressure (q):",
		"200.0 kPa",
		"Down to 10% of q:",
		"3.13 m",
		"Δσ = 67.2 kPa",
		"BOUSSINESQ vs 2:1",
		"Settlement analysis: consider soil down to 3.1 m",
		"Stiff clay",
		"ν = 0.35",
		"ANALYSIS DATE: 2026-03-14 09:30:00 UTC",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "COMPUTED FIELD")
}

func TestText_Imperial(t *testing.T) {
	out := Formatter{Units: units.Imperial}.Text(squareReport(t))
	assert.Contains(t, out, "29.0 psi")
	assert.Contains(t, out, "4.92 ft")
	assert.NotContains(t, out, "kPa")
}

func TestText_WithField(t *testing.T) {
	f := soil.MustFoundation(1.5, 1.5, 200)
	field, err := bulb.New(bulb.DefaultOptions()).Compute(context.Background(), f, soil.Soil{},
		stress.GridSpec{DepthRatio: 3, Resolution: 10, Method: stress.Newmark})
	require.NoError(t, err)

	r, err := Build(f, WithField(field), At(fixed))
	require.NoError(t, err)
	require.NotNil(t, r.Field)
	assert.Equal(t, 1000, r.Field.Points)

	out := Formatter{Units: units.SI}.Text(r)
	assert.Contains(t, out, "COMPUTED FIELD:")
	assert.Contains(t, out, "10³ = 1000 points")
	assert.Contains(t, out, field.ID().String())
	assert.NotContains(t, out, "fallbacks")
}

func TestWriteText(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, Formatter{}.WriteText(&sb, squareReport(t)))
	assert.Equal(t, Formatter{}.Text(squareReport(t)), sb.String())
}

func TestBuild_IntegrationMethod(t *testing.T) {
	nm := squareReport(t)
	in := squareReport(t, WithMethod(stress.Integration))
	assert.Equal(t, stress.Integration, in.Method)
	assert.InDelta(t, nm.AtB.Stress, in.AtB.Stress, 1e-6)
}
